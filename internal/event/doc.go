// Package event is the studio's event bus.
//
// Panels, toolbars and dialogs never call each other directly. A leaf
// component emits a namespaced event ("effectspanel:effect:add",
// "toolbar:resolution:change") and whichever controller owns the behaviour
// subscribes to it. The bus is the only coupling between them.
//
// # Events
//
// Every channel carries a typed payload (see package events). Events are
// emitted either as Event[T] values or as type-erased Envelopes; handlers
// registered with SubscribePayload accept both.
//
//	event.Emit(ctx, bus, events.TopicToolbarZoomIn, events.Zoom{}, event.Meta{
//	    Source:    "toolbar",
//	    Component: "CanvasToolbar",
//	})
//
// The Meta tag is carried for logging and tracing only; no handler should
// branch on it.
//
// # Delivery
//
// Synchronous subscriptions run in the emitter's goroutine, so by the time
// Publish returns every synchronous handler has observed the event.
// Asynchronous subscriptions are queued on a bounded worker pool and may be
// dropped when the queue is full.
//
// Handlers run in priority order, and in registration order within one
// priority. An error or panic in one handler never stops delivery to the
// rest: failures are counted in Stats, passed to the configured
// ErrorHandler / PanicHandler, and returned joined from PublishSync.
//
// # Cleanup
//
// Subscribe returns a Subscription whose Unsubscribe method is the
// "unsubscribe function" of the component that registered it. Components
// that subscribe to many channels use a Subscriber group and Close it on
// shutdown.
package event
