// Package events defines the studio's event channels: one topic constant
// and one payload struct per channel.
//
// Channels are grouped by the component family that emits them:
//
//   - effectspanel: raw user actions from the effects list
//   - toolbar: raw user actions from the canvas toolbar
//   - effect, frame, configpanel: normalized events re-emitted by controllers
//   - project: project lifecycle
//   - command: undo/redo history
//   - render, renderloop, canvas: rendering state
//   - theme, colorscheme, preferences, effects, app: everything else
//
// # Usage
//
//	event.Emit(ctx, bus, events.TopicPanelEffectAdd,
//	    events.EffectAdd{Name: "FuzzFlareEffect", Type: effect.TypePrimary},
//	    event.Meta{Source: "effectspanel", Component: "EffectsPanel"},
//	)
//
// # Topic naming
//
// Topics are colon separated, "namespace:action[:sub]". Subscribers may use
// "*" for one segment and "**" for any number of trailing segments
// ("toolbar:zoom:*", "project:**").
package events
