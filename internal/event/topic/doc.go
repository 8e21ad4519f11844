// Package topic names the channels panels and services talk over.
//
// A topic is namespace:action. The namespace is the component that owns
// the channel and the action is what happened or what is asked for:
//
//	effectspanel:effect:add
//	toolbar:resolution:change
//	command:undo-to-index
//	project:resume:success
//
// Subscribers may use patterns. "*" stands for one segment and "**" for
// any run of segments:
//
//	toolbar:zoom:*    toolbar:zoom:in, toolbar:zoom:out, toolbar:zoom:reset
//	effectspanel:**   every effects panel action
//	*:selected        effect:selected, frame:selected
//	**                everything
//
// Only literal topics can be published; see Topic.Literal.
package topic
