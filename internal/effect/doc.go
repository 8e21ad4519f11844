// Package effect defines the effect data model shared by every part of the
// studio: the Effect tree stored in a project, the catalog of effects a
// backend can render, and display-name formatting.
//
// Effects are addressed by ID. An index into a project's effect list is a
// hint that goes stale on every reorder, insert or delete; the ID assigned
// at creation never changes.
package effect
