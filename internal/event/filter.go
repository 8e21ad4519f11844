package event

import "github.com/john-paul-ruf/nft-studio/internal/event/topic"

// FilterBySource delivers only events whose metadata source matches.
func FilterBySource(source string) FilterFunc {
	return func(ev any) bool {
		return MetadataOf(ev).Source == source
	}
}

// FilterByComponent delivers only events emitted by component.
func FilterByComponent(component string) FilterFunc {
	return func(ev any) bool {
		return MetadataOf(ev).Component == component
	}
}

// FilterExcludeSource drops events from source. Controllers use it to
// ignore their own echoes.
func FilterExcludeSource(source string) FilterFunc {
	return func(ev any) bool {
		return MetadataOf(ev).Source != source
	}
}

// FilterByTopic delivers only events whose concrete topic matches pattern.
func FilterByTopic(pattern topic.Topic) FilterFunc {
	return func(ev any) bool {
		return extractTopic(ev).Matches(pattern)
	}
}

// FilterPayload delivers only events with a T payload satisfying pred.
func FilterPayload[T any](pred func(T) bool) FilterFunc {
	return func(ev any) bool {
		p, ok := PayloadOf[T](ev)
		return ok && pred(p)
	}
}

// And passes when every filter passes.
func And(filters ...FilterFunc) FilterFunc {
	return func(ev any) bool {
		for _, f := range filters {
			if f != nil && !f(ev) {
				return false
			}
		}
		return true
	}
}

// Or passes when any filter passes.
func Or(filters ...FilterFunc) FilterFunc {
	return func(ev any) bool {
		for _, f := range filters {
			if f != nil && f(ev) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f FilterFunc) FilterFunc {
	return func(ev any) bool {
		return !f(ev)
	}
}
