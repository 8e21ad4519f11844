package event

import (
	"slices"
	"sync"

	"github.com/john-paul-ruf/nft-studio/internal/event/topic"
)

// Registry indexes subscriptions for publish-time lookup.
//
// Literal subscriptions live in a map keyed by topic. Patterns are bucketed
// by namespace when their first segment is literal ("toolbar:zoom:*" sits
// under "toolbar"), so a publish only tests the patterns of its own
// component plus the few that start with a wildcard, such as the monitor's
// "**".
type Registry struct {
	mu       sync.RWMutex
	literal  map[topic.Topic][]*subscription
	patterns map[string][]*subscription
	anyNS    []*subscription
	byID     map[string]*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		literal:  make(map[topic.Topic][]*subscription),
		patterns: make(map[string][]*subscription),
		byID:     make(map[string]*subscription),
	}
}

// bucket returns the current slice that holds subscriptions on t.
func (r *Registry) bucket(t topic.Topic) []*subscription {
	switch {
	case !t.IsPattern():
		return r.literal[t]
	case t.Namespace() == topic.Any || t.Namespace() == topic.All:
		return r.anyNS
	default:
		return r.patterns[t.Namespace()]
	}
}

func (r *Registry) store(sub *subscription, list []*subscription) {
	t := sub.Topic()
	switch {
	case !t.IsPattern():
		if len(list) == 0 {
			delete(r.literal, t)
		} else {
			r.literal[t] = list
		}
	case t.Namespace() == topic.Any || t.Namespace() == topic.All:
		r.anyNS = list
	default:
		if len(list) == 0 {
			delete(r.patterns, t.Namespace())
		} else {
			r.patterns[t.Namespace()] = list
		}
	}
}

// Add registers a subscription.
func (r *Registry) Add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(sub, append(r.bucket(sub.Topic()), sub))
	r.byID[sub.ID()] = sub
}

// Remove removes a subscription by ID.
func (r *Registry) Remove(subID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(subID)
}

func (r *Registry) removeLocked(subID string) bool {
	sub, ok := r.byID[subID]
	if !ok {
		return false
	}
	delete(r.byID, subID)
	list := slices.DeleteFunc(slices.Clone(r.bucket(sub.Topic())), func(s *subscription) bool {
		return s == sub
	})
	r.store(sub, list)
	return true
}

// Get returns a subscription by ID.
func (r *Registry) Get(subID string) (Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.byID[subID]
	if !ok {
		return nil, false
	}
	return sub, true
}

// Match returns the live subscriptions for a published topic, ordered by
// priority and then by registration order.
func (r *Registry) Match(eventTopic topic.Topic) []*subscription {
	r.mu.RLock()
	var out []*subscription
	for _, sub := range r.literal[eventTopic] {
		if sub.Active() {
			out = append(out, sub)
		}
	}
	for _, group := range [][]*subscription{r.patterns[eventTopic.Namespace()], r.anyNS} {
		for _, sub := range group {
			if sub.Active() && eventTopic.Matches(sub.Topic()) {
				out = append(out, sub)
			}
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *subscription) int {
		if a.opts.Priority != b.opts.Priority {
			return int(a.opts.Priority) - int(b.opts.Priority)
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
