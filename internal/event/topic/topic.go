package topic

import "strings"

// Topic names a bus channel as namespace:action, for example
// "effectspanel:effect:add". Subscriptions may use a pattern in place of a
// literal topic.
type Topic string

const (
	// Any is a pattern segment standing for exactly one segment.
	Any = "*"

	// All is a pattern segment standing for any run of segments, including
	// none. On its own it subscribes to every topic.
	All = "**"

	sep = ':'
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the colon separated parts of t.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), string(sep))
}

// Namespace returns the owning component, the part before the first colon:
// "toolbar" for "toolbar:zoom:in".
func (t Topic) Namespace() string {
	ns, _, _ := strings.Cut(string(t), string(sep))
	return ns
}

// Action returns everything after the namespace: "zoom:in" for
// "toolbar:zoom:in". A single segment topic has no action.
func (t Topic) Action() string {
	_, action, _ := strings.Cut(string(t), string(sep))
	return action
}

// IsPattern reports whether t contains a wildcard segment.
func (t Topic) IsPattern() bool {
	for _, seg := range t.Segments() {
		if seg == Any || seg == All {
			return true
		}
	}
	return false
}

// Literal reports whether t can be published: it is valid and carries no
// wildcard.
func (t Topic) Literal() bool {
	return t.IsValid() && !t.IsPattern()
}

// IsValid reports whether every segment is either a whole wildcard or a
// non-empty run of letters, digits, '-', '_' and '.'. Wildcards embedded in
// a word, like "zoom*", are rejected.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == Any || seg == All {
			continue
		}
		if !validWord(seg) {
			return false
		}
	}
	return true
}

func validWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// Matches reports whether the literal topic t is selected by pattern.
//
// The walk keeps the position of the most recent "**" and, on a mismatch,
// lets it swallow one more segment of t before retrying. That bounds the
// work to len(t)*len(pattern) without recursion.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t || pattern == All {
		return true
	}
	have, want := t.Segments(), pattern.Segments()

	i, j := 0, 0
	starJ, starI := -1, 0
	for i < len(have) {
		switch {
		case j < len(want) && want[j] == All:
			starJ, starI = j, i
			j++
		case j < len(want) && (want[j] == Any || want[j] == have[i]):
			i++
			j++
		case starJ >= 0:
			starI++
			i = starI
			j = starJ + 1
		default:
			return false
		}
	}
	for j < len(want) && want[j] == All {
		j++
	}
	return j == len(want)
}

// Join builds a topic from segments.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, string(sep)))
}
