package types

import "sort"

// Event represents a typed event emitted during state transitions.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute is an ordered key/value pair attached to a contract response.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Keys returns the attribute keys in lexical order.
func (e Event) Keys() []string {
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EventType satisfies core/events.Event.
func (e Event) EventType() string {
	return e.Type
}
