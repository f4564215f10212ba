package wager

import (
	"sort"

	abci "github.com/cometbft/cometbft/abci/types"

	"onchainrps/internal/state"
)

// Context carries the state a single operation runs against, the block it
// runs in, and the events it emits. The host discards the Context (state and
// events both) when the operation fails.
type Context struct {
	State  *state.State
	Height int64
	Now    int64 // unix seconds

	events []abci.Event
}

func NewContext(st *state.State, height int64, now int64) *Context {
	return &Context{State: st, Height: height, Now: now}
}

func (c *Context) Events() []abci.Event { return c.events }

// EmitEvent appends an event with indexed attributes in sorted key order.
func (c *Context) EmitEvent(typ string, attrs map[string]string) {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	c.events = append(c.events, ev)
}
