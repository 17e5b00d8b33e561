package penguin

import (
	penguinaction "github.com/penguindev/penguin/internal/action"
	"github.com/penguindev/penguin/internal/broadcast"
)

// ActionChannelCapacity is the broadcast channel's per-subscriber buffer
// size. A subscriber that falls further behind than this starts receiving
// lag notices instead of every individual action.
const ActionChannelCapacity = 64

// Controller is a clonable handle onto the control-plane broadcast
// channel. Send failures (no connected WS sessions) are silently ignored,
// by contract.
type Controller struct {
	actions *broadcast.Broadcaster[penguinaction.Action]
}

// Reload publishes a Reload action to every connected browser session.
func (c Controller) Reload() {
	c.actions.Publish(Reload())
}

// ShowMessage publishes a Message action carrying text to every connected
// browser session.
func (c Controller) ShowMessage(text string) {
	c.actions.Publish(ShowMessage(text))
}
