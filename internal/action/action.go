// Package action defines the events published on Penguin's control-plane
// broadcast channel.
package action

// Kind distinguishes the two actions a Penguin server can publish.
type Kind int

const (
	// Reload tells every connected browser tab to reload the page.
	Reload Kind = iota

	// Message tells every connected browser tab to display a message
	// overlay.
	Message
)

// Action is a single event published to every WebSocket session.
type Action struct {
	Kind Kind

	// Text is the message payload. It is only meaningful when Kind is
	// Message.
	Text string
}

// NewReload returns a Reload action.
func NewReload() Action {
	return Action{Kind: Reload}
}

// NewMessage returns a Message action carrying text.
func NewMessage(text string) Action {
	return Action{Kind: Message, Text: text}
}
