package penguin

import "github.com/penguindev/penguin/internal/action"

// Action is an event pushed to every connected browser session.
type Action = action.Action

// Reload returns an Action that tells every connected browser to reload
// the current page.
func Reload() Action {
	return action.NewReload()
}

// ShowMessage returns an Action that tells every connected browser to
// display text as an overlay.
func ShowMessage(text string) Action {
	return action.NewMessage(text)
}
