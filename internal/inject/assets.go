package inject

import (
	"bytes"
	_ "embed" // embed client.js into the binary
)

// clientJSTemplate is the browser-side control-plane client, served at
// "<control-path>/client.js" and referenced by the tag Script returns. Its
// literal "{{ control_path }}" placeholder is substituted by ClientJS, which
// the control handler calls before the script is written out.
//
//go:embed client.js
var clientJSTemplate []byte

// ClientJS returns the browser-side client script with its control-path
// placeholder filled in.
func ClientJS(controlPath string) []byte {
	return bytes.ReplaceAll(clientJSTemplate, []byte("{{ control_path }}"), []byte(controlPath))
}
