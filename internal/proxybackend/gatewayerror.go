package proxybackend

import (
	"bytes"
	_ "embed" // embed the gateway-error page template
	"html/template"
	"net/http"
)

//go:embed gatewayerror.html.tmpl
var gatewayErrorSource string

var gatewayErrorTemplate = template.Must(template.New("gatewayerror").Parse(gatewayErrorSource))

// writeGatewayError renders the styled gateway-error page and writes it
// with status (502 for a generic dial/transport failure, 504 when the
// failure was a timeout).
func writeGatewayError(w http.ResponseWriter, status int, target Target, controlPath string, cause error) {
	var buf bytes.Buffer
	err := gatewayErrorTemplate.Execute(&buf, struct {
		Target      string
		ControlPath string
		Error       string
	}{
		Target:      target.String(),
		ControlPath: controlPath,
		Error:       cause.Error(),
	})
	if err != nil {
		http.Error(w, cause.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
