package main

import (
	"os/exec"
	"runtime"
)

// openBrowser best-effort opens url in the user's default browser. It is
// a thin, genuinely external shell-out with no error propagated: failing
// to open a browser window should never fail the server startup.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start()
}
