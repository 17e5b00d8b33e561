package proxybackend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteLocationRewritesTargetHost(t *testing.T) {
	target := Target{Scheme: "http", Authority: "localhost:3000"}

	got, ok := RewriteLocation("http://localhost:3000/next", target, "http", "localhost:8080")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8080/next", got)
}

func TestRewriteLocationLeavesRelativeUnchanged(t *testing.T) {
	target := Target{Scheme: "http", Authority: "localhost:3000"}

	got, ok := RewriteLocation("/next", target, "http", "localhost:8080")
	assert.True(t, ok)
	assert.Equal(t, "/next", got)
}

func TestRewriteLocationLeavesThirdPartyHostUnchanged(t *testing.T) {
	target := Target{Scheme: "http", Authority: "localhost:3000"}

	got, ok := RewriteLocation("https://cdn.example.com/x", target, "http", "localhost:8080")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/x", got)
}

func TestRewriteLocationReportsMalformed(t *testing.T) {
	target := Target{Scheme: "http", Authority: "localhost:3000"}

	_, ok := RewriteLocation("http://%zz", target, "http", "localhost:8080")
	assert.False(t, ok)
}
