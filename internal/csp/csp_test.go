package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureInjectableLeavesPermissivePolicyUnchanged(t *testing.T) {
	in := "script-src 'self'; connect-src 'self'"
	assert.Equal(t, in, EnsureInjectable(in))
}

func TestEnsureInjectableHonorsWildcard(t *testing.T) {
	in := "default-src *"
	assert.Equal(t, in, EnsureInjectable(in))
}

func TestEnsureInjectableWidensDefaultSrcFallback(t *testing.T) {
	out := EnsureInjectable("default-src 'none'")
	assert.Contains(t, out, "connect-src 'self'")
	assert.Contains(t, out, "script-src 'self'")
}

func TestEnsureInjectableAddsMissingDirectives(t *testing.T) {
	out := EnsureInjectable("style-src 'self'")
	assert.Contains(t, out, "script-src 'self'")
	assert.Contains(t, out, "connect-src 'self'")
	assert.Contains(t, out, "style-src 'self'")
}

func TestEnsureInjectableWidensExistingDirective(t *testing.T) {
	out := EnsureInjectable("script-src 'none'; connect-src https://api.example.com")
	assert.Contains(t, out, "script-src 'self'")
	assert.Contains(t, out, "connect-src https://api.example.com 'self'")
	assert.NotContains(t, out, "'none'")
}

func TestEnsureInjectableSerializesSortedAndDropsDuplicateDirective(t *testing.T) {
	out := EnsureInjectable("style-src 'none'; script-src 'unsafe-inline'; script-src 'none'")
	assert.Equal(t, "connect-src 'self'; script-src 'unsafe-inline' 'self'; style-src 'none'", out)
}

func TestEnsureInjectableIsIdempotent(t *testing.T) {
	first := EnsureInjectable("default-src 'none'")
	second := EnsureInjectable(first)
	assert.Equal(t, first, second)
}
