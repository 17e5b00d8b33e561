package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMount(t *testing.T) {
	uriPath, fsPath, err := splitMount("/static=./public")
	assert.NoError(t, err)
	assert.Equal(t, "/static", uriPath)
	assert.Equal(t, "./public", fsPath)
}

func TestSplitMountRejectsMissingEquals(t *testing.T) {
	_, _, err := splitMount("/static")
	assert.Error(t, err)
}

func TestAddrToURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080/", addrToURL("127.0.0.1:8080"))
}
