package proxybackend

import (
	"bytes"
	"testing"

	"github.com/penguindev/penguin/internal/plog"
	"github.com/stretchr/testify/assert"
)

func TestLooksHTMLTrustsContentType(t *testing.T) {
	warn := newWarnOnce(testLogger())
	assert.True(t, looksHTML("text/html; charset=utf-8", []byte("not html at all"), warn, "/a"))
	assert.False(t, looksHTML("application/json", []byte("<html></html>"), warn, "/b"))
}

func TestLooksHTMLFallsBackToSniffingWhenContentTypeAbsent(t *testing.T) {
	warn := newWarnOnce(testLogger())
	assert.True(t, looksHTML("", []byte("<!DOCTYPE html><html><body>hi</body></html>"), warn, "/c"))
}

func TestLooksHTMLFallsBackWhenContentTypeUnparsable(t *testing.T) {
	warn := newWarnOnce(testLogger())
	assert.True(t, looksHTML(";;;garbage", []byte("<html><body>hi</body></html>"), warn, "/d"))
}

func TestLooksHTMLRejectsBinary(t *testing.T) {
	warn := newWarnOnce(testLogger())
	assert.False(t, looksHTML("", []byte{0x00, 0x01, 0x02, 0x03}, warn, "/e"))
}

func TestLooksHTMLWarnsOnceWhenContentTypeContradictsBody(t *testing.T) {
	var buf bytes.Buffer
	log := plog.New(&buf, plog.DefaultFormat, plog.LevelWarn)
	warn := newWarnOnce(log)

	assert.False(t, looksHTML("application/json", []byte("<html><body>hi</body></html>"), warn, "/api?x=1"))
	assert.False(t, looksHTML("application/json", []byte("<html><body>hi</body></html>"), warn, "/api?x=1"))

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("looks like HTML, not treating as HTML")))
	assert.Contains(t, buf.String(), "/api?x=1")
}

func TestLooksHTMLWarnsOnceWhenContentTypeAbsentAndBodySniffsAsHTML(t *testing.T) {
	var buf bytes.Buffer
	log := plog.New(&buf, plog.DefaultFormat, plog.LevelWarn)
	warn := newWarnOnce(log)

	assert.True(t, looksHTML("", []byte("<!DOCTYPE html><html><body>hi</body></html>"), warn, "/nohead"))
	assert.True(t, looksHTML("", []byte("<!DOCTYPE html><html><body>hi</body></html>"), warn, "/nohead"))

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("sniffed body looks like HTML")))
	assert.Contains(t, buf.String(), "/nohead")
}
