package fileserver

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/penguindev/penguin/internal/cache"
	"github.com/penguindev/penguin/internal/inject"
	"github.com/penguindev/penguin/internal/plog"
)

// DefaultCacheBytes bounds the in-memory static-asset cache. It holds
// whole non-HTML file bodies keyed by path+mtime+size, the same role
// coffer plays for air: smoothing repeated disk reads within one process
// run, not persisting anything across restarts.
const DefaultCacheBytes = 32 * 1024 * 1024

// Server resolves requests against an ordered mount list and serves files,
// directory listings, and (for HTML) injected bodies.
type Server struct {
	Mounts      []Mount
	ControlPath string
	Log         *plog.Logger

	cacheOnce sync.Once
	cache     *cache.Cache
}

func (s *Server) assetCache() *cache.Cache {
	s.cacheOnce.Do(func() {
		s.cache = cache.New(DefaultCacheBytes)
	})
	return s.cache
}

// ServeHTTP implements the file backend described in the spec's file
// backend component: mount resolution, traversal guard, file/index/listing
// dispatch, range support, and HTML injection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mount, subpath, ok := Match(s.Mounts, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	resolved, err := Resolve(mount.FSPath, subpath)
	if err != nil {
		switch {
		case IsNotExist(err):
			http.NotFound(w, r)
		case err == ErrOutsideRoot:
			http.Error(w, "requested file outside of served directory", http.StatusBadRequest)
		default:
			http.NotFound(w, r)
		}
		return
	}

	fi, err := os.Stat(resolved)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if fi.IsDir() {
		s.serveDir(w, r, resolved, r.URL.Path)
		return
	}

	s.serveFile(w, r, resolved, fi)
}

func (s *Server) serveDir(w http.ResponseWriter, r *http.Request, dir, uriPath string) {
	index := filepath.Join(dir, "index.html")
	if fi, err := os.Stat(index); err == nil && !fi.IsDir() {
		s.serveFile(w, r, index, fi)
		return
	}

	entries, err := BuildEntries(dir, uriPath, s.Mounts)
	if err != nil {
		http.Error(w, "failed to list directory", http.StatusInternalServerError)
		return
	}

	body, err := Render(uriPath, s.ControlPath, entries)
	if err != nil {
		http.Error(w, "failed to render directory listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(body)
	}
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, path string, fi os.FileInfo) {
	ext := filepath.Ext(path)
	mt, _, _ := mime.ParseMediaType(withFallback(mime.TypeByExtension(ext), "application/octet-stream"))

	if strings.HasPrefix(mt, "text/html") {
		s.serveHTML(w, r, path)
		return
	}

	size := fi.Size()

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		f, err := os.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		s.serveRange(w, r, f, rangeHeader, size, mime.TypeByExtension(ext))
		return
	}

	identity := fmt.Sprintf("%s|%d|%d", path, fi.ModTime().UnixNano(), size)
	key := cache.Key(identity)

	body, ok := s.assetCache().Get(key)
	if !ok {
		b, err := os.ReadFile(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		body = b
		s.assetCache().Set(key, body)
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", strconv.FormatInt(int64(len(body)), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(body)
	}
}

func (s *Server) serveRange(w http.ResponseWriter, r *http.Request, f *os.File, rangeHeader string, size int64, contentType string) {
	br, err := ParseRange(rangeHeader, size)
	switch err {
	case nil:
	case ErrMultipleRanges, ErrInvalidRange:
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	case ErrRangeNotSatisfiable:
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return
	default:
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}

	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		http.Error(w, "failed to seek", http.StatusInternalServerError)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Accept-Ranges", "bytes")
	// End value is start+length, not the RFC-correct start+length-1: this
	// matches the original implementation's
	// format!("bytes {}-{}/{}", range.start, range.start + range.length, file_size)
	// byte for byte, quirk and all.
	w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(br.Start, 10)+"-"+
		strconv.FormatInt(br.Start+br.Length, 10)+"/"+strconv.FormatInt(size, 10))
	w.Header().Set("Content-Length", strconv.FormatInt(br.Length, 10))
	w.WriteHeader(http.StatusPartialContent)

	if r.Method != http.MethodHead {
		io.CopyN(w, f, br.Length)
	}
}

func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	injected := inject.Into(b, inject.Script(s.ControlPath))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(injected)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(injected)
	}
}

func withFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
