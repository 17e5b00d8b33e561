package fileserver

import (
	"bytes"
	_ "embed" // embed the directory listing template
	"html/template"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed listing.html.tmpl
var listingTemplateSource string

var listingTemplate = template.Must(template.New("listing").Parse(listingTemplateSource))

// Entry is one row of a directory listing.
type Entry struct {
	Name  string // display name; folders carry a trailing "/"
	IsDir bool
	Mount bool // true if this entry is a mount point, not a real fs entry
}

// BuildEntries reads dir's contents and folds in any mount whose URIPath is
// a proper child of requestPath, tagging it so the template can style it
// differently. Folders sort before files; each group sorts
// lexicographically.
func BuildEntries(dir, requestPath string, mounts []Mount) ([]Entry, error) {
	osEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var folders, files []Entry
	for _, e := range osEntries {
		if e.IsDir() {
			folders = append(folders, Entry{Name: e.Name() + "/", IsDir: true})
		} else {
			files = append(files, Entry{Name: e.Name()})
		}
	}

	for _, m := range mounts {
		child, ok := childURIPath(requestPath, m.URIPath)
		if !ok {
			continue
		}

		isDir := true
		if fi, err := os.Stat(m.FSPath); err == nil {
			isDir = fi.IsDir()
		}

		name := child
		if isDir {
			name += "/"
			folders = append(folders, Entry{Name: name, IsDir: true, Mount: true})
		} else {
			files = append(files, Entry{Name: name, Mount: true})
		}
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	entries := make([]Entry, 0, len(folders)+len(files))
	entries = append(entries, folders...)
	entries = append(entries, files...)
	return entries, nil
}

// childURIPath reports whether mountPath is a proper descendant of
// requestPath, returning the single path segment immediately under it.
func childURIPath(requestPath, mountPath string) (string, bool) {
	requestPath = NormalizeURIPath(requestPath)
	mountPath = NormalizeURIPath(mountPath)

	prefix := requestPath
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}

	if !strings.HasPrefix(mountPath, prefix) || mountPath == requestPath {
		return "", false
	}

	rest := strings.TrimPrefix(mountPath, prefix)
	return path.Base(path.Join("/", rest[:indexOrEnd(rest, '/')])), true
}

func indexOrEnd(s string, b byte) int {
	if i := strings.IndexByte(s, b); i >= 0 {
		return i
	}
	return len(s)
}

// Render produces the HTML body for a directory listing.
func Render(uriPath, controlPath string, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	err := listingTemplate.Execute(&buf, struct {
		URIPath     string
		ControlPath string
		Entries     []Entry
	}{
		URIPath:     uriPath,
		ControlPath: controlPath,
		Entries:     entries,
	})
	return buf.Bytes(), err
}
