package server

import (
	"net/url"
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// documentPath is the file behind a file:// URI. Other schemes, such as an
// editor's untitled buffers, keep their URI as the path.
func documentPath(uri protocol.DocumentUri) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Path == "" {
		return uri
	}
	return filepath.FromSlash(parsed.Path)
}

func documentURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
