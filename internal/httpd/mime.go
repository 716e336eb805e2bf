package httpd

import "strings"

// OctetStreamType is the generic binary type returned when no table entry
// matches.
const OctetStreamType = "application/octet-stream"

// defaultMimeTypes is the closed built-in vocabulary, keyed by lowercase
// extension without the leading dot.
var defaultMimeTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"txt":  "text/plain; charset=utf-8",
}

// MimeResolver maps file paths to content types by extension.
type MimeResolver struct {
	types map[string]string
}

// NewMimeResolver builds a resolver from the built-in table, extended by the
// optional overrides map (extension without dot -> type). Override keys are
// lowercased; an override may also replace a built-in entry.
func NewMimeResolver(overrides map[string]string) *MimeResolver {
	types := make(map[string]string, len(defaultMimeTypes)+len(overrides))
	for ext, mt := range defaultMimeTypes {
		types[ext] = mt
	}
	for ext, mt := range overrides {
		types[strings.ToLower(ext)] = mt
	}
	return &MimeResolver{types: types}
}

// Resolve returns the content type for path. The extension is everything
// after the last '.' anywhere in the path, compared case-insensitively.
// No dot, or no table entry, yields the generic binary type.
func (r *MimeResolver) Resolve(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return OctetStreamType
	}
	if mt, ok := r.types[strings.ToLower(path[idx+1:])]; ok {
		return mt
	}
	return OctetStreamType
}
