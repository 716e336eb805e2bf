package httpd

import "bytes"

// ParseRequestPath extracts the request target from a raw request buffer,
// i.e. the token between the first and second space of
// "METHOD <path> VERSION". The method itself is never inspected: the server
// is read-only whatever the client claims to be doing.
//
// If either space is missing the safe default "/" is returned. Tokens longer
// than maxLen bytes are truncated silently.
func ParseRequestPath(req []byte, maxLen int) string {
	sp1 := bytes.IndexByte(req, ' ')
	if sp1 < 0 {
		return "/"
	}
	rest := req[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 < 0 {
		return "/"
	}
	token := rest[:sp2]
	if maxLen > 0 && len(token) > maxLen {
		token = token[:maxLen]
	}
	return string(token)
}
