package httpd

import "strings"

// SanitizePath maps an untrusted request path onto the store root, producing
// a path that is always a strict descendant of root.
//
// The rules, in order:
//   - An empty path or exactly "/" yields <root>/<defaultFile>.
//   - One leading "/" is stripped, then the remainder is split on "/".
//   - Empty segments (consecutive slashes) are skipped.
//   - A ".." segment ends accumulation: it is discarded together with
//     everything after it, never resolved upward. A path led by traversal
//     segments therefore accumulates nothing, and no amount of stacking can
//     lift the result above the root.
//   - "." is an ordinary segment name and is kept literally.
//   - Remaining segments are joined with "/" into an accumulator capped at
//     maxLen bytes; a segment that would not fit also ends accumulation.
//   - An empty accumulator (everything dropped) yields <defaultFile>.
//
// The result is <root>/<accumulated>.
func SanitizePath(reqPath, root, defaultFile string, maxLen int) string {
	if reqPath == "" || reqPath == "/" {
		return root + "/" + defaultFile
	}

	reqPath = strings.TrimPrefix(reqPath, "/")

	var acc strings.Builder
	for _, seg := range strings.Split(reqPath, "/") {
		if seg == "" {
			continue
		}
		if seg == ".." {
			break
		}
		need := len(seg)
		if acc.Len() > 0 {
			need++
		}
		if maxLen > 0 && acc.Len()+need > maxLen {
			break
		}
		if acc.Len() > 0 {
			acc.WriteByte('/')
		}
		acc.WriteString(seg)
	}

	if acc.Len() == 0 {
		return root + "/" + defaultFile
	}
	return root + "/" + acc.String()
}
