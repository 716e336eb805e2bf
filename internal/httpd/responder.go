package httpd

import (
	"fmt"
	"io"
	"os"

	"example.com/spahttpd/internal/filestore"
	"example.com/spahttpd/internal/logger"
)

// notFoundBody is the literal body of the fixed 404 response, sent only when
// even the fallback document is missing.
const notFoundBody = "<html><body><h1>404 Not Found</h1></body></html>"

// Responder resolves a sanitized path against the file store and writes a
// complete HTTP/1.1 response. A miss on the primary path falls back to the
// configured fallback document, which is what makes client-side routed
// applications resolve on any URL.
type Responder struct {
	store     *filestore.FileStore
	mime      *MimeResolver
	log       *logger.Logger
	fallback  string // absolute path of the fallback document
	chunkSize int
}

// NewResponder builds a Responder. fallbackFile is a bare file name resolved
// under the store root; chunkSize is the streaming buffer size.
func NewResponder(store *filestore.FileStore, mime *MimeResolver, lg *logger.Logger, fallbackFile string, chunkSize int) *Responder {
	if lg == nil {
		lg = logger.NewDiscardLogger()
	}
	return &Responder{
		store:     store,
		mime:      mime,
		log:       lg,
		fallback:  store.Root() + "/" + fallbackFile,
		chunkSize: chunkSize,
	}
}

// Serve attempts the sanitized path, then the fallback document, then the
// fixed 404. The fallback is an explicit second loop iteration rather than
// recursion, so the call depth is bounded and there is exactly one exit.
// It returns the response status and the number of body bytes written, for
// access logging.
func (r *Responder) Serve(w io.Writer, path string) (status int, bodyBytes int64) {
	for attempt, p := range []string{path, r.fallback} {
		f, err := r.store.Open(p)
		if err != nil {
			if attempt == 0 {
				r.log.Warn("file not found, trying fallback", logger.LogFields{"path": p})
			} else {
				r.log.Warn("fallback document missing", logger.LogFields{"path": p})
			}
			continue
		}
		fi, err := f.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			// Directories and other non-regular entries count as a miss.
			f.Close()
			r.log.Warn("not a regular file, treating as miss", logger.LogFields{"path": p})
			continue
		}
		sent := r.serveFile(w, f, fi, p)
		f.Close()
		return 200, sent
	}
	return 404, r.serveNotFound(w)
}

// serveFile streams one open file as a 200 response. The Content-Length is
// the size at open time; if the file shrinks mid-send the transfer simply
// ends short, and if it grows the extra bytes are not sent (the store is
// assumed read-mostly).
func (r *Responder) serveFile(w io.Writer, f *os.File, fi os.FileInfo, path string) (bodyBytes int64) {
	header := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		r.mime.Resolve(path), fi.Size())
	if err := writeFull(w, []byte(header)); err != nil {
		r.log.Warn("send error on response header", logger.LogFields{"path": path, "error": err.Error()})
		return 0
	}

	var remaining = fi.Size()
	buf := make([]byte, r.chunkSize)
	for remaining > 0 {
		n, readErr := f.Read(buf)
		if n > 0 {
			if int64(n) > remaining {
				n = int(remaining)
			}
			if err := writeFull(w, buf[:n]); err != nil {
				// Transport failure: abort this transfer only, no retry.
				r.log.Warn("send error mid-stream, aborting transfer", logger.LogFields{
					"path": path, "sent": bodyBytes, "error": err.Error(),
				})
				return bodyBytes
			}
			bodyBytes += int64(n)
			remaining -= int64(n)
		}
		if readErr != nil {
			if readErr != io.EOF {
				r.log.Error("read error mid-stream, aborting transfer", logger.LogFields{
					"path": path, "error": readErr.Error(),
				})
			}
			return bodyBytes
		}
	}
	return bodyBytes
}

// serveNotFound emits the fixed 404 response.
func (r *Responder) serveNotFound(w io.Writer) (bodyBytes int64) {
	header := fmt.Sprintf(
		"HTTP/1.1 404 Not Found\r\nContent-Type: text/html; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		len(notFoundBody))
	if err := writeFull(w, []byte(header)); err != nil {
		return 0
	}
	if err := writeFull(w, []byte(notFoundBody)); err != nil {
		return 0
	}
	return int64(len(notFoundBody))
}

// writeFull loops until the whole buffer is accepted by the transport or a
// write fails.
func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
