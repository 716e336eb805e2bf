package httpd

import (
	"net"
	"time"

	"example.com/spahttpd/internal/logger"
)

// ConnHandler runs the full pipeline for one accepted connection:
// one bounded receive, parse, sanitize, respond, close. It holds no state
// across connections.
type ConnHandler struct {
	responder       *Responder
	log             *logger.Logger
	root            string
	defaultFile     string
	maxRequestBytes int
	maxPathBytes    int
}

// NewConnHandler builds a ConnHandler around a Responder.
func NewConnHandler(responder *Responder, lg *logger.Logger, root, defaultFile string, maxRequestBytes, maxPathBytes int) *ConnHandler {
	if lg == nil {
		lg = logger.NewDiscardLogger()
	}
	return &ConnHandler{
		responder:       responder,
		log:             lg,
		root:            root,
		defaultFile:     defaultFile,
		maxRequestBytes: maxRequestBytes,
		maxPathBytes:    maxPathBytes,
	}
}

// Handle serves exactly one request on conn and closes it. A single receive
// is performed; requests spanning multiple reads are out of scope, since the
// request line of any retrieval fits the bounded buffer. The connection is
// closed exactly once on every exit path.
func (h *ConnHandler) Handle(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, h.maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil || n <= 0 {
		return
	}

	reqPath := ParseRequestPath(buf[:n], h.maxPathBytes)
	h.log.Info("request received", logger.LogFields{"path": reqPath})

	safePath := SanitizePath(reqPath, h.root, h.defaultFile, h.maxPathBytes)
	h.log.Debug("serving file", logger.LogFields{"path": safePath})

	start := time.Now()
	status, sent := h.responder.Serve(conn, safePath)
	h.log.Access(conn.RemoteAddr().String(), reqPath, status, sent, time.Since(start))

	// Signal end of response before the deferred close tears the socket down.
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}
}
