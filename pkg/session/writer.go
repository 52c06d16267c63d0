package session

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// commitWriter runs commit exactly once, before the first byte of the
// response reaches the client. When commit fails the error response is
// written instead and everything the handler writes afterwards is dropped.
type commitWriter struct {
	http.ResponseWriter

	commit func() error
	fail   func(error)

	once   sync.Once
	failed bool
}

func (cw *commitWriter) run() {
	cw.once.Do(func() {
		if err := cw.commit(); err != nil {
			cw.failed = true
			cw.fail(err)
		}
	})
}

func (cw *commitWriter) WriteHeader(code int) {
	// informational headers do not end the header block
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		cw.ResponseWriter.WriteHeader(code)
		return
	}
	cw.run()
	if cw.failed {
		return
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.run()
	if cw.failed {
		return 0, ErrCommitFailed
	}
	return cw.ResponseWriter.Write(b)
}

func (cw *commitWriter) Flush() {
	cw.run()
	if cw.failed {
		return
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *commitWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	cw.run()
	if cw.failed {
		return nil, nil, ErrCommitFailed
	}
	return http.NewResponseController(cw.ResponseWriter).Hijack()
}

func (cw *commitWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// finish commits a session for handlers that never wrote a response.
func (cw *commitWriter) finish() {
	cw.run()
}
