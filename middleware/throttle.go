package middleware

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoginThrottle holds every response of the wrapped handler until at least
// floor has elapsed since the request arrived. The response itself is
// replayed unchanged.
type LoginThrottle struct {
	floor  time.Duration
	logger *zap.Logger
}

// NewLoginThrottle creates a LoginThrottle with the given floor
func NewLoginThrottle(floor time.Duration, logger *zap.Logger) *LoginThrottle {
	return &LoginThrottle{
		floor:  floor,
		logger: logger,
	}
}

// Middleware wraps a handler with the throttle
func (t *LoginThrottle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		buf := &bufferedResponse{header: w.Header()}

		func() {
			// a panicking handler still waits out the floor before the
			// recoverer further up the chain answers
			defer func() {
				if rec := recover(); rec != nil {
					t.wait(r, start)
					panic(rec)
				}
			}()
			next.ServeHTTP(buf, r)
		}()

		if !t.wait(r, start) {
			t.logger.Debug("client went away during login throttle",
				zap.String("request_id", GetRequestIDFromContext(r.Context())))
			return
		}
		buf.replay(w)
	})
}

// wait blocks until floor has elapsed since start. It returns false if
// the request context ended first.
func (t *LoginThrottle) wait(r *http.Request, start time.Time) bool {
	remaining := t.floor - time.Since(start)
	if remaining <= 0 {
		return true
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

// bufferedResponse captures status and body so nothing reaches the client
// before the floor. Headers go straight to the real writer's map, which is
// not sent until WriteHeader.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) replay(w http.ResponseWriter) {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(b.body.Bytes())
}
