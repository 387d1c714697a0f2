package web

import (
	"context"
	"net/http"
	"time"

	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/session"

	"github.com/go-chi/chi/v5/middleware"
)

// SessionHeader carries the client session id in both directions.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// withSession attaches the caller's session, issuing a new id when the request
// carries none.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Get(r.Header.Get(SessionHeader))
		w.Header().Set(SessionHeader, sess.ID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("request",
			logging.Field{Key: "method", Value: r.Method},
			logging.Field{Key: "path", Value: r.URL.Path},
			logging.Field{Key: logging.FieldStatus, Value: status},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
			logging.Field{Key: "ip", Value: r.RemoteAddr},
			logging.Field{Key: "request_id", Value: middleware.GetReqID(r.Context())})
	})
}
