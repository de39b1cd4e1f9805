package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shivanand-hulikatti/event-inscriptions/internal/i18n"
	"github.com/Shivanand-hulikatti/event-inscriptions/internal/model"
)

// Logger returns a structured access log middleware. Server errors are
// logged at Error, client errors at Warn, everything else at Info.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// CORS allows any origin, the API's verbs and the headers it reads.
// Preflight requests are answered directly.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept-Language")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminStatus is the token status granting administrative rights.
const AdminStatus = "admin"

// Claims is the bearer token payload: the user in value.id and the
// authorization level in status ("admin" or "client").
type Claims struct {
	jwt.RegisteredClaims
	Value struct {
		ID string `json:"id"`
	} `json:"value"`
	Status string `json:"status"`
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the session attached by Authenticate.
func SessionFrom(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	return s, ok
}

// mustSession is only used behind Authenticate.
func mustSession(r *http.Request) model.Session {
	s, _ := SessionFrom(r.Context())
	return s
}

// Authenticator verifies HS256 bearer tokens signed with a shared secret.
type Authenticator struct {
	responder
	secret []byte
	now    func() time.Time
}

// NewAuthenticator constructs an Authenticator for secret.
func NewAuthenticator(secret string, tr *i18n.Translator, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		responder: responder{tr: tr, logger: logger},
		secret:    []byte(secret),
		now:       time.Now,
	}
}

// Authenticate attaches the token's session to the request. A missing or
// expired token is answered with 401, any other invalid token with 400.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			a.writeError(w, r, http.StatusUnauthorized, i18n.Unauthorized, nil)
			return
		}

		var claims Claims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return a.secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(a.now),
		)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			a.writeError(w, r, http.StatusUnauthorized, i18n.TokenExpired, nil)
			return
		case err != nil, strings.TrimSpace(claims.Value.ID) == "":
			a.writeError(w, r, http.StatusBadRequest, i18n.TokenMalformed, nil)
			return
		}

		session := model.Session{
			UserID:  claims.Value.ID,
			IsAdmin: claims.Status == AdminStatus,
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireAdmin rejects sessions without administrative rights with 403.
// It must run after Authenticate.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, ok := SessionFrom(r.Context()); !ok || !session.IsAdmin {
			a.writeError(w, r, http.StatusForbidden, i18n.Forbidden, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
