package controller

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cinesync/server/pkg/ctxlogger"
	"github.com/cinesync/server/pkg/rest"
)

const accessTokenCookie = "access_token"

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// privilegedMw guards operator-only routes behind the access token cookie.
func (c controller) privilegedMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verification := c.authService.Verify(c.credentialFromRequest(r))
		if !verification.Authenticated || verification.Level <= 0 {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// credentialFromRequest reads the caller's access token; an absent cookie is
// an empty credential, which verifies as an anonymous viewer.
func (c controller) credentialFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil {
		return ""
	}

	return cookie.Value
}
