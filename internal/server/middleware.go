package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AhmedSaid25/GateKeeper/internal/auth"
	"github.com/AhmedSaid25/GateKeeper/internal/clients"
	"github.com/AhmedSaid25/GateKeeper/internal/rate"
)

type clientContextKey struct{}

// ClientFromContext returns the verified client attached by the auth
// middleware, if any.
func ClientFromContext(ctx context.Context) (*clients.Client, bool) {
	client, ok := ctx.Value(clientContextKey{}).(*clients.Client)
	return client, ok
}

// requireAuth verifies the Authorization header and attaches the
// resulting identity to the request context. Revoked clients get 403,
// distinct from the 401 an unknown or missing key produces.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := strings.TrimSpace(r.Header.Get("Authorization"))

		client, err := s.verifier.Verify(r.Context(), presented)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				s.metrics.AuthFailure("unauthenticated")
				writeError(w, http.StatusUnauthorized, "API key required")
			case errors.Is(err, auth.ErrInvalidCredential):
				s.metrics.AuthFailure("invalid_credential")
				writeError(w, http.StatusUnauthorized, "Invalid API key")
			case errors.Is(err, auth.ErrRevoked):
				s.metrics.AuthFailure("revoked")
				writeError(w, http.StatusForbidden, "API key revoked")
			default:
				s.log.Error("client store lookup failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), clientContextKey{}, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit counts the request against the caller's route-scoped
// bucket before the handler runs. Store failures fail open: the
// request passes and the error is only logged and counted.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := rate.IdentifierInput{
			Address: clientIP(r),
			Route:   r.URL.Path,
		}
		if client, ok := ClientFromContext(r.Context()); ok {
			in.IdentityID = client.ID
		}

		identifier, err := rate.ResolveIdentifier(in)
		if err != nil {
			// Nothing to key on; counting is impossible, so let the
			// request through.
			next.ServeHTTP(w, r)
			return
		}

		dec, err := s.engine.Check(r.Context(), identifier)
		if err != nil {
			s.log.Warn("admission check failed, failing open",
				zap.String("identifier", identifier), zap.Error(err))
			s.metrics.StoreFailure()
			dec = s.engine.FailOpen()
		}

		setRateLimitHeaders(w, dec)
		s.metrics.Decision(dec.Allowed)

		if !dec.Allowed {
			writeJSON(w, http.StatusTooManyRequests, deniedResponse(dec))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the originating address, preferring proxy headers
// over the socket peer.
func clientIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
