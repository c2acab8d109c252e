package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AhmedSaid25/GateKeeper/internal/clients"
	"github.com/AhmedSaid25/GateKeeper/internal/rate"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": banner,
	})
}

type registerRequest struct {
	ClientName string `json:"clientName"`
	Email      string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	client, apiKey, err := s.registrar.Register(r.Context(), body.ClientName, body.Email)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrInvalidRegistration):
			writeError(w, http.StatusBadRequest, "clientName and email required")
		case errors.Is(err, clients.ErrDuplicateEmail):
			writeError(w, http.StatusBadRequest, "Email already registered")
		default:
			s.log.Error("registration failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Client registered successfully. Store this API key securely; it won't be shown again.",
		"clientId": client.ID,
		"apiKey":   apiKey,
	})
}

type checkLimitRequest struct {
	ClientID string `json:"clientId"`
	IP       string `json:"ip"`
	Route    string `json:"route"`
}

type checkLimitResponse struct {
	Allowed    bool  `json:"allowed"`
	Remaining  int64 `json:"remaining"`
	RetryAfter int   `json:"retryAfter"`
	Limit      int   `json:"limit"`
	Window     int   `json:"window"`
}

func (s *Server) handleCheckLimit(w http.ResponseWriter, r *http.Request) {
	var body checkLimitRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	in := rate.IdentifierInput{
		ClientRef: body.ClientID,
		Address:   body.IP,
		Route:     body.Route,
	}
	if client, ok := ClientFromContext(r.Context()); ok {
		in.IdentityID = client.ID
	}
	if in.Address == "" {
		in.Address = clientIP(r)
	}

	identifier, err := rate.ResolveIdentifier(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Either clientId or ip is required")
		return
	}

	dec, err := s.engine.Check(r.Context(), identifier)
	if err != nil {
		// Fail open: infrastructure trouble must never block traffic.
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

	writeJSON(w, http.StatusOK, checkLimitResponse{
		Allowed:    true,
		Remaining:  dec.Remaining,
		RetryAfter: 0,
		Limit:      dec.Limit.Requests,
		Window:     windowSeconds(dec),
	})
}

type setLimitRequest struct {
	ClientID string `json:"clientId"`
	Route    string `json:"route"`
	Limit    int    `json:"limit"`
	Window   int    `json:"window"`
}

type setLimitResponse struct {
	Message    string `json:"message"`
	Identifier string `json:"identifier"`
	Limit      int    `json:"limit"`
	Window     int    `json:"window"`
}

func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	var body setLimitRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.ClientID == "" || body.Limit <= 0 || body.Window <= 0 {
		writeError(w, http.StatusBadRequest, "clientId, limit, window are required")
		return
	}

	// Owner-or-admin: this is the one write in the system, enforced
	// strictly after authentication and before the config writer runs.
	caller, _ := ClientFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "API key required")
		return
	}
	if caller.ID != body.ClientID && !caller.IsAdmin {
		writeError(w, http.StatusForbidden, "Cannot modify limits for other clients")
		return
	}

	identifier := rate.Identifier(body.ClientID, body.Route)
	limit := rate.Limit{
		Requests: body.Limit,
		Window:   time.Duration(body.Window) * time.Second,
	}

	if err := s.engine.SetLimit(r.Context(), identifier, limit); err != nil {
		if errors.Is(err, rate.ErrInvalidParams) {
			writeError(w, http.StatusBadRequest, "clientId, limit, window are required")
			return
		}
		s.log.Error("limit override write failed",
			zap.String("identifier", identifier), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, setLimitResponse{
		Message:    "Limit updated",
		Identifier: identifier,
		Limit:      body.Limit,
		Window:     body.Window,
	})
}

func deniedResponse(dec rate.Decision) map[string]any {
	return map[string]any{
		"error":      "Too many requests",
		"message":    fmt.Sprintf("Rate limit of %d requests per %ds exceeded", dec.Limit.Requests, windowSeconds(dec)),
		"retryAfter": retryAfterSeconds(dec),
		"remaining":  dec.Remaining,
		"limit":      dec.Limit.Requests,
		"window":     windowSeconds(dec),
	}
}

// decodeBody tolerates an empty body; check-limit's payload is fully
// optional.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
