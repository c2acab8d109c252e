package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/AhmedSaid25/GateKeeper/internal/rate"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// setRateLimitHeaders adds the standard X-RateLimit-* headers for a
// decision. Reset is epoch seconds at now + retryAfter.
func setRateLimitHeaders(w http.ResponseWriter, dec rate.Decision) {
	reset := time.Now().Unix() + int64(retryAfterSeconds(dec))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit.Requests))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(dec.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))
}

// retryAfterSeconds rounds the retry hint up so a caller that waits
// the advertised amount always lands in the next window.
func retryAfterSeconds(dec rate.Decision) int {
	if dec.RetryAfter <= 0 {
		return 0
	}
	return int((dec.RetryAfter + time.Second - 1) / time.Second)
}

func windowSeconds(dec rate.Decision) int {
	return int(dec.Limit.Window / time.Second)
}
