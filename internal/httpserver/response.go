package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	domain "accounts/backend/internal/domain/account"
)

type errorResponse struct {
	Error string `json:"error"`
}

// userPayload is the wire shape of a user; the password hash never leaves
// the service.
type userPayload struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	MiddleName string `json:"middleName"`
	Role       string `json:"role"`
	IsActive   bool   `json:"isActive"`
}

func toUserPayload(u *domain.User) userPayload {
	return userPayload{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Surname:    u.Surname,
		MiddleName: u.MiddleName,
		Role:       string(u.Role),
		IsActive:   u.IsActive,
	}
}

func toUserPayloads(items []*domain.User) []userPayload {
	out := make([]userPayload, 0, len(items))
	for _, item := range items {
		out = append(out, toUserPayload(item))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cookieTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
