package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	domain "accounts/backend/internal/domain/account"
	authusecase "accounts/backend/internal/usecase/auth"
	"accounts/backend/internal/usecase/rules"
)

const minPasswordLength = 8

func (s *Server) registerRoutes() {
	s.router.Handle("/health", http.HandlerFunc(s.handleHealth))
	s.router.Handle("/auth/register", http.HandlerFunc(s.handleRegister))
	s.router.Handle("/auth/login", http.HandlerFunc(s.handleLogin))
	s.router.Handle("/auth/logout", http.HandlerFunc(s.handleLogout))

	s.router.Handle("/users/me", s.authorize("", http.HandlerFunc(s.handleMe)))

	s.router.Handle("/admin/users", s.authorize(domain.RoleAdmin, http.HandlerFunc(s.handleAdminUsers)))
	s.router.Handle("/admin/rules", s.authorize(domain.RoleAdmin, http.HandlerFunc(s.handleAdminRules)))
	s.router.Handle("/admin/rules/", s.authorize(domain.RoleAdmin, http.HandlerFunc(s.handleAdminRuleByNumber)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
		Name            string `json:"name"`
		Surname         string `json:"surname"`
		MiddleName      string `json:"middleName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	password := strings.TrimSpace(payload.Password)
	if len(password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if payload.PasswordConfirm != "" && strings.TrimSpace(payload.PasswordConfirm) != password {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	user, token, err := s.authService.Register(r.Context(), authusecase.RegisterInput{
		Email:      payload.Email,
		Password:   password,
		Name:       payload.Name,
		Surname:    payload.Surname,
		MiddleName: payload.MiddleName,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{"user": toUserPayload(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, user, err := s.authService.Login(r.Context(), domain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": toUserPayload(user)})
}

// handleLogout only discards the cookie; tokens are stateless and expire on
// their own.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"user": toUserPayload(user)})
	case http.MethodPatch, http.MethodPut:
		var payload struct {
			Name       *string `json:"name"`
			Surname    *string `json:"surname"`
			MiddleName *string `json:"middleName"`
			Password   *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "update payload required")
			} else {
				writeError(w, http.StatusBadRequest, "invalid JSON payload")
			}
			return
		}
		if payload.Password != nil && len(strings.TrimSpace(*payload.Password)) < minPasswordLength {
			writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}

		updated, err := s.authService.UpdateProfile(r.Context(), user.Email, authusecase.UpdateInput{
			Name:       payload.Name,
			Surname:    payload.Surname,
			MiddleName: payload.MiddleName,
			Password:   payload.Password,
		})
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
			} else {
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": toUserPayload(updated)})
	case http.MethodDelete:
		if err := s.authService.Deactivate(r.Context(), user.Email); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		s.clearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	users, err := s.authService.ListUsers(r.Context(), authusecase.Filter{
		Role: r.URL.Query().Get("role"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": toUserPayloads(users)})
}

func (s *Server) handleAdminRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"rules": s.rules.List()})
	case http.MethodPost:
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "rule text required")
			} else {
				writeError(w, http.StatusBadRequest, "invalid JSON payload")
			}
			return
		}
		text := strings.TrimSpace(payload.Text)
		if text == "" {
			writeError(w, http.StatusBadRequest, "rule text required")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"rules": s.rules.Add(text)})
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAdminRuleByNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w, http.MethodDelete)
		return
	}

	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/rules/"), "/")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "rule number required")
		return
	}

	remaining, err := s.rules.Delete(number)
	if err != nil {
		if errors.Is(err, rules.ErrRuleNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": remaining})
}
