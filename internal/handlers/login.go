package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	applog "patisserie/internal/log"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	FirmID      uint   `json:"firm_id"`
	AccessLevel string `json:"access_level"`
}

// Login processes sign-in submissions sent as a form or as JSON.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method)

	if r.Method != http.MethodPost {
		applog.Debug(r.Context(), "method not allowed for login", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		http.Error(w, "authentication not available", http.StatusServiceUnavailable)
		return
	}

	credentials, ok := readCredentials(w, r)
	if !ok {
		return
	}
	email := strings.TrimSpace(credentials.Email)
	if email == "" || credentials.Password == "" {
		applog.Debug(r.Context(), "login missing credentials", "emailPresent", email != "", "passwordPresent", credentials.Password != "")
		writeJSONError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := authenticate(r, email, credentials.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email))
			writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		applog.Error(r.Context(), "failed to sign in", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Debug(r.Context(), "authentication succeeded", "email", strings.ToLower(email))
	writeJSON(w, http.StatusOK, loginResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		FirmID:      user.FirmID,
		AccessLevel: user.AccessLevel.String(),
	})
}

func readCredentials(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var payload loginRequest
		if !decodeJSON(w, r, &payload) {
			return loginRequest{}, false
		}
		return payload, true
	}

	if err := r.ParseForm(); err != nil {
		applog.Debug(r.Context(), "failed to parse login form", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid form submission")
		return loginRequest{}, false
	}
	return loginRequest{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}, true
}
