package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "patisserie/internal/log"
	"patisserie/internal/tenant"
	"patisserie/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserNameKey      = "auth:user:name"
	sessionFirmIDKey        = "auth:firm:id"
	sessionAccessLevelKey   = "auth:access"
)

var errInvalidCredentials = errors.New("auth: invalid email or password")

func findUserByEmail(r *http.Request, email string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).Where("lower(email) = ?", strings.ToLower(email)).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// authenticate verifies the provided credentials and populates the session if successful.
func authenticate(r *http.Request, email, password string) (*models.User, error) {
	if sessionManager == nil {
		return nil, errors.New("session manager not configured")
	}

	user, err := findUserByEmail(r, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	if err := establishSession(r, user); err != nil {
		return nil, err
	}
	return user, nil
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Name)
	sessionManager.Put(r.Context(), sessionFirmIDKey, int(user.FirmID))
	sessionManager.Put(r.Context(), sessionAccessLevelKey, int(user.AccessLevel))
	return nil
}

// RequireAuthentication ensures the user has an active session and installs
// the user's firm and access level as the request's tenant scope.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := currentScope(r)
		if !ActiveSession(r) || !ok {
			applog.Debug(r.Context(), "unauthenticated request rejected", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, _ := currentUserID(r)
		ctx := tenant.WithScope(r.Context(), scope)
		ctx = applog.WithAttrs(ctx, "user_id", userID, "owner_id", scope.OwnerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logout destroys the current session.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to sign out")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func currentScope(r *http.Request) (tenant.Scope, bool) {
	if sessionManager == nil {
		return tenant.Scope{}, false
	}
	firmID := sessionManager.GetInt(r.Context(), sessionFirmIDKey)
	if firmID <= 0 {
		return tenant.Scope{}, false
	}
	access := models.AccessLevel(sessionManager.GetInt(r.Context(), sessionAccessLevelKey))
	if !models.ValidAccessLevel(access) {
		access = models.AccessViewer
	}
	return tenant.New(uint(firmID), access), true
}
