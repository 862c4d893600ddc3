package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"patisserie/internal/db/mock"
	"patisserie/models"
)

// Seeded accounts of the mock database.
var (
	editorUser = models.User{Model: gorm.Model{ID: 1}, FirmID: mock.FirmID, AccessLevel: models.AccessEditor}
	viewerUser = models.User{Model: gorm.Model{ID: 2}, FirmID: mock.FirmID, AccessLevel: models.AccessViewer}
	rivalUser  = models.User{Model: gorm.Model{ID: 3}, FirmID: mock.OtherFirmID, AccessLevel: models.AccessEditor}
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

// withTestDatabase installs a freshly seeded mock database.
func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	originalDB, originalService := database, service
	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	Configure(sessionManager, db)
	return db, func() {
		database, service = originalDB, originalService
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func withFixtures(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	_, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)
	return sm
}

// sessionRequest builds a request whose session belongs to user.
func sessionRequest(t *testing.T, sm *scs.SessionManager, user models.User, method, target, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	req = req.WithContext(ctx)
	if err := establishSession(req, &user); err != nil {
		t.Fatalf("failed to establish session: %v", err)
	}
	return req
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	RequireAuthentication(handler).ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(rr.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return value
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}
