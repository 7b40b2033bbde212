// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/elovote/auth"
	"github.com/danielhkuo/elovote/cliparse"
	"github.com/danielhkuo/elovote/db"
	"github.com/danielhkuo/elovote/models"
	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs HS256 tokens in tests
const TestSecret = "test-jwt-secret"

// SetupTestDB creates a fresh SQLite database with the full schema. The
// file lives in a per-test temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+filepath.Join(t.TempDir(), "elovote_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file:test.db",
		DatabaseType: db.TypeSQLite,
		JWTSecret:    TestSecret,
		RateLimit:    1000,
		RateBurst:    1000,
	}
}

// Verifier returns a verifier that accepts tokens from Token
func Verifier(t *testing.T) auth.Verifier {
	t.Helper()
	v, err := auth.NewJWTVerifier(TestSecret, nil)
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}
	return v
}

// Token signs an HS256 access token for the given subject, email and role
func Token(t *testing.T, sub, email, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// BearerHeader returns request headers carrying a token for email
func BearerHeader(t *testing.T, email, role string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + Token(t, email, email, role)}
}

// AsUser attaches an identity to req as the auth middleware would
func AsUser(req *http.Request, email string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{
		Subject: email,
		Email:   email,
		Role:    models.RoleUser,
	}))
}

// AsAdmin attaches a superadmin identity to req
func AsAdmin(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{
		Subject: "admin",
		Email:   "admin@example.com",
		Role:    models.RoleSuperadmin,
	}))
}

// CreateTestPoll creates a poll owned by creatorEmail and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, creatorEmail string) string {
	t.Helper()

	pollID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO poll (id, title, description, creator_email, created_at)
		VALUES ($1, 'Test Poll', 'A test poll', $2, $3)
	`, pollID, creatorEmail, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption appends an option to a poll and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, pollID, label string) string {
	t.Helper()

	optionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO option (id, poll_id, label, position, created_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM option WHERE poll_id = $2), $4)
	`, optionID, pollID, label, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestSession opens an active session for voterEmail
func CreateTestSession(t *testing.T, conn *sql.DB, pollID, voterEmail string) string {
	t.Helper()

	sessionID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO voter_session (id, poll_id, voter_email, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sessionID, pollID, voterEmail, models.SessionActive, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID
}

// SubmitTestOutcome records winner beating loser as the next outcome of a session
func SubmitTestOutcome(t *testing.T, conn *sql.DB, sessionID, winner, loser string) {
	t.Helper()

	low, high := winner, loser
	if high < low {
		low, high = high, low
	}
	_, err := conn.Exec(`
		INSERT INTO match_result (id, session_id, seq, winner_option_id, loser_option_id,
		                          pair_low, pair_high, match_index, submitted_at)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, COALESCE(MAX(seq), 0), $7
		FROM match_result WHERE session_id = $2
	`, auth.NewID(), sessionID, winner, loser, low, high, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test outcome: %v", err)
	}
}

// SubmitRoundRobin records every pair of options once, the lower index
// winning each match
func SubmitRoundRobin(t *testing.T, conn *sql.DB, sessionID string, optionIDs []string) {
	t.Helper()

	for i := 0; i < len(optionIDs); i++ {
		for j := i + 1; j < len(optionIDs); j++ {
			SubmitTestOutcome(t, conn, sessionID, optionIDs[i], optionIDs[j])
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
