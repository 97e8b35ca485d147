package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkamran/campushub/internal/auth"
	"github.com/mkamran/campushub/internal/db"
	"github.com/mkamran/campushub/internal/feed"
	"github.com/mkamran/campushub/internal/lifecycle"
	"github.com/mkamran/campushub/internal/model"
	"github.com/mkamran/campushub/internal/objectstore"
	"github.com/mkamran/campushub/internal/roles"
	"github.com/mkamran/campushub/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	resolver := roles.Chain{
		roles.NewStaticResolver(nil),
		&roles.StoreResolver{DB: database},
	}
	bus := feed.NewBus(0)
	engine := lifecycle.New(database, resolver, bus, objectstore.NewMemory())

	mux := NewRouter(Config{
		DB:                    database,
		JWTSecret:             testJWTSecret,
		Engine:                engine,
		Roles:                 resolver,
		Feed:                  bus,
		ComplaintDeletePolicy: lifecycle.ComplaintDeleteOwnerOnly,
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	// Seed the admin account; regular users register through the API.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if _, err := store.CreateUser(context.Background(), database, "admin@example.com", string(hash), model.RoleAdmin); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}

	return server
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp["token"] == "" {
		t.Fatal("empty token from login")
	}
	return loginResp["token"]
}

func register(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: %d", resp.StatusCode)
	}

	var regResp map[string]string
	json.NewDecoder(resp.Body).Decode(&regResp)
	return regResp["token"]
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, out any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	server := setupTestServer(t)

	register(t, server, "ali@example.com")
	token := login(t, server, "ali@example.com", "password")
	if token == "" {
		t.Fatal("expected token")
	}

	// Registering the same email again conflicts.
	body, _ := json.Marshal(map[string]string{"email": "ali@example.com", "password": "password"})
	resp, _ := http.Post(server.URL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password.
	body, _ = json.Marshal(map[string]string{"email": "ali@example.com", "password": "wrong"})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLostFoundAPIFlow(t *testing.T) {
	server := setupTestServer(t)
	token := register(t, server, "ali@example.com")

	var item model.LostFoundItem
	req, _ := authRequest("POST", server.URL+"/api/lostfound", token, map[string]string{
		"title":       "Blue Backpack",
		"description": "left in the library",
		"type":        model.ItemTypeLost,
		"contact":     "555-0100",
	})
	doJSON(t, req, http.StatusCreated, &item)
	if item.Status != model.ItemStatusPending {
		t.Errorf("expected 'Pending', got %q", item.Status)
	}
	if item.UserEmail != "ali@example.com" {
		t.Errorf("expected owner stamped from the session, got %q", item.UserEmail)
	}

	var items []model.LostFoundItem
	req, _ = authRequest("GET", server.URL+"/api/lostfound?type=Lost", token, nil)
	doJSON(t, req, http.StatusOK, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	// Recover with the read version.
	req, _ = authRequest("PUT", server.URL+"/api/lostfound/"+itoa(item.ID)+"/status", token, map[string]any{
		"status": model.ItemStatusRecovered, "version": item.Version,
	})
	var updated model.LostFoundItem
	doJSON(t, req, http.StatusOK, &updated)
	if updated.Status != model.ItemStatusRecovered {
		t.Errorf("expected 'Recovered', got %q", updated.Status)
	}

	// Replaying the stale version conflicts.
	req, _ = authRequest("PUT", server.URL+"/api/lostfound/"+itoa(item.ID)+"/status", token, map[string]any{
		"status": model.ItemStatusRecovered, "version": item.Version,
	})
	doJSON(t, req, http.StatusBadRequest, nil)
}

func TestComplaintOwnership(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")
	saraToken := register(t, server, "sara@example.com")

	var c model.Complaint
	req, _ := authRequest("POST", server.URL+"/api/complaints", aliToken, map[string]string{
		"campus": "North", "category": "Electrical", "description": "flickering lights",
	})
	doJSON(t, req, http.StatusCreated, &c)

	// Sara sees only her own (empty) list.
	var list []model.Complaint
	req, _ = authRequest("GET", server.URL+"/api/complaints", saraToken, nil)
	doJSON(t, req, http.StatusOK, &list)
	if len(list) != 0 {
		t.Errorf("expected empty list for non-owner, got %d", len(list))
	}

	// Sara cannot delete Ali's ticket.
	req, _ = authRequest("DELETE", server.URL+"/api/complaints/"+itoa(c.ID), saraToken, nil)
	doJSON(t, req, http.StatusForbidden, nil)

	// Ali can, under the owner-only policy.
	req, _ = authRequest("DELETE", server.URL+"/api/complaints/"+itoa(c.ID), aliToken, nil)
	doJSON(t, req, http.StatusOK, nil)
}

// expiredToken signs a token whose lifetime has already passed.
func expiredToken(t *testing.T, email string) string {
	t.Helper()
	claims := auth.Claims{
		UserID: 1,
		Email:  email,
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "stale-session",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}
	return signed
}

func TestExpiredSessionRejectedWithoutWrite(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")

	var c model.Complaint
	req, _ := authRequest("POST", server.URL+"/api/complaints", aliToken, map[string]string{
		"campus": "North", "category": "Electrical", "description": "flickering lights",
	})
	doJSON(t, req, http.StatusCreated, &c)

	// An update with an expired token is rejected before any write.
	stale := expiredToken(t, "ali@example.com")
	req, _ = authRequest("PUT", server.URL+"/api/complaints/"+itoa(c.ID), stale, map[string]any{
		"campus": "South", "category": "Electrical", "description": "hijacked", "version": c.Version,
	})
	doJSON(t, req, http.StatusUnauthorized, nil)

	// The record is untouched: same fields, same version.
	var list []model.Complaint
	req, _ = authRequest("GET", server.URL+"/api/complaints", aliToken, nil)
	doJSON(t, req, http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 complaint, got %d", len(list))
	}
	got := list[0]
	if got.Campus != "North" || got.Description != "flickering lights" {
		t.Errorf("expected record unchanged, got %+v", got)
	}
	if got.Version != c.Version {
		t.Errorf("expected version %d unchanged, got %d", c.Version, got.Version)
	}
}

func TestComplaintModeration(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")
	adminToken := login(t, server, "admin@example.com", "password")

	var c model.Complaint
	req, _ := authRequest("POST", server.URL+"/api/complaints", aliToken, map[string]string{
		"campus": "North", "category": "Electrical", "description": "flickering lights",
	})
	doJSON(t, req, http.StatusCreated, &c)

	// Only admins may move the status.
	req, _ = authRequest("PUT", server.URL+"/api/complaints/"+itoa(c.ID)+"/status", aliToken, map[string]any{
		"status": model.ComplaintStatusResolved, "version": c.Version,
	})
	doJSON(t, req, http.StatusForbidden, nil)

	var resolved model.Complaint
	req, _ = authRequest("PUT", server.URL+"/api/complaints/"+itoa(c.ID)+"/status", adminToken, map[string]any{
		"status": model.ComplaintStatusResolved, "version": c.Version,
	})
	doJSON(t, req, http.StatusOK, &resolved)

	// Backward moves are rejected as bad transitions even for admins.
	req, _ = authRequest("PUT", server.URL+"/api/complaints/"+itoa(c.ID)+"/status", adminToken, map[string]any{
		"status": model.ComplaintStatusSubmitted, "version": resolved.Version,
	})
	doJSON(t, req, http.StatusBadRequest, nil)
}

func TestAdminOverviewGate(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")
	adminToken := login(t, server, "admin@example.com", "password")

	req, _ := authRequest("GET", server.URL+"/api/admin/overview", aliToken, nil)
	doJSON(t, req, http.StatusForbidden, nil)

	req, _ = authRequest("POST", server.URL+"/api/complaints", aliToken, map[string]string{
		"campus": "North", "category": "Electrical", "description": "flickering lights",
	})
	doJSON(t, req, http.StatusCreated, nil)

	var overview overviewResponse
	req, _ = authRequest("GET", server.URL+"/api/admin/overview", adminToken, nil)
	doJSON(t, req, http.StatusOK, &overview)
	if overview.Counts.Complaints != 1 {
		t.Errorf("expected 1 complaint in overview, got %d", overview.Counts.Complaints)
	}
}

func TestAnnouncementsFlow(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")
	adminToken := login(t, server, "admin@example.com", "password")

	resp, _ := http.Get(server.URL + "/api/announcements/latest")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 with no announcements, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := authRequest("POST", server.URL+"/api/admin/announcements", aliToken, map[string]string{
		"title": "Notice", "message": "content",
	})
	doJSON(t, req, http.StatusForbidden, nil)

	req, _ = authRequest("POST", server.URL+"/api/admin/announcements", adminToken, map[string]string{
		"title": "Notice", "message": "content",
	})
	doJSON(t, req, http.StatusCreated, nil)

	var latest model.Announcement
	resp, err := http.Get(server.URL + "/api/announcements/latest")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	json.NewDecoder(resp.Body).Decode(&latest)
	resp.Body.Close()
	if latest.Title != "Notice" {
		t.Errorf("expected latest announcement 'Notice', got %q", latest.Title)
	}
}

func TestContactFormPublic(t *testing.T) {
	server := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{
		"name": "Ali", "email": "ali@example.com", "message": "hello",
	})
	resp, err := http.Post(server.URL+"/api/contact", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestNotificationStream(t *testing.T) {
	server := setupTestServer(t)
	aliToken := register(t, server, "ali@example.com")
	saraToken := register(t, server, "sara@example.com")

	// Ali creates an item before Sara connects; it arrives as backfill.
	req, _ := authRequest("POST", server.URL+"/api/lostfound", aliToken, map[string]string{
		"title": "Backpack", "description": "x", "type": model.ItemTypeLost, "contact": "555-0100",
	})
	doJSON(t, req, http.StatusCreated, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	streamReq, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/api/notifications/stream", nil)
	streamReq.Header.Set("Authorization", "Bearer "+saraToken)

	resp, err := http.DefaultClient.Do(streamReq)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	var sawSubscribed, sawBackfill bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "event: subscribed" {
			sawSubscribed = true
		}
		if strings.HasPrefix(line, "data: ") && sawBackfill {
			if !strings.Contains(line, "Backpack") {
				t.Errorf("expected backfill to carry the item, got %q", line)
			}
			break
		}
		if line == "event: backfill" {
			sawBackfill = true
		}
	}
	if !sawSubscribed || !sawBackfill {
		t.Errorf("expected subscribed and backfill events (subscribed=%v backfill=%v)", sawSubscribed, sawBackfill)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
