package controller_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"jobtrail-backend/internal/auth"
	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/controller"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/server"
	"jobtrail-backend/internal/store"
	"jobtrail-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the full route tree against a fresh in-memory
// database, an in-process bus and in-memory blob storage.
func newTestRouter(t *testing.T) (*gin.Engine, *blob.MemoryStore) {
	t.Helper()

	db, err := database.GetTestDB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	bus := store.NewMemoryBus()
	t.Cleanup(bus.Close)
	blobs := blob.NewMemoryStore()
	stores := store.New(db, bus)

	ctrl := controller.New(db, stores, blobs)
	t.Cleanup(ctrl.Registry.Close)

	s := &server.Server{DB: db, Stores: stores, Controller: ctrl}
	r, ok := s.RegisterRoutes().(*gin.Engine)
	if !ok {
		t.Fatal("expected a gin engine")
	}
	return r, blobs
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.GenerateToken(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func createJob(t *testing.T, r *gin.Engine, token string, body gin.H) string {
	t.Helper()
	rec, resp := testutil.MakeJSONRequest(body, token, r, "/api/v1/jobs", http.MethodPost)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: status %d body %s", rec.Code, rec.Body.String())
	}
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatalf("create job: no id in %v", resp)
	}
	return id
}

func jsonInto(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func TestRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := testutil.MakeJSONRequest(nil, "", r, "/api/v1/jobs", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, "not-a-token", r, "/api/v1/jobs", http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, tokenFor(t, database.TestUser1.ID), r, "/api/v1/jobs", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, resp := testutil.MakeJSONRequest(gin.H{
		"username": "newcomer",
		"password": "longenough",
	}, "", r, "/api/v1/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, resp["access_token"])

	// duplicate username
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "newcomer",
		"password": "longenough",
	}, "", r, "/api/v1/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// short password
	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "other",
		"password": "short",
	}, "", r, "/api/v1/auth/register", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{
		"username": "newcomer",
		"password": "longenough",
	}, "", r, "/api/v1/auth/login", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp["access_token"])

	rec, _ = testutil.MakeJSONRequest(gin.H{
		"username": "newcomer",
		"password": "wrongpassword",
	}, "", r, "/api/v1/auth/login", http.MethodPost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobCRUD(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)

	jobID := createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "saved", resp["status"])

	rec, resp = testutil.MakeJSONRequest(gin.H{"location": "Berlin"}, token, r, "/api/v1/jobs/"+jobID, http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Berlin", resp["location"])

	// status cannot move through the generic patch
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "applied"}, token, r, "/api/v1/jobs/"+jobID, http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a stranger's token sees nothing
	rec, _ = testutil.MakeJSONRequest(nil, tokenFor(t, database.TestUser2.ID), r, "/api/v1/jobs/"+jobID, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID, http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)
	jobID := createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	// saved cannot jump straight to an offer
	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "offered"}, token, r, "/api/v1/jobs/"+jobID+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// unknown status
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "ghosted"}, token, r, "/api/v1/jobs/"+jobID+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := testutil.MakeJSONRequest(gin.H{"status": "applied", "reason": "sent resume"}, token, r, "/api/v1/jobs/"+jobID+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "applied", resp["status"])

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/history", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	var history []map[string]interface{}
	assert.NoError(t, jsonInto(rec.Body.Bytes(), &history))
	if assert.Len(t, history, 2) {
		assert.Equal(t, "applied", history[0]["to_status"])
		assert.Equal(t, "sent resume", history[0]["reason"])
	}
}

func TestNoteEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)
	jobID := createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	rec, resp := testutil.MakeJSONRequest(gin.H{"content": "  call them back  "}, token, r, "/api/v1/jobs/"+jobID+"/notes", http.MethodPost)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "call them back", resp["content"])
	assert.Equal(t, "general", resp["category"])
	noteID, _ := resp["id"].(string)

	rec, _ = testutil.MakeJSONRequest(gin.H{"content": "   "}, token, r, "/api/v1/jobs/"+jobID+"/notes", http.MethodPost)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/notes", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	var notes []map[string]interface{}
	assert.NoError(t, jsonInto(rec.Body.Bytes(), &notes))
	assert.Len(t, notes, 1)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/notes/"+noteID, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDocumentEndpoints(t *testing.T) {
	r, blobs := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)
	jobID := createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	content := []byte("%PDF-1.4 fake resume")
	rec, resp := testutil.MakeMultipartRequest("file", "resume.pdf", content,
		map[string]string{"document_type": "resume"}, token, r, "/api/v1/jobs/"+jobID+"/documents")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, resp["is_primary"])
	docID, _ := resp["id"].(string)
	assert.Equal(t, 1, blobs.Len())

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/documents", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/documents/"+docID+"/download", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.Bytes())

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs/"+jobID+"/documents/"+docID, http.MethodDelete)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, blobs.Len())
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)

	jobID := createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
		"source":       "linkedin",
	})
	rec, _ := testutil.MakeJSONRequest(gin.H{"status": "applied"}, token, r, "/api/v1/jobs/"+jobID+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := testutil.MakeJSONRequest(nil, token, r, "/api/v1/stats", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), resp["total"])

	byStatus, _ := resp["by_status"].(map[string]interface{})
	if assert.NotNil(t, byStatus) {
		assert.Equal(t, float64(1), byStatus["applied"])
		assert.Equal(t, float64(0), byStatus["saved"])
	}
}

func TestLogoutDisposesSession(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)

	createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/api/v1/auth/logout", http.MethodPost)
	assert.Equal(t, http.StatusOK, rec.Code)

	// a fresh session is built on the next request
	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/api/v1/jobs", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventsStream_smoke(t *testing.T) {
	r, _ := newTestRouter(t)
	token := tokenFor(t, database.TestUser1.ID)

	// warm the session so the stream subscribes to a live collection
	createJob(t, r, token, gin.H{
		"company_name": "Acme",
		"job_title":    "Go Developer",
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events", nil)
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	// produce a change once the stream has had time to subscribe
	go func() {
		time.Sleep(200 * time.Millisecond)
		body, _ := json.Marshal(gin.H{"company_name": "Streamed", "job_title": "Dev"})
		createReq, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/jobs", bytes.NewReader(body))
		createReq.Header.Set("Authorization", "Bearer "+token)
		createReq.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(createReq)
		if err == nil {
			resp.Body.Close()
		}
	}()

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	found := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "Streamed") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a change event on the stream")
}

func TestRouterBuildsWithoutOriginConfig(t *testing.T) {
	// no ALLOW_ORIGIN in the environment; the router must still come up
	// and answer a preflight with the wildcard default
	t.Setenv("ALLOW_ORIGIN", "")
	r, _ := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
