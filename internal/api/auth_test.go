package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crayann/swiftbase-backend/internal/store"
)

func authRouter() (*gin.Engine, *store.MemoryStore) {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	r := gin.New()
	r.POST("/api/auth/register", RegisterHandler(st))
	r.POST("/api/auth/login", LoginHandler(st, "test-secret"))
	return r, st
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := authRouter()

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"email": "Maria@Example.com", "password": "correct-horse", "fullName": "Maria Lopez", "country": "us",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Login is case insensitive on the email
	rec = postJSON(t, r, "/api/auth/login", gin.H{"email": "maria@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r, _ := authRouter()

	rec := postJSON(t, r, "/api/auth/register", gin.H{
		"email": "not-an-email", "password": "correct-horse", "fullName": "Maria Lopez",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, r, "/api/auth/register", gin.H{
		"email": "maria@example.com", "password": "short", "fullName": "Maria Lopez",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _ := authRouter()

	body := gin.H{"email": "maria@example.com", "password": "correct-horse", "fullName": "Maria Lopez"}
	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/auth/register", body).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, r, "/api/auth/register", body).Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r, _ := authRouter()

	require.Equal(t, http.StatusCreated, postJSON(t, r, "/api/auth/register", gin.H{
		"email": "maria@example.com", "password": "correct-horse", "fullName": "Maria Lopez",
	}).Code)

	rec := postJSON(t, r, "/api/auth/login", gin.H{"email": "maria@example.com", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, r, "/api/auth/login", gin.H{"email": "nobody@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
