package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/text-to-sql-chat/internal/api/handler"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/repository/sqlite"
	"github.com/Rrens/text-to-sql-chat/internal/security"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

func newChatService(t *testing.T) *service.ChatService {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	book := service.NewAnswerBook([]service.Fixture{
		{
			Question: "total revenue",
			Answer:   "Total revenue is 220.",
			Columns:  []string{"total"},
			Data:     []domain.Row{{"total": 220.0}},
			SQL:      "SELECT SUM(amount) AS total FROM orders",
		},
	}, nil)
	return service.NewChatService(store, book)
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
}

func TestReadyCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.ReadyCheck(newChatService(t))(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestAuthHandler_Login(t *testing.T) {
	authService, err := service.NewAuthService("admin", "", security.NewJWTManager("test-secret", time.Hour))
	require.NoError(t, err)
	h := handler.NewAuthHandler(authService)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"success", `{"username":"admin","password":"admin"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest},
		{"malformed body", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))

			h.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp domain.LoginResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Token)
			} else {
				var resp map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Contains(t, resp, "detail")
			}
		})
	}
}

func TestQueryHandler_Execute(t *testing.T) {
	chatService := newChatService(t)
	queries := handler.NewQueryHandler(chatService)
	sessions := handler.NewSessionHandler(chatService)

	r := chi.NewRouter()
	r.Post("/query", queries.Execute)
	r.Post("/session/new", sessions.Create)
	r.Get("/session/{sessionID}/history", sessions.History)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/session/new", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var created domain.NewSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	_, err := uuid.Parse(created.SessionID)
	require.NoError(t, err)

	body, _ := json.Marshal(domain.QueryRequest{Question: "Total Revenue", SessionID: created.SessionID})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var answer map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&answer))
	assert.Equal(t, "Total revenue is 220.", answer["answer"])
	assert.Equal(t, []any{"total"}, answer["columns"])
	assert.Equal(t, "SELECT SUM(amount) AS total FROM orders", answer["sql"])
	assert.NotContains(t, answer, "graphData")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/"+created.SessionID+"/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var history domain.HistoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, domain.RoleUser, history.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, history.Messages[1].Role)
	assert.Len(t, history.Messages[1].Data, 1)

	t.Run("invalid session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query",
			bytes.NewBufferString(`{"question":"hi","session_id":"abc"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session/abc/history", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing question", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// BenchmarkJWTGeneration benchmarks token generation
func BenchmarkJWTGeneration(b *testing.B) {
	manager := security.NewJWTManager("benchmark-secret-key-32-chars!!", 15*time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.GenerateAccessToken("admin")
	}
}
