// File: internal/handlers/chat_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"github.com/ketolab/go-ketoplanner/internal/repository/message"
	"github.com/ketolab/go-ketoplanner/internal/repository/thread"
	"github.com/ketolab/go-ketoplanner/internal/services/ai"
	"github.com/ketolab/go-ketoplanner/internal/services/chat"
	"github.com/ketolab/go-ketoplanner/internal/services/conversation"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

type fakeProvider struct {
	available bool
	reply     string
	err       error
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakeProvider) Respond(ctx context.Context, instructions, prompt string) (string, error) {
	return f.reply, f.err
}

func newTestRouter(t *testing.T, provider *fakeProvider) (*mux.Router, *conversation.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Thread{}, &domain.Message{}))

	store, err := conversation.NewService(thread.NewThreadRepository(db), message.NewMessageRepository(db), noopLogger{})
	require.NoError(t, err)

	cfg := ai.DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryDelay = time.Millisecond
	orchestrator, err := ai.NewOrchestrator(cfg, provider, noopLogger{})
	require.NoError(t, err)

	controller, err := chat.NewController(store, orchestrator, noopLogger{})
	require.NoError(t, err)

	h := NewChatHandler(store, controller)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/threads", h.GetThreads).Methods("GET")
	api.HandleFunc("/threads", h.CreateThread).Methods("POST")
	api.HandleFunc("/threads/{id:[0-9]+}", h.RenameThread).Methods("PATCH")
	api.HandleFunc("/threads/{id:[0-9]+}", h.DeleteThread).Methods("DELETE")
	api.HandleFunc("/threads/{id:[0-9]+}/messages", h.GetThreadMessages).Methods("GET")
	api.HandleFunc("/threads/{id:[0-9]+}/messages", h.SendMessage).Methods("POST")

	return r, store
}

func doRequest(r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListThreads(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProvider{available: true})

	rec := doRequest(r, "POST", "/api/threads", map[string]string{"title": "snacks"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Thread
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "snacks", created.Title)
	assert.NotZero(t, created.ID)

	// Empty body yields a default-titled thread.
	rec = doRequest(r, "POST", "/api/threads", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(r, "GET", "/api/threads", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var threads []domain.Thread
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&threads))
	require.Len(t, threads, 2)
	assert.Equal(t, domain.DefaultThreadTitle, threads[0].Title)
	assert.Equal(t, "snacks", threads[1].Title)
}

func TestSendMessageRoundTrip(t *testing.T) {
	r, store := newTestRouter(t, &fakeProvider{available: true, reply: "Eat some olives."})

	th, err := store.CreateThread(context.Background(), "")
	require.NoError(t, err)

	rec := doRequest(r, "POST", fmt.Sprintf("/api/threads/%d/messages", th.ID), map[string]string{"message": "snack ideas?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply domain.Message `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.MessageRoleAssistant, resp.Reply.Role)
	assert.Equal(t, "Eat some olives.", resp.Reply.Content)

	rec = doRequest(r, "GET", fmt.Sprintf("/api/threads/%d/messages", th.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []domain.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&messages))
	require.Len(t, messages, 2)
	assert.Equal(t, domain.MessageRoleUser, messages[0].Role)
	assert.Equal(t, "snack ideas?", messages[0].Content)
}

func TestSendMessageEmptyInputIsNoContent(t *testing.T) {
	r, store := newTestRouter(t, &fakeProvider{available: true})

	th, err := store.CreateThread(context.Background(), "")
	require.NoError(t, err)

	rec := doRequest(r, "POST", fmt.Sprintf("/api/threads/%d/messages", th.ID), map[string]string{"message": "   "})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSendMessageModelUnavailable(t *testing.T) {
	r, store := newTestRouter(t, &fakeProvider{available: false})

	th, err := store.CreateThread(context.Background(), "")
	require.NoError(t, err)

	rec := doRequest(r, "POST", fmt.Sprintf("/api/threads/%d/messages", th.ID), map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestThreadNotFoundResponses(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProvider{available: true})

	assert.Equal(t, http.StatusNotFound, doRequest(r, "GET", "/api/threads/999/messages", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, "DELETE", "/api/threads/999", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(r, "PATCH", "/api/threads/999", map[string]string{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound,
		doRequest(r, "POST", "/api/threads/999/messages", map[string]string{"message": "hi"}).Code)
}

func TestRenameAndDeleteThread(t *testing.T) {
	r, store := newTestRouter(t, &fakeProvider{available: true})
	ctx := context.Background()

	th, err := store.CreateThread(ctx, "before")
	require.NoError(t, err)

	rec := doRequest(r, "PATCH", fmt.Sprintf("/api/threads/%d", th.ID), map[string]string{"title": "after"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := store.GetThread(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)

	rec = doRequest(r, "DELETE", fmt.Sprintf("/api/threads/%d", th.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(r, "GET", fmt.Sprintf("/api/threads/%d/messages", th.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
