// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ketolab/go-ketoplanner/internal/services/ai"
	"github.com/ketolab/go-ketoplanner/internal/services/chat"
	"github.com/ketolab/go-ketoplanner/internal/services/conversation"
)

type ChatHandler struct {
	Conversations *conversation.Service
	Controller    *chat.Controller
}

func NewChatHandler(conversations *conversation.Service, controller *chat.Controller) *ChatHandler {
	return &ChatHandler{
		Conversations: conversations,
		Controller:    controller,
	}
}

// GetThreads handles the request to retrieve all threads, newest first.
func (h *ChatHandler) GetThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.Conversations.ListThreads(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

// CreateThread handles the request to create a new thread.
func (h *ChatHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if r.Body != nil {
		// An empty body means a default-titled thread.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	thread, err := h.Conversations.CreateThread(r.Context(), req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, thread)
}

// GetThreadMessages handles the request to retrieve all messages of a thread.
func (h *ChatHandler) GetThreadMessages(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDFromRequest(w, r)
	if !ok {
		return
	}

	messages, err := h.Conversations.ListMessages(r.Context(), threadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// RenameThread handles the request to rename a thread.
func (h *ChatHandler) RenameThread(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.Conversations.RenameThread(r.Context(), threadID, req.Title); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteThread handles the request to delete a thread and its messages.
func (h *ChatHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.Conversations.DeleteThread(r.Context(), threadID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles one user submission on a thread.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reply, err := h.Controller.Send(r.Context(), threadID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reply == nil {
		// Empty input is a silent no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reply": reply})
}

// threadIDFromRequest parses the {id} route variable.
func threadIDFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	threadID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil || threadID == 0 {
		writeError(w, "Invalid thread ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(threadID), true
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case conversation.IsNotFound(err):
		writeError(w, "Thread not found", http.StatusNotFound)
	case ai.IsUnavailable(err):
		writeError(w, "On-device model unavailable", http.StatusServiceUnavailable)
	case ai.IsCompletionFailed(err):
		writeError(w, "Completion failed: "+err.Error(), http.StatusBadGateway)
	default:
		writeError(w, "Internal error: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
