// File: internal/handlers/history_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/ketolab/go-ketoplanner/internal/domain"
	"github.com/ketolab/go-ketoplanner/internal/services/conversation"
)

// HistoryHandler renders a thread transcript as a standalone HTML page:
// a summary section followed by every message in display order.
// Assistant replies are markdown, so they go through goldmark; user
// input is escaped verbatim.
type HistoryHandler struct {
	Conversations *conversation.Service
	markdown      goldmark.Markdown
}

func NewHistoryHandler(conversations *conversation.Service) *HistoryHandler {
	return &HistoryHandler{
		Conversations: conversations,
		markdown:      goldmark.New(),
	}
}

// ShowThreadHistory handles GET requests for the transcript page.
func (h *HistoryHandler) ShowThreadHistory(w http.ResponseWriter, r *http.Request) {
	threadID, ok := threadIDFromRequest(w, r)
	if !ok {
		return
	}

	thread, err := h.Conversations.GetThread(r.Context(), threadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	messages, err := h.Conversations.ListMessages(r.Context(), threadID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.renderHistory(thread, messages)))
}

func (h *HistoryHandler) renderHistory(thread *domain.Thread, messages []domain.Message) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(thread.Title))
	b.WriteString("</title></head>\n<body>\n")

	b.WriteString("<h1>History</h1>\n<section>\n")
	fmt.Fprintf(&b, "<p>Title: %s</p>\n", html.EscapeString(thread.Title))
	fmt.Fprintf(&b, "<p>Messages: %d</p>\n", len(messages))
	fmt.Fprintf(&b, "<p>Created: %s</p>\n", thread.CreatedAt.Format("Jan 2, 2006 3:04 PM"))
	b.WriteString("</section>\n<section>\n")

	for _, m := range messages {
		author := "Assistant"
		if m.Role == domain.MessageRoleUser {
			author = "You"
		}
		fmt.Fprintf(&b, "<article>\n<h3>%s</h3>\n", author)

		if m.Role == domain.MessageRoleAssistant {
			var rendered bytes.Buffer
			if err := h.markdown.Convert([]byte(m.Content), &rendered); err != nil {
				fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(m.Content))
			} else {
				b.Write(rendered.Bytes())
			}
		} else {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(m.Content))
		}
		b.WriteString("</article>\n")
	}

	b.WriteString("</section>\n</body>\n</html>\n")
	return b.String()
}
