package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/citizen-signals/backend/internal/directory"
	"github.com/citizen-signals/backend/internal/media"
	"github.com/citizen-signals/backend/internal/models"
	"github.com/citizen-signals/backend/internal/service"
)

type scriptedAssistant struct {
	reply string
	err   error
}

func (s scriptedAssistant) Ask(ctx context.Context, system string, history []models.ChatMessage) (string, error) {
	return s.reply, s.err
}

func strPtr(s string) *string { return &s }

func newTestRouter(t *testing.T, assistant scriptedAssistant) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir, err := directory.New([]models.Organization{
		{ID: 1, Name: "Национална агенция"},
		{ID: 2, Name: "Областна администрация Пловдив", Oblast: strPtr("Пловдив")},
		{ID: 3, Name: "Община Пловдив", Oblast: strPtr("Пловдив"), Obshtina: strPtr("Пловдив"), Grad: strPtr("Пловдив")},
	})
	if err != nil {
		t.Fatalf("build directory: %v", err)
	}
	store, err := media.NewStore(t.TempDir(), t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}

	sessions := service.NewSessionStore()
	h := &Handler{
		Directory:  dir,
		Index:      directory.NewIndex(dir),
		Assistant:  assistant,
		Media:      store,
		Sessions:   sessions,
		Finalizer:  &service.Finalizer{Directory: dir, Media: store, Sessions: sessions, Logger: zerolog.Nop()},
		BasePrompt: service.DefaultBasePrompt,
		StagedTTL:  time.Hour,
		Validator:  validator.New(),
		Logger:     zerolog.Nop(),
	}

	r := gin.New()
	r.POST("/api/chat", h.Chat)
	r.POST("/api/media/stage", h.StageMedia)
	r.POST("/api/filter-organizations", h.FilterOrganizations)
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, path string, body any) (int, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, w.Body.String())
	}
	return w.Code, resp
}

func TestChatContinuesDialogue(t *testing.T) {
	r, _ := newTestRouter(t, scriptedAssistant{reply: "Кога забелязахте проблема?"})

	code, resp := doJSON(t, r, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Има дупка на пътя в Пловдив"}},
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["signal_ready"] != false || resp["signal_sent"] != false {
		t.Fatalf("expected ongoing conversation, got %+v", resp)
	}
	if resp["message"] != "Кога забелязахте проблема?" {
		t.Fatalf("expected assistant reply to pass through, got %v", resp["message"])
	}
	// Пловдив was extracted, so the org list is filtered: national + oblast + grad levels.
	if resp["filtered_org_count"] != float64(3) {
		t.Fatalf("expected filtered_org_count 3, got %v", resp["filtered_org_count"])
	}
	if resp["conversation_id"] == "" || resp["conversation_id"] == nil {
		t.Fatalf("expected a minted conversation id")
	}
}

func TestChatFinalizesSignalAndGuardsDuplicates(t *testing.T) {
	reply := `{"title": "Дупка", "description": "Дупка на пътя", "agency": "Община Пловдив", "agency_id": 3, "location": {"oblast": "Пловдив", "obshtina": "Пловдив", "grad": "Пловдив"}}`
	r, _ := newTestRouter(t, scriptedAssistant{reply: reply})

	code, resp := doJSON(t, r, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Да, изпрати сигнала"}},
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["signal_sent"] != true || resp["conversation_ended"] != true {
		t.Fatalf("expected sent signal, got %+v", resp)
	}
	signalData, ok := resp["signal_data"].(map[string]any)
	if !ok || signalData["signal_id"] == "" {
		t.Fatalf("expected signal_data with id, got %+v", resp["signal_data"])
	}
	if w, ok := signalData["validation_warning"]; ok && w != "" {
		t.Fatalf("expected valid agency assignment, got warning %v", w)
	}

	convID := resp["conversation_id"].(string)
	_, resp = doJSON(t, r, "/api/chat", gin.H{
		"conversation_id": convID,
		"messages":        []gin.H{{"role": "user", "content": "Изпрати още един"}},
	})
	if resp["signal_sent"] != false || resp["conversation_ended"] != true {
		t.Fatalf("expected duplicate guard, got %+v", resp)
	}
	if _, ok := resp["signal_data"]; ok {
		t.Fatalf("duplicate finalize must not produce a second signal")
	}
}

func TestChatFinalizeMissingAgencyIDStillSends(t *testing.T) {
	reply := `{"title": "Дупка", "description": "Дупка на пътя", "agency": "Община Пловдив"}`
	r, _ := newTestRouter(t, scriptedAssistant{reply: reply})

	_, resp := doJSON(t, r, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Изпрати"}},
	})
	if resp["signal_sent"] != true {
		t.Fatalf("validation must never block sending, got %+v", resp)
	}
	signalData := resp["signal_data"].(map[string]any)
	if signalData["validation_warning"] != "Missing agency_id" {
		t.Fatalf("expected Missing agency_id warning, got %v", signalData["validation_warning"])
	}
}

func TestChatAssistantFailureIsRecoverable(t *testing.T) {
	r, h := newTestRouter(t, scriptedAssistant{err: context.DeadlineExceeded})

	code, resp := doJSON(t, r, "/api/chat", gin.H{
		"messages": []gin.H{{"role": "user", "content": "Здравейте"}},
	})
	if code != http.StatusOK {
		t.Fatalf("collaborator failure must not surface as a transport error, got %d", code)
	}
	if resp["message"] != service.MessageApology {
		t.Fatalf("expected apology, got %v", resp["message"])
	}
	convID := resp["conversation_id"].(string)
	if h.Sessions.State(convID) != service.StateCollecting {
		t.Fatalf("session state must be unchanged after a failed turn")
	}
}

func TestChatAttachesStagedMediaOnFinalize(t *testing.T) {
	reply := `{"title": "Дупка", "description": "Дупка", "agency": "Национална агенция", "agency_id": 1}`
	r, _ := newTestRouter(t, scriptedAssistant{reply: reply})

	_, stageResp := doJSON(t, r, "/api/media/stage", gin.H{
		"conversation_id": "conv_media_test",
		"media": []gin.H{{
			"type":      "image",
			"filename":  "dupka.jpg",
			"mime_type": "image/jpeg",
			"data":      base64.StdEncoding.EncodeToString([]byte("image bytes")),
			"size":      11,
		}},
	})
	if stageResp["staged_count"] != float64(1) {
		t.Fatalf("expected 1 staged item, got %+v", stageResp)
	}

	_, resp := doJSON(t, r, "/api/chat", gin.H{
		"conversation_id": "conv_media_test",
		"messages":        []gin.H{{"role": "user", "content": "Изпрати"}},
	})
	if resp["signal_sent"] != true {
		t.Fatalf("expected sent signal, got %+v", resp)
	}
	if resp["attached_media_count"] != float64(1) {
		t.Fatalf("expected 1 attached media, got %v", resp["attached_media_count"])
	}
}

func TestStageMediaRejectsUnknownType(t *testing.T) {
	r, _ := newTestRouter(t, scriptedAssistant{})

	code, _ := doJSON(t, r, "/api/media/stage", gin.H{
		"media": []gin.H{{"type": "document", "data": "aGVsbG8="}},
	})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown media type, got %d", code)
	}
}

func TestFilterOrganizationsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, scriptedAssistant{})

	code, resp := doJSON(t, r, "/api/filter-organizations", gin.H{"oblast": "Пловдив"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["count"] != float64(2) {
		t.Fatalf("expected count 2 (national + oblast), got %v", resp["count"])
	}
}
