package ai

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

// MockAssistant drives the pipeline without an external collaborator. It
// asks deterministic follow-up questions until the user asks to send, then
// emits a finalized payload built from the first enumerated organization in
// the instruction block.
type MockAssistant struct{}

var mockQuestions = []string{
	"Къде се намира проблемът? Моля, посочете град и район.",
	"Можете ли да опишете проблема по-подробно?",
	"Кога забелязахте проблема? Да изпратя ли сигнала?",
}

func (m MockAssistant) Ask(ctx context.Context, system string, history []models.ChatMessage) (string, error) {
	lastUser := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			lastUser = history[i].Content
			break
		}
	}

	if strings.Contains(strings.ToLower(lastUser), "изпрати") {
		id, name := firstListedOrg(system)
		payload := map[string]any{
			"title":       "Сигнал от гражданин",
			"description": lastUser,
			"agency":      name,
		}
		if id > 0 {
			payload["agency_id"] = id
		}
		b, _ := json.Marshal(payload)
		return "Изпращам сигнала:\n" + string(b), nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(lastUser))
	return mockQuestions[int(h.Sum64()%uint64(len(mockQuestions)))], nil
}

// firstListedOrg picks the first "id. name" line out of the instruction
// block, mirroring how the real collaborator is told to choose.
func firstListedOrg(system string) (int, string) {
	for _, line := range strings.Split(system, "\n") {
		line = strings.TrimSpace(line)
		dot := strings.Index(line, ". ")
		if dot <= 0 {
			continue
		}
		id, err := strconv.Atoi(line[:dot])
		if err != nil || id <= 0 {
			continue
		}
		return id, strings.TrimSpace(line[dot+2:])
	}
	return 0, ""
}
