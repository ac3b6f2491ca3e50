package service

import (
	"encoding/json"
	"strings"

	"github.com/citizen-signals/backend/internal/models"
)

// Candidate is a structured payload detected inside a collaborator reply.
// It is finalized only when title, description and agency are all present.
type Candidate struct {
	Title       string
	Description string
	Agency      string
	AgencyID    *int
	Location    *models.LocationQuery
}

// ExtractCandidate looks for an embedded object between the first '{' and
// the last '}' of the reply. Any parse failure or missing required key means
// the turn is ordinary dialogue, never an error.
func ExtractCandidate(reply string) (Candidate, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return Candidate{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return Candidate{}, false
	}
	for _, key := range []string{"title", "description", "agency"} {
		if _, ok := raw[key]; !ok {
			return Candidate{}, false
		}
	}

	cand := Candidate{
		Title:       getString(raw, "title"),
		Description: getString(raw, "description"),
		Agency:      getString(raw, "agency"),
	}
	if _, ok := raw["agency_id"]; ok {
		id := getInt(raw, "agency_id")
		cand.AgencyID = &id
	}
	if locRaw, ok := raw["location"].(map[string]any); ok {
		cand.Location = &models.LocationQuery{
			Oblast:   optString(locRaw, "oblast"),
			Obshtina: optString(locRaw, "obshtina"),
			Grad:     optString(locRaw, "grad"),
			Rayon:    optString(locRaw, "rayon"),
		}
	}
	return cand, true
}

func getString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func optString(m map[string]any, key string) *string {
	s := getString(m, key)
	if s == "" {
		return nil
	}
	return &s
}

func getInt(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	case json.Number:
		i, _ := t.Int64()
		return int(i)
	default:
		return 0
	}
}
