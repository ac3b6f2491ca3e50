package models

import "time"

// Organization is one row of the government directory. The four location
// fields form a containment hierarchy (oblast ⊇ obshtina ⊇ grad ⊇ rayon);
// each is nil when the organization is not scoped to that level. An
// organization with all four nil is national and responsible everywhere.
type Organization struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	Oblast               *string `json:"oblast"`
	Obshtina             *string `json:"obshtina"`
	Grad                 *string `json:"grad"`
	Rayon                *string `json:"rayon"`
	SpecialTerritoryType *string `json:"special_territory_type,omitempty"`
	SpecialTerritoryName *string `json:"special_territory_name,omitempty"`
}

// LocationQuery is what is currently known about a complaint's location.
// A nil field means "not yet known", not "not applicable".
type LocationQuery struct {
	Oblast   *string `json:"oblast,omitempty"`
	Obshtina *string `json:"obshtina,omitempty"`
	Grad     *string `json:"grad,omitempty"`
	Rayon    *string `json:"rayon,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StagedMedia is an uploaded item parked in the staging store, waiting to be
// committed to a finalized signal or reaped.
type StagedMedia struct {
	MediaID          string    `json:"media_id"`
	BatchID          string    `json:"batch_id"`
	Type             string    `json:"type"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	ByteSize         int       `json:"byte_size"`
	Path             string    `json:"-"`
	StagedAt         time.Time `json:"staged_at"`
}

type MediaDescriptor struct {
	MediaID      string `json:"media_id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name,omitempty"`
	Type         string `json:"type,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	ByteSize     int    `json:"size,omitempty"`
}

// Signal is a finalized citizen complaint. Created exactly once per
// conversation and never mutated after validation runs.
type Signal struct {
	SignalID          string            `json:"signal_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	AgencyID          *int              `json:"agency_id,omitempty"`
	Agency            string            `json:"agency"`
	Location          *LocationQuery    `json:"location,omitempty"`
	AttachedMedia     []MediaDescriptor `json:"attached_media,omitempty"`
	ValidationWarning string            `json:"validation_warning,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
