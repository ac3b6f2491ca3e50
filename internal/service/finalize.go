package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/citizen-signals/backend/internal/directory"
	"github.com/citizen-signals/backend/internal/media"
	"github.com/citizen-signals/backend/internal/models"
)

const (
	WarnMissingAgencyID = "Missing agency_id"
	WarnInvalidAgencyID = "Invalid agency_id for location"
)

var ErrAlreadySent = errors.New("signal already sent for this conversation")

// ValidateAgency re-runs the location filter against the candidate's own
// stated location (not the conversation's location context, which may
// differ) and checks the chosen agency is a legal member of that set.
// Returns an empty string when the assignment is valid.
func ValidateAgency(dir *directory.Directory, cand Candidate) string {
	if cand.AgencyID == nil {
		return WarnMissingAgencyID
	}
	loc := models.LocationQuery{}
	if cand.Location != nil {
		loc = *cand.Location
	}
	for _, org := range directory.Filter(dir, loc) {
		if org.ID == *cand.AgencyID {
			return ""
		}
	}
	return WarnInvalidAgencyID
}

// Finalizer turns a finalized candidate into the conversation's one and only
// Signal: mints the id, commits pending media, validates the agency choice
// and marks the session Sent.
type Finalizer struct {
	Directory *directory.Directory
	Media     *media.Store
	Sessions  *SessionStore
	Logger    zerolog.Logger
}

func (f *Finalizer) Finalize(sessionID string, cand Candidate) (models.Signal, error) {
	pending, ok := f.Sessions.BeginFinalize(sessionID)
	if !ok {
		return models.Signal{}, ErrAlreadySent
	}

	signalID := NewSignalID()

	var attached []models.MediaDescriptor
	if len(pending) > 0 {
		var err error
		attached, err = f.Media.Commit(signalID, pending)
		if err != nil {
			f.Logger.Error().Err(err).Str("signal_id", signalID).Msg("media commit failed")
			attached = nil
		}
	}

	signal := models.Signal{
		SignalID:      signalID,
		Title:         cand.Title,
		Description:   cand.Description,
		AgencyID:      cand.AgencyID,
		Agency:        cand.Agency,
		Location:      cand.Location,
		AttachedMedia: attached,
		CreatedAt:     time.Now().UTC(),
	}
	// Never blocks sending; an invalid assignment travels as a warning.
	signal.ValidationWarning = ValidateAgency(f.Directory, cand)

	f.Sessions.MarkSent(sessionID)
	f.Logger.Info().
		Str("signal_id", signalID).
		Str("conversation_id", sessionID).
		Int("attached_media", len(attached)).
		Str("validation_warning", signal.ValidationWarning).
		Msg("signal finalized")
	return signal, nil
}

// NewSignalID mints a unique, time-ordered signal id.
func NewSignalID() string {
	return fmt.Sprintf("signal_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}
