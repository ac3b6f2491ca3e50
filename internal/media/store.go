package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/citizen-signals/backend/internal/models"
)

var imageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "bmp": true}
var videoExts = map[string]bool{"mp4": true, "mov": true, "avi": true, "webm": true, "mkv": true}

// UploadItem is one raw media item as received from the transport layer.
// Data is base64, optionally with a data-URL prefix.
type UploadItem struct {
	Type     string
	Filename string
	MimeType string
	Data     string
	Size     int
}

// Store is the two-phase media store: Stage parks decoded uploads under
// globally unique handles, Commit moves handles into a permanent per-signal
// directory via atomic rename. The staged table is the only mutable shared
// state in the process.
type Store struct {
	StagingDir string
	UploadsDir string
	Logger     zerolog.Logger

	mu     sync.RWMutex
	staged map[string]models.StagedMedia
}

func NewStore(stagingDir, uploadsDir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		StagingDir: stagingDir,
		UploadsDir: uploadsDir,
		Logger:     logger,
		staged:     map[string]models.StagedMedia{},
	}, nil
}

// Stage decodes and persists each item under a fresh media handle. An item
// that fails to decode is skipped; the rest of the batch continues.
func (s *Store) Stage(items []UploadItem) (string, []models.MediaDescriptor) {
	batchID := uuid.NewString()
	descriptors := make([]models.MediaDescriptor, 0, len(items))

	for _, item := range items {
		raw, err := decodePayload(item.Data)
		if err != nil {
			s.Logger.Warn().Err(err).Str("filename", item.Filename).Msg("skipping undecodable media item")
			continue
		}

		mediaID := uuid.NewString()
		ext := safeExtension(item.Type, item.Filename)
		path := filepath.Join(s.StagingDir, mediaID+"."+ext)
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			s.Logger.Warn().Err(err).Str("filename", item.Filename).Msg("failed to persist staged media")
			continue
		}

		staged := models.StagedMedia{
			MediaID:          mediaID,
			BatchID:          batchID,
			Type:             item.Type,
			OriginalFilename: item.Filename,
			MimeType:         item.MimeType,
			ByteSize:         len(raw),
			Path:             path,
			StagedAt:         time.Now().UTC(),
		}
		s.mu.Lock()
		s.staged[mediaID] = staged
		s.mu.Unlock()

		descriptors = append(descriptors, models.MediaDescriptor{
			MediaID:      mediaID,
			Filename:     filepath.Base(path),
			OriginalName: item.Filename,
			Type:         item.Type,
			MimeType:     item.MimeType,
			ByteSize:     len(raw),
		})
	}
	return batchID, descriptors
}

// Commit moves the requested handles into the signal's permanent directory.
// Handles that are unknown or already gone are silently skipped; the signal
// must remain sendable.
func (s *Store) Commit(signalID string, mediaIDs []string) ([]models.MediaDescriptor, error) {
	if len(mediaIDs) == 0 {
		return nil, nil
	}
	signalDir := filepath.Join(s.UploadsDir, signalID)
	if err := os.MkdirAll(signalDir, 0o755); err != nil {
		return nil, err
	}

	var committed []models.MediaDescriptor
	for _, id := range mediaIDs {
		s.mu.Lock()
		staged, ok := s.staged[id]
		if ok {
			delete(s.staged, id)
		}
		s.mu.Unlock()
		if !ok {
			s.Logger.Warn().Str("media_id", id).Msg("staged media not found at commit, skipping")
			continue
		}

		ext := strings.TrimPrefix(filepath.Ext(staged.Path), ".")
		filename := fmt.Sprintf("%s_%d_%s.%s", staged.Type, len(committed)+1, id[:8], ext)
		if err := os.Rename(staged.Path, filepath.Join(signalDir, filename)); err != nil {
			s.Logger.Warn().Err(err).Str("media_id", id).Msg("failed to commit staged media, skipping")
			continue
		}

		committed = append(committed, models.MediaDescriptor{
			MediaID:      id,
			Filename:     filename,
			OriginalName: staged.OriginalFilename,
			Type:         staged.Type,
			MimeType:     staged.MimeType,
			ByteSize:     staged.ByteSize,
		})
	}
	return committed, nil
}

// Reap drops staged items older than the cutoff. Retention is an operator
// decision; nothing in the store runs this on a timer.
func (s *Store) Reap(olderThan time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, staged := range s.staged {
		if staged.StagedAt.After(olderThan) {
			continue
		}
		if err := os.Remove(staged.Path); err != nil && !os.IsNotExist(err) {
			s.Logger.Warn().Err(err).Str("media_id", id).Msg("failed to remove staged media")
			continue
		}
		delete(s.staged, id)
		reaped++
	}
	return reaped
}

func (s *Store) StagedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged)
}

type SignalMediaFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SignalMedia lists committed files for one signal straight off the
// filesystem; the directory listing is the index.
func (s *Store) SignalMedia(signalID string) ([]SignalMediaFile, error) {
	entries, err := os.ReadDir(filepath.Join(s.UploadsDir, signalID))
	if err != nil {
		return nil, err
	}
	files := make([]SignalMediaFile, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, SignalMediaFile{Name: e.Name(), Size: info.Size()})
	}
	return files, nil
}

type SignalMediaSummary struct {
	SignalID  string   `json:"signal_id"`
	FileCount int      `json:"file_count"`
	Files     []string `json:"files"`
}

func (s *Store) ListSignals() ([]SignalMediaSummary, error) {
	entries, err := os.ReadDir(s.UploadsDir)
	if err != nil {
		return nil, err
	}
	summaries := make([]SignalMediaSummary, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := s.SignalMedia(e.Name())
		if err != nil {
			continue
		}
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name)
		}
		summaries = append(summaries, SignalMediaSummary{
			SignalID:  e.Name(),
			FileCount: len(names),
			Files:     names,
		})
	}
	return summaries, nil
}

func decodePayload(data string) ([]byte, error) {
	// Strip a data-URL prefix like "data:image/jpeg;base64,".
	if i := strings.Index(data, ","); i >= 0 {
		data = data[i+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}

// safeExtension derives the stored extension: the supplied filename's
// extension when it is plausible for the declared type, else a default.
func safeExtension(mediaType, filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch mediaType {
	case "video":
		if videoExts[ext] {
			return ext
		}
		return "mp4"
	default:
		if imageExts[ext] {
			return ext
		}
		return "jpg"
	}
}
