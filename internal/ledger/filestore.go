package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/fileutil"
	"github.com/sheldonchiu/chatgpt-youtube-autoreply/internal/logging"
)

// FileStore keeps one JSON file per video under dir.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

type fileDocument struct {
	VideoID string  `json:"video_id"`
	Entries []Entry `json:"entries"`
}

// NewFileStore returns a store writing replied_to_<video>.json files in dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logging.NewComponentLogger(logger, "ledger")}
}

// Path returns the ledger file for videoID.
func (s *FileStore) Path(videoID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("replied_to_%s.json", videoID))
}

// Load reads the ledger for videoID. A missing or empty file yields an empty ledger.
// A bare JSON array of ids is accepted for hand-seeded files.
func (s *FileStore) Load(_ context.Context, videoID string) (*Ledger, error) {
	path := s.Path(videoID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no reply ledger yet; starting empty",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "ledger_bootstrap"))
			return New(), nil
		}
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return New(), nil
	}

	if data[0] == '[' {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("parse ledger file: %w", err)
		}
		entries := make([]Entry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, Entry{CommentID: id})
		}
		return FromEntries(entries), nil
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ledger file: %w", err)
	}
	l := FromEntries(doc.Entries)
	s.logger.Debug("loaded reply ledger",
		logging.Int("entry_count", l.Len()),
		logging.String("path", path))
	return l, nil
}

// Save writes the ledger for videoID atomically.
func (s *FileStore) Save(_ context.Context, videoID string, l *Ledger) error {
	if l == nil {
		return errors.New("nil ledger")
	}
	doc := fileDocument{VideoID: videoID, Entries: l.Entries()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.Path(videoID), data, 0o644); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
