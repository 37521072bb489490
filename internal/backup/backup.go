// Package backup implements JSON export and import of the local dataset.
// The file format mirrors the original backup layout: one JSON document with
// a section per collection plus exportDate and version markers.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/retirewiselabs/retirewised/internal/store"
)

// Version is the backup format version written to every export.
const Version = "1.0"

// ErrInvalidSnapshot is returned when a backup file fails validation. Nothing
// is touched in that case.
var ErrInvalidSnapshot = errors.New("invalid backup file")

// Snapshot is the on-disk backup document. Each record keeps its id inline
// under the "id" key so an import can restore identical identifiers.
// Insights are deliberately absent: they are regenerated, not user data.
type Snapshot struct {
	Projects       []store.Fields `json:"projects"`
	TimeLogs       []store.Fields `json:"timeLogs"`
	JournalEntries []store.Fields `json:"journalEntries"`
	Conversations  []store.Fields `json:"conversations"`
	Settings       []store.Fields `json:"settings"`
	ExportDate     string         `json:"exportDate"`
	Version        string         `json:"version"`
}

// Validate checks the markers an import requires before any destructive step.
func (s *Snapshot) Validate() error {
	if s.Projects == nil {
		return fmt.Errorf("%w: missing projects section", ErrInvalidSnapshot)
	}
	if s.ExportDate == "" {
		return fmt.Errorf("%w: missing exportDate", ErrInvalidSnapshot)
	}
	return nil
}

// sections maps snapshot fields to their collections, in import order.
func (s *Snapshot) sections() []struct {
	collection string
	records    []store.Fields
} {
	return []struct {
		collection string
		records    []store.Fields
	}{
		{store.CollectionProjects, s.Projects},
		{store.CollectionTimeLogs, s.TimeLogs},
		{store.CollectionJournalEntries, s.JournalEntries},
		{store.CollectionConversations, s.Conversations},
		{store.CollectionSettings, s.Settings},
	}
}

// Export reads the whole local dataset into a Snapshot.
func Export(ctx context.Context, local store.Store) (*Snapshot, error) {
	snap := &Snapshot{
		ExportDate: time.Now().Format(time.RFC3339),
		Version:    Version,
	}

	read := func(collection string) ([]store.Fields, error) {
		docs, err := local.List(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", collection, err)
		}
		records := make([]store.Fields, 0, len(docs))
		for _, doc := range docs {
			fields := doc.Fields.Clone()
			if fields == nil {
				fields = store.Fields{}
			}
			fields["id"] = doc.ID
			records = append(records, fields)
		}
		return records, nil
	}

	var err error
	if snap.Projects, err = read(store.CollectionProjects); err != nil {
		return nil, err
	}
	if snap.TimeLogs, err = read(store.CollectionTimeLogs); err != nil {
		return nil, err
	}
	if snap.JournalEntries, err = read(store.CollectionJournalEntries); err != nil {
		return nil, err
	}
	if snap.Conversations, err = read(store.CollectionConversations); err != nil {
		return nil, err
	}
	if snap.Settings, err = read(store.CollectionSettings); err != nil {
		return nil, err
	}
	return snap, nil
}

// Import replaces the local dataset with the snapshot's contents. The
// snapshot is validated first; a malformed file leaves existing data intact.
// Restored records keep their original ids.
func Import(ctx context.Context, local store.Store, snap *Snapshot, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	for _, section := range snap.sections() {
		if err := local.Clear(ctx, section.collection); err != nil {
			return fmt.Errorf("clearing %s: %w", section.collection, err)
		}
	}

	restored := 0
	for _, section := range snap.sections() {
		for _, record := range section.records {
			fields := record.Clone()
			id, _ := fields["id"].(string)
			delete(fields, "id")
			if id == "" {
				id = store.NewLocalID(section.collection)
			}
			if err := local.Put(ctx, section.collection, id, fields); err != nil {
				return fmt.Errorf("restoring %s/%s: %w", section.collection, id, err)
			}
			restored++
		}
	}

	logger.Info("backup imported",
		zap.String("export_date", snap.ExportDate),
		zap.Int("records", restored))
	return nil
}

// WriteFile writes the snapshot as indented JSON.
func WriteFile(path string, snap *Snapshot) error {
	data, err := sonic.ConfigDefault.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing backup %s: %w", path, err)
	}
	return nil
}

// ReadFile loads and validates a snapshot from disk.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", path, err)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DefaultFileName returns the dated default export file name.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("retirewise-backup-%s.json", now.Format("2006-01-02"))
}
