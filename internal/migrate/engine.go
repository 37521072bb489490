// Package migrate implements the one-shot copy of on-device data into the
// cloud store for a freshly authenticated user. It always reads the local
// backend and writes the remote one, bypassing facade routing.
package migrate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retirewiselabs/retirewised/internal/store"
)

// OriginalIDField is attached to every migrated document so the mapping from
// the old local id is recoverable later.
const OriginalIDField = "originalLocalId"

// defaultRecordTimeout bounds a single remote write so one stalled record
// cannot hang the whole run; on expiry the record is logged as an error and
// migration moves on.
const defaultRecordTimeout = 10 * time.Second

// RecordError describes one record that failed to migrate.
type RecordError struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Results reports the outcome of a migration run. Counts equal the number of
// successful remote writes, never more.
type Results struct {
	Projects       int           `json:"projects"`
	TimeLogs       int           `json:"timeLogs"`
	JournalEntries int           `json:"journalEntries"`
	Insights       int           `json:"insights"`
	Conversations  int           `json:"conversations"`
	Errors         []RecordError `json:"errors"`
}

// Total returns the number of successfully migrated records.
func (r *Results) Total() int {
	return r.Projects + r.TimeLogs + r.JournalEntries + r.Insights + r.Conversations
}

// Status is the coarse has-the-user-migrated signal.
type Status struct {
	HasMigrated  bool `json:"hasMigrated"`
	ProjectCount int  `json:"projectCount"`
}

// Engine copies local data into the remote store.
type Engine struct {
	local         store.Store
	remote        store.Store
	recordTimeout time.Duration
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecordTimeout overrides the per-record write timeout.
func WithRecordTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.recordTimeout = d
		}
	}
}

// New creates a migration engine over the two backends.
func New(local, remote store.Store, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		local:         local,
		remote:        remote,
		recordTimeout: defaultRecordTimeout,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MigrateAll copies every local record of every entity type into the remote
// store scoped to userID.
//
// Projects go first so that an old-to-new id map exists before any record
// that references them: time logs and journal entries have their projectId
// rewritten through that map on the way out. Every copy keeps its old local
// id under originalLocalId and drops the id itself - the server assigns a
// fresh one.
//
// A failed write is recorded against the record's original id and does not
// stop the run. Only a failed bulk read of a local collection aborts; no
// partial Results are returned in that case.
//
// Re-running is NOT idempotent: records are always created anew, so repeated
// runs duplicate data.
func (e *Engine) MigrateAll(ctx context.Context, userID string) (*Results, error) {
	owner := &store.OwnerInfo{UserID: userID}
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	remoteCtx := store.ContextWithOwner(ctx, owner)

	results := &Results{Errors: []RecordError{}}
	e.logger.Info("starting migration", zap.String("user_id", userID))

	// Pass 1: projects, building the id map for foreign-key rewriting.
	idMap := make(map[string]string)
	projectDocs, err := e.local.List(ctx, store.CollectionProjects)
	if err != nil {
		return nil, fmt.Errorf("reading local %s: %w", store.CollectionProjects, err)
	}
	for _, doc := range projectDocs {
		newID, err := e.copyRecord(remoteCtx, store.CollectionProjects, doc, nil)
		if err != nil {
			results.Errors = append(results.Errors, RecordError{
				Type: "project", ID: doc.ID, Error: err.Error(),
			})
			continue
		}
		idMap[doc.ID] = newID
		results.Projects++
	}
	recordsMigrated.WithLabelValues(store.CollectionProjects).Add(float64(results.Projects))

	// Pass 2: everything else, with projectId rewritten where it resolves.
	remapProject := func(fields store.Fields) {
		if old, ok := fields["projectId"].(string); ok {
			if mapped, ok := idMap[old]; ok {
				fields["projectId"] = mapped
			}
		}
	}

	steps := []struct {
		collection string
		kind       string
		count      *int
		transform  func(store.Fields)
	}{
		{store.CollectionTimeLogs, "timeLog", &results.TimeLogs, remapProject},
		{store.CollectionJournalEntries, "journal", &results.JournalEntries, remapProject},
		{store.CollectionInsights, "insight", &results.Insights, nil},
		{store.CollectionConversations, "conversation", &results.Conversations, nil},
	}

	for _, step := range steps {
		docs, err := e.local.List(ctx, step.collection)
		if err != nil {
			return nil, fmt.Errorf("reading local %s: %w", step.collection, err)
		}
		for _, doc := range docs {
			if _, err := e.copyRecord(remoteCtx, step.collection, doc, step.transform); err != nil {
				results.Errors = append(results.Errors, RecordError{
					Type: step.kind, ID: doc.ID, Error: err.Error(),
				})
				continue
			}
			*step.count++
		}
		recordsMigrated.WithLabelValues(step.collection).Add(float64(*step.count))
	}

	e.logger.Info("migration complete",
		zap.Int("migrated", results.Total()),
		zap.Int("errors", len(results.Errors)))
	return results, nil
}

// copyRecord writes one local document to the remote store under a per-record
// timeout and returns the server-assigned id.
func (e *Engine) copyRecord(ctx context.Context, collection string, doc store.Document, transform func(store.Fields)) (string, error) {
	fields := doc.Fields.Clone()
	if fields == nil {
		fields = store.Fields{}
	}
	fields[OriginalIDField] = doc.ID
	if transform != nil {
		transform(fields)
	}

	wctx, cancel := context.WithTimeout(ctx, e.recordTimeout)
	defer cancel()
	return e.remote.Create(wctx, collection, fields)
}

// CheckMigrationStatus approximates "has this user migrated" by whether any
// remote projects exist. A user who later deletes every remote project will
// look unmigrated again; the signal is deliberately coarse.
func (e *Engine) CheckMigrationStatus(ctx context.Context, userID string) (Status, error) {
	owner := &store.OwnerInfo{UserID: userID}
	if err := owner.Validate(); err != nil {
		return Status{}, err
	}
	docs, err := e.remote.List(store.ContextWithOwner(ctx, owner), store.CollectionProjects)
	if err != nil {
		return Status{}, fmt.Errorf("checking migration status: %w", err)
	}
	return Status{HasMigrated: len(docs) > 0, ProjectCount: len(docs)}, nil
}
