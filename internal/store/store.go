// Package store defines the document store contract shared by the local
// (embedded SQLite) and remote (cloud HTTP) backends, so the rest of the
// application never needs to know which one it is talking to.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrUnknownCollection is returned for collection names outside the
	// fixed schema.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrMissingOwner is returned by owner-scoped stores when no owner is
	// present in the context. Fail closed: no silent fallback to shared data.
	ErrMissingOwner = errors.New("owner missing from context")

	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid store configuration")
)

// Collection names. Both backends hold the same fixed set.
const (
	CollectionProjects       = "projects"
	CollectionTimeLogs       = "timeLogs"
	CollectionJournalEntries = "journalEntries"
	CollectionInsights       = "insights"
	CollectionConversations  = "conversations"
	CollectionSettings       = "settings"
)

// Collections returns every known collection name.
func Collections() []string {
	return []string{
		CollectionProjects,
		CollectionTimeLogs,
		CollectionJournalEntries,
		CollectionInsights,
		CollectionConversations,
		CollectionSettings,
	}
}

// collectionKinds maps collections to the id prefix used for locally
// synthesized identifiers.
var collectionKinds = map[string]string{
	CollectionProjects:       "project",
	CollectionTimeLogs:       "timelog",
	CollectionJournalEntries: "journal",
	CollectionInsights:       "insight",
	CollectionConversations:  "conversation",
	CollectionSettings:       "setting",
}

// ValidCollection reports whether name is part of the fixed schema.
func ValidCollection(name string) bool {
	_, ok := collectionKinds[name]
	return ok
}

// NewLocalID synthesizes a document id for the local backend in the form
// <kind>_<unixMillis>_<randomSuffix>. The remote backend generates its own
// ids server-side.
func NewLocalID(collection string) string {
	kind, ok := collectionKinds[collection]
	if !ok {
		kind = "doc"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixMilli(), suffix)
}

// Fields is the schemaless body of a document, as decoded from JSON.
type Fields map[string]any

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Document is one record in a collection. The id lives outside Fields; the
// stored body never contains an "id" key.
type Document struct {
	ID     string
	Fields Fields
}

// UnsubscribeFunc stops a subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the CRUD contract both backends implement.
//
// The remote backend scopes every call to the owner carried in ctx (see
// ContextWithOwner) and fails closed with ErrMissingOwner when it is absent.
// The local backend ignores owner information.
//
// Subscribe delivers best-effort live updates: the remote backend polls and
// invokes the callback on every observed change, while the local backend
// degrades to a single snapshot followed by a no-op unsubscribe. Callers must
// not assume more than one delivery.
type Store interface {
	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)

	// Get returns one document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create persists a new document and returns its generated id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)

	// Put writes a document under a caller-chosen id, replacing any
	// existing document. Used by restore paths that must preserve ids.
	Put(ctx context.Context, collection, id string, fields Fields) error

	// Update applies a partial patch. Keys absent from the patch are left
	// untouched. Returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, patch Fields) error

	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Clear removes every document in the collection.
	Clear(ctx context.Context, collection string) error

	// Subscribe registers fn to receive collection snapshots.
	Subscribe(ctx context.Context, collection string, fn func([]Document)) (UnsubscribeFunc, error)

	// Close releases backend resources.
	Close() error
}
