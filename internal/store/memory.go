package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and the demo seed path.
// It can stand in for either backend: the ownerless form behaves like the
// local store, the owned form partitions data per user and fails closed
// like the remote store.
type MemoryStore struct {
	mu           sync.RWMutex
	requireOwner bool
	// data: owner -> collection -> id -> fields. Ownerless data lives
	// under the empty owner key.
	data map[string]map[string]map[string]Fields
}

// NewMemoryStore returns an ownerless in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]map[string]Fields)}
}

// NewOwnedMemoryStore returns an owner-scoped in-memory store that requires
// an owner in every call's context.
func NewOwnedMemoryStore() *MemoryStore {
	return &MemoryStore{
		requireOwner: true,
		data:         make(map[string]map[string]map[string]Fields),
	}
}

// scope resolves the owner partition for a call.
func (s *MemoryStore) scope(ctx context.Context) (string, error) {
	if !s.requireOwner {
		return "", nil
	}
	owner, err := OwnerFromContext(ctx)
	if err != nil {
		return "", err
	}
	return owner.UserID, nil
}

// bucket returns the id->fields map for one collection, creating it when
// create is set. Callers must hold the lock.
func (s *MemoryStore) bucket(owner, collection string, create bool) map[string]Fields {
	colls, ok := s.data[owner]
	if !ok {
		if !create {
			return nil
		}
		colls = make(map[string]map[string]Fields)
		s.data[owner] = colls
	}
	b, ok := colls[collection]
	if !ok {
		if !create {
			return nil
		}
		b = make(map[string]Fields)
		colls[collection] = b
	}
	return b
}

// deepCopy clones fields through a JSON round trip so callers never alias
// stored state.
func deepCopy(fields Fields) (Fields, error) {
	if fields == nil {
		return Fields{}, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	var out Fields
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copying document: %w", err)
	}
	return out, nil
}

// List returns every document in the collection, ordered by id.
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if !ValidCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.bucket(owner, collection, false)
	docs := make([]Document, 0, len(b))
	for id, fields := range b {
		copied, err := deepCopy(fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Fields: copied})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Get returns one document.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if !ValidCollection(collection) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.bucket(owner, collection, false)
	fields, ok := b[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	copied, err := deepCopy(fields)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: copied}, nil
}

// Create persists a new document. Owned stores hand out server-style opaque
// ids; ownerless stores synthesize local-style ids.
func (s *MemoryStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if !ValidCollection(collection) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return "", err
	}
	copied, err := deepCopy(fields)
	if err != nil {
		return "", err
	}

	var id string
	if s.requireOwner {
		id = uuid.NewString()
	} else {
		id = NewLocalID(collection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(owner, collection, true)[id] = copied
	return id, nil
}

// Put writes a document under a caller-chosen id.
func (s *MemoryStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return err
	}
	copied, err := deepCopy(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket(owner, collection, true)[id] = copied
	return nil
}

// Update applies a partial patch.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch Fields) error {
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return err
	}
	copied, err := deepCopy(patch)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucket(owner, collection, false)
	fields, ok := b[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	for k, v := range copied {
		fields[k] = v
	}
	return nil
}

// Delete removes a document. Absent documents are not an error.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.bucket(owner, collection, false); b != nil {
		delete(b, id)
	}
	return nil
}

// Clear removes every document in the collection.
func (s *MemoryStore) Clear(ctx context.Context, collection string) error {
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	owner, err := s.scope(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if colls, ok := s.data[owner]; ok {
		delete(colls, collection)
	}
	return nil
}

// Subscribe delivers a single snapshot, matching the local store's
// degraded-subscription contract.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, fn func([]Document)) (UnsubscribeFunc, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	fn(docs)
	return func() {}, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
