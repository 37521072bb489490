package unified

import (
	"context"
	"fmt"
	"time"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

// AllJournalEntries returns every journal entry on the active backend.
func (f *Facade) AllJournalEntries(ctx context.Context) ([]model.JournalEntry, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionJournalEntries)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.JournalEntry](docs)
}

// CreateJournalEntry persists a new entry and returns it with its id.
func (f *Facade) CreateJournalEntry(ctx context.Context, e model.JournalEntry) (model.JournalEntry, error) {
	if e.Content == "" {
		return model.JournalEntry{}, fmt.Errorf("journal entry content is required")
	}
	if e.CreatedAt == nil {
		now := time.Now()
		e.CreatedAt = &now
	}

	fields, err := encodeFields(e)
	if err != nil {
		return model.JournalEntry{}, err
	}
	st, ctx, _ := f.backend(ctx)
	id, err := st.Create(ctx, store.CollectionJournalEntries, fields)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.ID = id
	return e, nil
}

// UpdateJournalEntry applies a partial patch to an entry.
func (f *Facade) UpdateJournalEntry(ctx context.Context, id string, patch store.Fields) error {
	st, ctx, _ := f.backend(ctx)
	return st.Update(ctx, store.CollectionJournalEntries, id, patch)
}

// DeleteJournalEntry removes an entry permanently.
func (f *Facade) DeleteJournalEntry(ctx context.Context, id string) error {
	st, ctx, _ := f.backend(ctx)
	return st.Delete(ctx, store.CollectionJournalEntries, id)
}
