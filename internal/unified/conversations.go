package unified

import (
	"context"
	"time"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

// AllConversations returns every saved advisor conversation.
func (f *Facade) AllConversations(ctx context.Context) ([]model.Conversation, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionConversations)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Conversation](docs)
}

// CreateConversation persists a new conversation and returns it with its id.
// The message payload is stored opaquely.
func (f *Facade) CreateConversation(ctx context.Context, c model.Conversation) (model.Conversation, error) {
	if c.UpdatedAt == nil {
		now := time.Now()
		c.UpdatedAt = &now
	}
	fields, err := encodeFields(c)
	if err != nil {
		return model.Conversation{}, err
	}
	st, ctx, _ := f.backend(ctx)
	id, err := st.Create(ctx, store.CollectionConversations, fields)
	if err != nil {
		return model.Conversation{}, err
	}
	c.ID = id
	return c, nil
}

// UpdateConversation applies a partial patch to a conversation.
func (f *Facade) UpdateConversation(ctx context.Context, id string, patch store.Fields) error {
	st, ctx, _ := f.backend(ctx)
	return st.Update(ctx, store.CollectionConversations, id, patch)
}

// DeleteConversation removes a conversation permanently.
func (f *Facade) DeleteConversation(ctx context.Context, id string) error {
	st, ctx, _ := f.backend(ctx)
	return st.Delete(ctx, store.CollectionConversations, id)
}
