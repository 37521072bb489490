package unified

import (
	"context"
	"sort"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

// ActiveInsights returns the insights not yet dismissed, oldest first.
// Backends disagree on how the dismissed flag is stored (bool vs 0/1); the
// model normalizes it on decode, so the filter sees only booleans.
func (f *Facade) ActiveInsights(ctx context.Context) ([]model.Insight, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionInsights)
	if err != nil {
		return nil, err
	}
	insights, err := decodeAll[model.Insight](docs)
	if err != nil {
		return nil, err
	}

	active := make([]model.Insight, 0, len(insights))
	for _, ins := range insights {
		if !ins.Dismissed.Bool() {
			active = append(active, ins)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].GeneratedAt.Before(active[j].GeneratedAt)
	})
	return active, nil
}

// DismissInsight soft-deletes an insight. Dismissed insights are filtered out
// of reads, never hard-deleted.
func (f *Facade) DismissInsight(ctx context.Context, id string) error {
	st, ctx, _ := f.backend(ctx)
	return st.Update(ctx, store.CollectionInsights, id, store.Fields{"dismissed": true})
}
