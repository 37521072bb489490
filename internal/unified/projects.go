package unified

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

// AllProjects returns every project on the active backend.
func (f *Facade) AllProjects(ctx context.Context) ([]model.Project, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionProjects)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Project](docs)
}

// ActiveProjects returns projects whose status counts as active
// (active or planning).
func (f *Facade) ActiveProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := f.AllProjects(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status.IsActive() {
			active = append(active, p)
		}
	}
	return active, nil
}

// Project returns one project.
func (f *Facade) Project(ctx context.Context, id string) (model.Project, error) {
	st, ctx, _ := f.backend(ctx)
	doc, err := st.Get(ctx, store.CollectionProjects, id)
	if err != nil {
		return model.Project{}, err
	}
	return decodeDocument[model.Project](doc)
}

// CreateProject persists a new project and returns it with its assigned id.
// Status defaults to planning and the derived hour counter starts at zero.
func (f *Facade) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.Status == "" {
		p.Status = model.StatusPlanning
	}
	if !p.Status.Valid() {
		return model.Project{}, fmt.Errorf("invalid project status %q", p.Status)
	}
	p.TotalHoursLogged = 0
	if p.CreatedAt == nil {
		now := time.Now()
		p.CreatedAt = &now
	}

	fields, err := encodeFields(p)
	if err != nil {
		return model.Project{}, err
	}
	st, ctx, _ := f.backend(ctx)
	id, err := st.Create(ctx, store.CollectionProjects, fields)
	if err != nil {
		return model.Project{}, err
	}
	p.ID = id
	return p, nil
}

// UpdateProject applies a partial patch to a project.
func (f *Facade) UpdateProject(ctx context.Context, id string, patch store.Fields) error {
	st, ctx, _ := f.backend(ctx)
	return st.Update(ctx, store.CollectionProjects, id, patch)
}

// DeleteProject removes a project permanently. Time logs referencing it are
// left in place; reads tolerate the dangling reference.
func (f *Facade) DeleteProject(ctx context.Context, id string) error {
	st, ctx, _ := f.backend(ctx)
	return st.Delete(ctx, store.CollectionProjects, id)
}

// SubscribeProjects registers fn for project snapshots. On the remote backend
// this is a live poll; locally it degrades to one snapshot.
func (f *Facade) SubscribeProjects(ctx context.Context, fn func([]model.Project)) (store.UnsubscribeFunc, error) {
	st, ctx, _ := f.backend(ctx)
	return st.Subscribe(ctx, store.CollectionProjects, func(docs []store.Document) {
		projects, err := decodeAll[model.Project](docs)
		if err != nil {
			f.logger.Warn("dropping undecodable project snapshot", zap.Error(err))
			return
		}
		fn(projects)
	})
}
