package unified

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

// AllTimeLogs returns every time log, enriched with the referenced project's
// name, color and icon. The project list is fetched fresh on every call; a
// dangling project reference enriches to the placeholder name "Unknown".
func (f *Facade) AllTimeLogs(ctx context.Context) ([]model.TimeLog, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionTimeLogs)
	if err != nil {
		return nil, err
	}
	logs, err := decodeAll[model.TimeLog](docs)
	if err != nil {
		return nil, err
	}

	projectDocs, err := st.List(ctx, store.CollectionProjects)
	if err != nil {
		return nil, err
	}
	projects, err := decodeAll[model.Project](projectDocs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	for i := range logs {
		p, ok := byID[logs[i].ProjectID]
		if !ok {
			logs[i].ProjectName = "Unknown"
			continue
		}
		logs[i].ProjectName = p.Name
		logs[i].ProjectColor = p.Color
		logs[i].ProjectIcon = p.Icon
	}
	return logs, nil
}

// TodayTimeLogs returns the logs whose date falls within the current local
// day: [startOfDay, startOfDay+24h). A log at exactly midnight belongs to the
// day it starts.
func (f *Facade) TodayTimeLogs(ctx context.Context) ([]model.TimeLog, error) {
	st, ctx, _ := f.backend(ctx)
	docs, err := st.List(ctx, store.CollectionTimeLogs)
	if err != nil {
		return nil, err
	}
	logs, err := decodeAll[model.TimeLog](docs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	today := make([]model.TimeLog, 0, len(logs))
	for _, l := range logs {
		d := l.Date.In(now.Location())
		if !d.Before(dayStart) && d.Before(dayEnd) {
			today = append(today, l)
		}
	}
	return today, nil
}

// CreateTimeLog persists a new log and credits the referenced project's hour
// total. The log itself succeeds even when the project no longer exists.
func (f *Facade) CreateTimeLog(ctx context.Context, l model.TimeLog) (model.TimeLog, error) {
	if l.ProjectID == "" {
		return model.TimeLog{}, fmt.Errorf("time log requires a project id")
	}
	if l.Duration <= 0 {
		return model.TimeLog{}, fmt.Errorf("time log duration must be positive, got %v", l.Duration)
	}
	if l.Date.IsZero() {
		l.Date = time.Now()
	}
	l.ProjectName, l.ProjectColor, l.ProjectIcon = "", "", ""

	fields, err := encodeFields(l)
	if err != nil {
		return model.TimeLog{}, err
	}
	st, ctx, scope := f.backend(ctx)
	id, err := st.Create(ctx, store.CollectionTimeLogs, fields)
	if err != nil {
		return model.TimeLog{}, err
	}
	l.ID = id

	if err := f.creditProject(ctx, st, scope, l.ProjectID, l.Duration, l.Date); err != nil {
		return model.TimeLog{}, err
	}
	return l, nil
}

// UpdateTimeLog applies a partial patch to a log. When the patch touches
// duration or projectId, the old project is debited and the (possibly
// different) new project credited, keeping both hour totals consistent.
func (f *Facade) UpdateTimeLog(ctx context.Context, id string, patch store.Fields) error {
	st, ctx, scope := f.backend(ctx)

	oldDoc, err := st.Get(ctx, store.CollectionTimeLogs, id)
	if err != nil {
		return err
	}
	oldLog, err := decodeDocument[model.TimeLog](oldDoc)
	if err != nil {
		return err
	}

	if err := st.Update(ctx, store.CollectionTimeLogs, id, patch); err != nil {
		return err
	}

	_, durationChanged := patch["duration"]
	_, projectChanged := patch["projectId"]
	if !durationChanged && !projectChanged {
		return nil
	}

	newProjectID := oldLog.ProjectID
	if v, ok := patch["projectId"]; ok {
		if s, ok := patchString(v); ok {
			newProjectID = s
		}
	}
	newDuration := oldLog.Duration
	if v, ok := patch["duration"]; ok {
		if n, ok := patchFloat(v); ok {
			newDuration = n
		}
	}
	workedAt := oldLog.Date
	if v, ok := patch["date"]; ok {
		if t, ok := patchTime(v); ok {
			workedAt = t
		}
	}

	if err := f.debitProject(ctx, st, scope, oldLog.ProjectID, oldLog.Duration); err != nil {
		return err
	}
	return f.creditProject(ctx, st, scope, newProjectID, newDuration, workedAt)
}

// DeleteTimeLog removes a log and debits its project's hour total.
func (f *Facade) DeleteTimeLog(ctx context.Context, id string) error {
	st, ctx, scope := f.backend(ctx)

	oldDoc, err := st.Get(ctx, store.CollectionTimeLogs, id)
	if errors.Is(err, store.ErrNotFound) {
		return st.Delete(ctx, store.CollectionTimeLogs, id)
	}
	if err != nil {
		return err
	}
	oldLog, err := decodeDocument[model.TimeLog](oldDoc)
	if err != nil {
		return err
	}

	if err := st.Delete(ctx, store.CollectionTimeLogs, id); err != nil {
		return err
	}
	return f.debitProject(ctx, st, scope, oldLog.ProjectID, oldLog.Duration)
}

// creditProject adds hours to a project's running total and stamps
// lastWorkedAt. A missing project is a silent no-op; adapter failures
// propagate unchanged.
func (f *Facade) creditProject(ctx context.Context, st store.Store, scope, projectID string, hours float64, workedAt time.Time) error {
	if projectID == "" {
		return nil
	}
	unlock := f.projectLocks.lock(scope + "/" + projectID)
	defer unlock()

	doc, err := st.Get(ctx, store.CollectionProjects, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p, err := decodeDocument[model.Project](doc)
	if err != nil {
		return err
	}

	return st.Update(ctx, store.CollectionProjects, projectID, store.Fields{
		"totalHoursLogged": p.TotalHoursLogged + hours,
		"lastWorkedAt":     workedAt,
	})
}

// debitProject subtracts hours from a project's running total, floored at
// zero. A missing project is a silent no-op.
func (f *Facade) debitProject(ctx context.Context, st store.Store, scope, projectID string, hours float64) error {
	if projectID == "" {
		return nil
	}
	unlock := f.projectLocks.lock(scope + "/" + projectID)
	defer unlock()

	doc, err := st.Get(ctx, store.CollectionProjects, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p, err := decodeDocument[model.Project](doc)
	if err != nil {
		return err
	}

	remaining := p.TotalHoursLogged - hours
	if remaining < 0 {
		remaining = 0
	}
	return st.Update(ctx, store.CollectionProjects, projectID, store.Fields{
		"totalHoursLogged": remaining,
	})
}
