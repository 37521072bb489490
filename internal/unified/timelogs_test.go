package unified

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retirewiselabs/retirewised/internal/model"
	"github.com/retirewiselabs/retirewised/internal/store"
)

func TestCreateTimeLog_Validation(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	_, err := f.CreateTimeLog(ctx, model.TimeLog{Duration: 1})
	require.Error(t, err, "project id is required")

	_, err = f.CreateTimeLog(ctx, model.TimeLog{ProjectID: "p", Duration: 0})
	require.Error(t, err, "zero duration rejected")

	_, err = f.CreateTimeLog(ctx, model.TimeLog{ProjectID: "p", Duration: -2})
	require.Error(t, err, "negative duration rejected")
}

func TestTimeLog_HourAggregation(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "Wanderwise", Status: model.StatusActive})
	require.NoError(t, err)

	workedAt := time.Date(2026, 8, 20, 14, 0, 0, 0, time.Local)
	l, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: p.ID, Date: workedAt, Duration: 2})
	require.NoError(t, err)
	require.NotEmpty(t, l.ID)

	got, err := f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2, got.TotalHoursLogged, 1e-9)
	require.NotNil(t, got.LastWorkedAt)
	assert.True(t, got.LastWorkedAt.Equal(workedAt), "lastWorkedAt stamped from the log date")

	// Editing the duration re-levels the total, not adds to it.
	require.NoError(t, f.UpdateTimeLog(ctx, l.ID, store.Fields{"duration": 5.0}))
	got, err = f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5, got.TotalHoursLogged, 1e-9)

	// Deleting the log returns the total to zero.
	require.NoError(t, f.DeleteTimeLog(ctx, l.ID))
	got, err = f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalHoursLogged)

	logs, err := f.AllTimeLogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestUpdateTimeLog_MoveBetweenProjects(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	a, err := f.CreateProject(ctx, model.Project{Name: "A"})
	require.NoError(t, err)
	b, err := f.CreateProject(ctx, model.Project{Name: "B"})
	require.NoError(t, err)

	_, err = f.CreateTimeLog(ctx, model.TimeLog{ProjectID: a.ID, Date: time.Now(), Duration: 1})
	require.NoError(t, err)
	l, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: a.ID, Date: time.Now(), Duration: 3})
	require.NoError(t, err)

	// Move the 3h log from A to B. Hours must be conserved: A keeps only its
	// remaining log, B gains exactly what A lost.
	require.NoError(t, f.UpdateTimeLog(ctx, l.ID, store.Fields{"projectId": b.ID}))

	gotA, err := f.Project(ctx, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1, gotA.TotalHoursLogged, 1e-9)

	gotB, err := f.Project(ctx, b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3, gotB.TotalHoursLogged, 1e-9)
}

func TestUpdateTimeLog_NotesOnlyPatchLeavesTotalsAlone(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "P"})
	require.NoError(t, err)
	l, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: p.ID, Date: time.Now(), Duration: 4})
	require.NoError(t, err)

	require.NoError(t, f.UpdateTimeLog(ctx, l.ID, store.Fields{"notes": "deep work"}))

	got, err := f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4, got.TotalHoursLogged, 1e-9)
}

func TestDeleteTimeLog_FloorsAtZero(t *testing.T) {
	f, local, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "P"})
	require.NoError(t, err)
	l, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: p.ID, Date: time.Now(), Duration: 2})
	require.NoError(t, err)

	// Simulate drift: the stored total is smaller than the log about to be
	// debited. The total must floor at zero, never go negative.
	require.NoError(t, local.Update(ctx, store.CollectionProjects, p.ID,
		store.Fields{"totalHoursLogged": 1.0}))

	require.NoError(t, f.DeleteTimeLog(ctx, l.ID))

	got, err := f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalHoursLogged)
}

func TestTimeLog_DanglingProjectReference(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	// Logging against a deleted project still records the hours worked; the
	// credit is a silent no-op.
	l, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: "project_gone", Date: time.Now(), Duration: 2})
	require.NoError(t, err)

	logs, err := f.AllTimeLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Unknown", logs[0].ProjectName, "dangling reference enriches to the placeholder")

	require.NoError(t, f.DeleteTimeLog(ctx, l.ID))
}

func TestAllTimeLogs_Enrichment(t *testing.T) {
	f, local, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "RetireWise", Color: "#f59e0b", Icon: "sunset"})
	require.NoError(t, err)

	l, err := f.CreateTimeLog(ctx, model.TimeLog{
		ProjectID:   p.ID,
		Date:        time.Now(),
		Duration:    1.5,
		ProjectName: "stale denormalized name",
	})
	require.NoError(t, err)

	// Join fields are computed on read, never persisted.
	doc, err := local.Get(ctx, store.CollectionTimeLogs, l.ID)
	require.NoError(t, err)
	assert.NotContains(t, doc.Fields, "projectName")
	assert.NotContains(t, doc.Fields, "projectColor")

	logs, err := f.AllTimeLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "RetireWise", logs[0].ProjectName)
	assert.Equal(t, "#f59e0b", logs[0].ProjectColor)
	assert.Equal(t, "sunset", logs[0].ProjectIcon)

	// Renaming the project is reflected on the next read, no stale cache.
	require.NoError(t, f.UpdateProject(ctx, p.ID, store.Fields{"name": "Renamed"}))
	logs, err = f.AllTimeLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", logs[0].ProjectName)
}

func TestTodayTimeLogs_DayBoundaries(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "P"})
	require.NoError(t, err)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cases := []struct {
		name   string
		date   time.Time
		inside bool
	}{
		{"midnight today", dayStart, true},
		{"midday today", dayStart.Add(12 * time.Hour), true},
		{"just before midnight yesterday", dayStart.Add(-time.Minute), false},
		{"midnight tomorrow", dayStart.Add(24 * time.Hour), false},
	}
	for _, tc := range cases {
		_, err := f.CreateTimeLog(ctx, model.TimeLog{
			ProjectID: p.ID,
			Date:      tc.date,
			Duration:  1,
			Notes:     tc.name,
		})
		require.NoError(t, err)
	}

	today, err := f.TodayTimeLogs(ctx)
	require.NoError(t, err)

	gotNotes := make(map[string]bool, len(today))
	for _, l := range today {
		gotNotes[l.Notes] = true
	}
	for _, tc := range cases {
		assert.Equal(t, tc.inside, gotNotes[tc.name], tc.name)
	}
}

func TestTimeLog_ConcurrentCreatesKeepTotalExact(t *testing.T) {
	f, _, _ := newTestFacade(t)
	ctx := context.Background()

	p, err := f.CreateProject(ctx, model.Project{Name: "busy"})
	require.NoError(t, err)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.CreateTimeLog(ctx, model.TimeLog{ProjectID: p.ID, Date: time.Now(), Duration: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, n, got.TotalHoursLogged, 1e-9, "no lost updates under concurrent writes")
}
