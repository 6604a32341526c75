package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-as1100/internal/application"
	"github.com/ahrav/go-as1100/internal/domain"
	"github.com/ahrav/go-as1100/internal/ports"
	"github.com/ahrav/go-as1100/internal/testutils"
)

func tempStore(t *testing.T) *SQLiteReportStore {
	t.Helper()
	s, err := NewSQLiteReportStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// runReport produces a real report from the default rubric, stamped with
// the given ID and time.
func runReport(t *testing.T, id string, at time.Time, mutate func(*domain.DrawingSpec)) *domain.ComplianceReport {
	t.Helper()
	registry, err := application.LoadDefaultRegistry()
	require.NoError(t, err)
	engine, err := application.NewEngine(registry,
		application.WithIDGenerator(func() string { return id }),
		application.WithClock(func() time.Time { return at }),
	)
	require.NoError(t, err)

	report, err := engine.Run(context.Background(), testutils.DrawingWith(mutate))
	require.NoError(t, err)
	return report
}

func TestSQLiteReportStore_SaveGet(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 18, 1, 2, 3, 456789000, time.UTC)

	want := runReport(t, "r-1", at, func(spec *domain.DrawingSpec) { spec.Margins.Left = 15 })
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "r-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report changed in storage (-want +got):\n%s", diff)
	}
}

func TestSQLiteReportStore_Errors(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrReportNotFound)
	var serr *ports.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "get", serr.Operation)
	assert.Equal(t, "missing", serr.ReportID)

	report := runReport(t, "dup", time.Now(), func(*domain.DrawingSpec) {})
	require.NoError(t, s.Save(ctx, report))
	err = s.Save(ctx, report)
	require.Error(t, err)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "save", serr.Operation)

	assert.ErrorIs(t, s.Save(ctx, &domain.ComplianceReport{}), domain.ErrEmptyValue)
	assert.ErrorIs(t, s.Save(ctx, nil), domain.ErrEmptyValue)
}

func TestSQLiteReportStore_List(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"oldest", "middle", "newest"} {
		r := runReport(t, id, base.Add(time.Duration(i)*time.Hour), func(*domain.DrawingSpec) {})
		require.NoError(t, s.Save(ctx, r))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"newest", "middle", "oldest"}, ids)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "newest", two[0].ID)
}

// TestSQLiteReportStore_ListSubSecondOrder saves reports whose creation
// times differ only in the fractional second, including one on a whole
// second, and expects them newest first.
func TestSQLiteReportStore_ListSubSecondOrder(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 12, 0, 5, 0, time.UTC)

	saves := []struct {
		id     string
		offset time.Duration
	}{
		{"whole-second", 0},
		{"plus-100ms", 100 * time.Millisecond},
		{"plus-120ms", 120 * time.Millisecond},
		{"plus-500ms", 500 * time.Millisecond},
	}
	for _, sv := range saves {
		require.NoError(t, s.Save(ctx, runReport(t, sv.id, base.Add(sv.offset), func(*domain.DrawingSpec) {})))
	}

	reports, err := s.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"plus-500ms", "plus-120ms", "plus-100ms", "whole-second"}, ids)
}

func TestSQLiteReportStore_Memory(t *testing.T) {
	s, err := NewSQLiteReportStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, runReport(t, "m-1", time.Now(), func(*domain.DrawingSpec) {})))

	reports, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestSQLiteReportStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	s, err := NewSQLiteReportStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, runReport(t, "kept", time.Now(), func(*domain.DrawingSpec) {})))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteReportStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, got.OverallPassed)
}
