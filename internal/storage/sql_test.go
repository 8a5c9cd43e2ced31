package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spamsniffer/internal/domain"
)

// newTestStore creates an in-memory SQLite store with all migrations applied.
func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	s, err := NewSQLStore(DriverSQLite, ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

func scanAt(id string, spam bool, at time.Time) domain.Scan {
	v := domain.Verdict{
		IsSpam:      spam,
		SpamScore:   0.2,
		Description: "This email seems legitimate.",
		SpamType:    domain.SpamTypeLegitimate,
		Summary:     "summary",
	}
	if spam {
		v.SpamScore = 0.9
		v.SpamType = domain.SpamTypePromotional
		v.Description = "This email looks like a promotional offer."
	}
	return domain.Scan{
		ID:        id,
		Source:    domain.SourceAPI,
		Subject:   "subject " + id,
		From:      "from@example.com",
		TextHash:  "hash-" + id,
		Verdict:   v,
		CreatedAt: at,
	}
}

func TestSaveAndFindByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, scanAt("s1", true, at)))

	got, err := s.FindByID(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, domain.SourceAPI, got.Source)
	assert.Equal(t, "from@example.com", got.From)
	assert.True(t, got.Verdict.IsSpam)
	assert.InDelta(t, 0.9, got.Verdict.SpamScore, 1e-12)
	assert.Equal(t, domain.SpamTypePromotional, got.Verdict.SpamType)
	assert.WithinDuration(t, at, got.CreatedAt, time.Second)
}

func TestFindByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveGeneratesIDAndIgnoresDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	scan := scanAt("", false, time.Time{})
	require.NoError(t, s.Save(ctx, scan))

	dup := scanAt("fixed", false, time.Now())
	require.NoError(t, s.Save(ctx, dup))
	require.NoError(t, s.Save(ctx, dup))

	all, err := s.FindAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, sc := range all {
		assert.NotEmpty(t, sc.ID)
	}
}

func TestFindAllOrderAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, scanAt(id, i == 2, base.Add(time.Duration(i)*time.Hour))))
	}

	page, err := s.FindAll(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].ID)
	assert.Equal(t, "b", page[1].ID)

	page, err = s.FindAll(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].ID)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	require.NoError(t, s.Save(ctx, scanAt("x", true, time.Now())))
	require.NoError(t, s.Save(ctx, scanAt("y", false, time.Now())))
	require.NoError(t, s.Save(ctx, scanAt("z", true, time.Now())))

	st, err = s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Spam: 2}, st)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.runMigrations())

	var version int
	require.NoError(t, s.db.Get(&version, "SELECT MAX(version) FROM schema_version"))
	assert.Equal(t, len(migrations), version)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewSQLStore("mysql", "dsn")
	assert.Error(t, err)
}
