package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portfolio/db"
	"portfolio/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func strp(s string) *string { return &s }

func newSQLiteStore(t *testing.T) *ProjectStore {
	t.Helper()
	ctx := context.Background()
	d, err := db.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.EnsureSchema(ctx, d, db.SQLite))
	return NewProjectStore(d, db.SQLite)
}

// newPostgresStore skips unless TEST_DATABASE_URL points at a scratch database.
func newPostgresStore(t *testing.T) *ProjectStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}
	ctx := context.Background()
	d, err := db.Open(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.EnsureSchema(ctx, d, db.Postgres))
	_, err = d.ExecContext(ctx, "TRUNCATE TABLE projects RESTART IDENTITY")
	require.NoError(t, err)
	return NewProjectStore(d, db.Postgres)
}

func TestProjectStore_SQLite(t *testing.T) {
	runStoreSuite(t, newSQLiteStore)
}

func TestProjectStore_Postgres(t *testing.T) {
	runStoreSuite(t, newPostgresStore)
}

func runStoreSuite(t *testing.T, newStore func(*testing.T) *ProjectStore) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		s := newStore(t)
		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("create applies defaults", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, models.ProjectInput{Name: "Portfolio"})
		require.NoError(t, err)
		assert.Positive(t, id)

		p, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.Project{ID: id, Name: "Portfolio", Description: "", Category: "web"}, *p)
	})

	t.Run("create keeps supplied values", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, models.ProjectInput{Name: "Shop", Description: strp("store front"), Category: strp("ecommerce")})
		require.NoError(t, err)

		p, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "store front", p.Description)
		assert.Equal(t, "ecommerce", p.Category)
	})

	t.Run("create without name adds nothing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, models.ProjectInput{Name: ""})
		assert.ErrorIs(t, err, models.ErrNameRequired)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, 4242)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("patch merges", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, models.ProjectInput{Name: "Blog", Description: strp("notes")})
		require.NoError(t, err)

		require.NoError(t, s.Patch(ctx, id, models.ProjectPatch{Category: strp("writing")}))

		p, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Blog", p.Name)
		assert.Equal(t, "notes", p.Description)
		assert.Equal(t, "writing", p.Category)

		// an explicit empty description is a value, not an omission
		require.NoError(t, s.Patch(ctx, id, models.ProjectPatch{Description: strp("")}))
		p, err = s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "", p.Description)
		assert.Equal(t, "Blog", p.Name)
	})

	t.Run("patch validation and missing rows", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.Patch(ctx, 1, models.ProjectPatch{}), models.ErrEmptyPatch)
		assert.ErrorIs(t, s.Patch(ctx, 99, models.ProjectPatch{Name: strp("x")}), models.ErrNotFound)
	})

	t.Run("replace overwrites everything", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, models.ProjectInput{Name: "Old", Description: strp("d"), Category: strp("mobile")})
		require.NoError(t, err)

		require.NoError(t, s.Replace(ctx, id, "New", "", "web"))
		p, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.Project{ID: id, Name: "New", Description: "", Category: "web"}, *p)

		assert.ErrorIs(t, s.Replace(ctx, id+100, "x", "", "web"), models.ErrNotFound)
		assert.ErrorIs(t, s.Replace(ctx, id, " ", "", "web"), models.ErrNameRequired)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Create(ctx, models.ProjectInput{Name: "A"})
		require.NoError(t, err)
		b, err := s.Create(ctx, models.ProjectInput{Name: "B"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, a))
		assert.ErrorIs(t, s.Delete(ctx, a), models.ErrNotFound)

		_, err = s.Get(ctx, a)
		assert.ErrorIs(t, err, models.ErrNotFound)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b, list[0].ID)
	})
}

func TestProjectStore_ClosedHandle(t *testing.T) {
	ctx := context.Background()
	d, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, d.Close())

	s := NewProjectStore(d, db.SQLite)
	_, err = s.Count(ctx)
	assert.Error(t, err)
	_, err = s.List(ctx)
	assert.Error(t, err)
}
