package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"portfolio/db"
	"portfolio/models"
)

// ProjectStore runs the project statements. Every call takes its own
// connection and gives it back before returning.
type ProjectStore struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewProjectStore(d *sql.DB, dialect db.Dialect) *ProjectStore {
	return &ProjectStore{db: d, dialect: dialect}
}

// release returns conn to the handle. Close errors are ignored; the
// statement has already completed.
func release(conn *sql.Conn) {
	_ = conn.Close()
}

// q rewrites $N placeholders for SQLite, which spells them ?N.
func (s *ProjectStore) q(query string) string {
	if s.dialect == db.SQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

func (s *ProjectStore) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return c, nil
}

// List returns every project. An empty table yields an empty, non-nil slice.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release(c)

	rows, err := c.QueryContext(ctx, `SELECT id, name, description, category FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]models.Project, 0, 16)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Get returns models.ErrNotFound when id has no row.
func (s *ProjectStore) Get(ctx context.Context, id int64) (*models.Project, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer release(c)

	var p models.Project
	err = c.QueryRowContext(ctx, s.q(`SELECT id, name, description, category FROM projects WHERE id = $1`), id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return &p, nil
}

// Create validates in, applies the defaults and returns the generated id.
func (s *ProjectStore) Create(ctx context.Context, in models.ProjectInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	p := in.Normalize()

	c, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer release(c)

	var id int64
	err = c.QueryRowContext(ctx,
		s.q(`INSERT INTO projects (name, description, category) VALUES ($1, $2, $3) RETURNING id`),
		p.Name, p.Description, p.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

// Replace overwrites all three fields of project id.
func (s *ProjectStore) Replace(ctx context.Context, id int64, name, description, category string) error {
	patch := models.Replacement(name, description, category)
	if err := patch.Validate(); err != nil {
		return err
	}
	return s.update(ctx, id, patch)
}

// Patch changes only the fields present in patch; the others keep their
// stored values.
func (s *ProjectStore) Patch(ctx context.Context, id int64, patch models.ProjectPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	return s.update(ctx, id, patch)
}

func (s *ProjectStore) update(ctx context.Context, id int64, patch models.ProjectPatch) error {
	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer release(c)

	res, err := c.ExecContext(ctx, s.q(`
UPDATE projects
   SET name        = COALESCE($1, name),
       description = COALESCE($2, description),
       category    = COALESCE($3, category)
 WHERE id = $4`),
		nullable(patch.Name), nullable(patch.Description), nullable(patch.Category), id)
	if err != nil {
		return fmt.Errorf("update project %d: %w", id, err)
	}
	return expectRow(res)
}

// Delete removes project id permanently.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	c, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer release(c)

	res, err := c.ExecContext(ctx, s.q(`DELETE FROM projects WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return expectRow(res)
}

// Count returns the number of stored projects.
func (s *ProjectStore) Count(ctx context.Context) (int, error) {
	c, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	defer release(c)

	var n int
	if err := c.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
