package categoryservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Markelych32/blog-platform/internal/common"
)

var (
	ErrDuplicateName = errors.New("duplicate category name")
	ErrHasPosts      = errors.New("category has posts associated with it")
)

func newCategoryModel(db *sql.DB) *CategoryModel {
	return &CategoryModel{db: db}
}

func uniqueViolationError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *CategoryModel) insert(ctx context.Context, name string) (*Category, error) {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id`

	c := Category{Name: name}

	err := m.db.QueryRowContext(ctx, query, name).Scan(&c.ID)
	if err != nil {
		switch {
		case uniqueViolationError(err, "categories_name_lower_idx"):
			return nil, ErrDuplicateName
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *CategoryModel) getByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := `
		SELECT id, name
		FROM categories
		WHERE id = $1`

	var c Category

	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *CategoryModel) existsByName(ctx context.Context, name string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1))`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, name).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// listWithPublishedCount returns every category together with the number of
// PUBLISHED posts that reference it, ordered by name.
func (m *CategoryModel) listWithPublishedCount(ctx context.Context) ([]CategoryWithPostCount, error) {
	query := `
		SELECT c.id, c.name, COUNT(p.id) FILTER (WHERE p.status = 'PUBLISHED')
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []CategoryWithPostCount
	for rows.Next() {
		var c CategoryWithPostCount
		err := rows.Scan(&c.ID, &c.Name, &c.PostCount)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

// hasPosts answers the referential-usage check with a targeted existence
// query; categories hold no live collection of posts.
func (m *CategoryModel) hasPosts(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM posts WHERE category_id = $1)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *CategoryModel) updateName(ctx context.Context, id uuid.UUID, name string) (*Category, error) {
	query := `
		UPDATE categories
		SET name = $1
		WHERE id = $2
		RETURNING id, name`

	var c Category

	err := m.db.QueryRowContext(ctx, query, name, id).Scan(&c.ID, &c.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		case uniqueViolationError(err, "categories_name_lower_idx"):
			return nil, ErrDuplicateName
		default:
			return nil, err
		}
	}

	return &c, nil
}

func (m *CategoryModel) delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM categories
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}
