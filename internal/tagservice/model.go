package tagservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Markelych32/blog-platform/internal/common"
)

var (
	ErrDuplicateName = errors.New("duplicate tag name")
	ErrHasPosts      = errors.New("tag has posts associated with it")
)

func newTagModel(db *sql.DB) *TagModel {
	return &TagModel{db: db}
}

func (m *TagModel) getByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	query := `
		SELECT id, name
		FROM tags
		WHERE id = $1`

	var t Tag

	err := m.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &t, nil
}

func (m *TagModel) listWithPublishedCount(ctx context.Context) ([]TagWithPostCount, error) {
	query := `
		SELECT t.id, t.name, COUNT(p.id) FILTER (WHERE p.status = 'PUBLISHED')
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		LEFT JOIN posts p ON p.id = pt.post_id
		GROUP BY t.id, t.name
		ORDER BY t.name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []TagWithPostCount
	for rows.Next() {
		var t TagWithPostCount
		err := rows.Scan(&t.ID, &t.Name, &t.PostCount)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func (m *TagModel) findManyByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	query := `
		SELECT id, name
		FROM tags
		WHERE id = ANY($1)`

	rows, err := m.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		err := rows.Scan(&t.ID, &t.Name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func (m *TagModel) findByNameIn(ctx context.Context, tx *sql.Tx, names []string) ([]Tag, error) {
	query := `
		SELECT id, name
		FROM tags
		WHERE name = ANY($1)`

	rows, err := tx.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		err := rows.Scan(&t.ID, &t.Name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

func (m *TagModel) insert(ctx context.Context, tx *sql.Tx, name string) (*Tag, error) {
	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		RETURNING id`

	t := Tag{Name: name}

	err := tx.QueryRowContext(ctx, query, name).Scan(&t.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}

	return &t, nil
}

// hasPosts answers the referential-usage check against the join table.
func (m *TagModel) hasPosts(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM post_tags WHERE tag_id = $1)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *TagModel) delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM tags
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
