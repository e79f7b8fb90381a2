package postservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Markelych32/blog-platform/internal/common"
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

const postColumns = `
	p.id, p.title, p.content, p.author_id, p.category_id, p.status, p.reading_time, p.created_at, p.updated_at,
	COALESCE(array_agg(pt.tag_id) FILTER (WHERE pt.tag_id IS NOT NULL), '{}')`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CategoryID, &p.Status, &p.ReadingTime, &p.CreatedAt, &p.UpdatedAt, pq.Array(&p.TagIDs))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *PostModel) insert(ctx context.Context, tx *sql.Tx, p *Post) error {
	query := `
		INSERT INTO posts (title, content, author_id, category_id, status, reading_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	args := []any{
		p.Title,
		p.Content,
		p.AuthorID,
		p.CategoryID,
		p.Status,
		p.ReadingTime,
		p.CreatedAt,
		p.UpdatedAt,
	}

	err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID)
	if err != nil {
		return err
	}

	return m.insertTags(ctx, tx, p.ID, p.TagIDs)
}

func (m *PostModel) insertTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	query := `
		INSERT INTO post_tags (post_id, tag_id)
		VALUES ($1, $2)`

	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, query, postID, tagID); err != nil {
			return err
		}
	}

	return nil
}

// replaceTags swaps the post's tag set inside the caller's transaction so a
// reader never observes a partially updated set.
func (m *PostModel) replaceTags(ctx context.Context, tx *sql.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	query := `
		DELETE FROM post_tags
		WHERE post_id = $1`

	if _, err := tx.ExecContext(ctx, query, postID); err != nil {
		return err
	}

	return m.insertTags(ctx, tx, postID, tagIDs)
}

func (m *PostModel) update(ctx context.Context, tx *sql.Tx, p *Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, status = $3, category_id = $4, reading_time = $5, updated_at = $6
		WHERE id = $7`

	args := []any{
		p.Title,
		p.Content,
		p.Status,
		p.CategoryID,
		p.ReadingTime,
		p.UpdatedAt,
		p.ID,
	}

	res, err := tx.ExecContext(ctx, query, args...)
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

func (m *PostModel) getByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.id = $1
		GROUP BY p.id`

	post, err := scanPost(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return post, nil
}

func (m *PostModel) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// The four list queries below are deliberately separate statements rather
// than one dynamically assembled filter, so each stays friendly to its index.

func (m *PostModel) listByStatus(ctx context.Context, status Status) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	return m.queryPosts(ctx, query, status)
}

func (m *PostModel) listByStatusAndCategory(ctx context.Context, status Status, categoryID uuid.UUID) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = $1 AND p.category_id = $2
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	return m.queryPosts(ctx, query, status, categoryID)
}

func (m *PostModel) listByStatusAndTag(ctx context.Context, status Status, tagID uuid.UUID) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = $1 AND EXISTS (SELECT 1 FROM post_tags f WHERE f.post_id = p.id AND f.tag_id = $2)
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	return m.queryPosts(ctx, query, status, tagID)
}

func (m *PostModel) listByStatusAndCategoryAndTag(ctx context.Context, status Status, categoryID, tagID uuid.UUID) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.status = $1 AND p.category_id = $2 AND EXISTS (SELECT 1 FROM post_tags f WHERE f.post_id = p.id AND f.tag_id = $3)
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	return m.queryPosts(ctx, query, status, categoryID, tagID)
}

func (m *PostModel) listByAuthorAndStatus(ctx context.Context, authorID uuid.UUID, status Status) ([]Post, error) {
	query := `
		SELECT` + postColumns + `
		FROM posts p
		LEFT JOIN post_tags pt ON pt.post_id = p.id
		WHERE p.author_id = $1 AND p.status = $2
		GROUP BY p.id
		ORDER BY p.created_at DESC`

	return m.queryPosts(ctx, query, authorID, status)
}

func (m *PostModel) delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM posts
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
