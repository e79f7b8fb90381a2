package tagservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Markelych32/blog-platform/internal/common"
)

func setupTestEnvironment(t *testing.T) (*TagService, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	c := common.NewCache(5*time.Minute, 10*time.Minute)

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM posts")
		_, _ = db.Exec("DELETE FROM tags")
		_, _ = db.Exec("DELETE FROM categories")
		_, _ = db.Exec("DELETE FROM users")
	})

	return NewTagService(db, c), db
}

// attachPost wires a tag to a freshly seeded post so the usage guard has a
// referencing row.
func attachPost(t *testing.T, db *sql.DB, tagID uuid.UUID, status string) {
	var authorID, categoryID, postID uuid.UUID

	err := db.QueryRow(`
		INSERT INTO users (username, email, password)
		VALUES ('seeduser' || substr(md5(random()::text), 1, 8), substr(md5(random()::text), 1, 12) || '@example.com', 'x')
		RETURNING id`).Scan(&authorID)
	assert.NoError(t, err)

	err = db.QueryRow(`
		INSERT INTO categories (name)
		VALUES ('seed' || substr(md5(random()::text), 1, 8))
		RETURNING id`).Scan(&categoryID)
	assert.NoError(t, err)

	err = db.QueryRow(`
		INSERT INTO posts (title, content, author_id, category_id, status, reading_time, created_at, updated_at)
		VALUES ('seed post', 'seed content', $1, $2, $3, 1, now(), now())
		RETURNING id`, authorID, categoryID, status).Scan(&postID)
	assert.NoError(t, err)

	_, err = db.Exec("INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)", postID, tagID)
	assert.NoError(t, err)
}

func TestResolveOrCreateByNames(t *testing.T) {
	s, db := setupTestEnvironment(t)

	t.Run("creates missing names", func(t *testing.T) {
		tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "databases"})
		assert.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("resubmitting creates nothing", func(t *testing.T) {
		tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "databases"})
		assert.NoError(t, err)
		assert.Len(t, tags, 2)

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("mix of existing and new", func(t *testing.T) {
		tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "rust"})
		assert.NoError(t, err)
		assert.Len(t, tags, 2)

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM tags").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("empty name list", func(t *testing.T) {
		_, err := s.ResolveOrCreateByNames(context.Background(), nil)

		var vErr common.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("too many names", func(t *testing.T) {
		names := make([]string, MaxTagNames+1)
		for i := range names {
			names[i] = "tag" + string(rune('a'+i))
		}

		_, err := s.ResolveOrCreateByNames(context.Background(), names)

		var vErr common.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestListTags(t *testing.T) {
	s, db := setupTestEnvironment(t)

	tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "databases"})
	assert.NoError(t, err)

	byName := make(map[string]uuid.UUID, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag.ID
	}

	attachPost(t, db, byName["go"], "PUBLISHED")
	attachPost(t, db, byName["go"], "DRAFT")

	listed, err := s.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, listed, 2)

	// ordered by name, counting published posts only
	assert.Equal(t, "databases", listed[0].Name)
	assert.Equal(t, 0, listed[0].PostCount)
	assert.Equal(t, "go", listed[1].Name)
	assert.Equal(t, 1, listed[1].PostCount)
}

func TestDeleteTag(t *testing.T) {
	s, db := setupTestEnvironment(t)

	tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "rust"})
	assert.NoError(t, err)

	byName := make(map[string]uuid.UUID, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag.ID
	}

	attachPost(t, db, byName["go"], "DRAFT")

	t.Run("unused tag", func(t *testing.T) {
		assert.NoError(t, s.Delete(context.Background(), byName["rust"]))

		_, err := s.FindByID(context.Background(), byName["rust"])
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("referenced tag is kept", func(t *testing.T) {
		err := s.Delete(context.Background(), byName["go"])
		assert.ErrorIs(t, err, ErrHasPosts)

		_, err = s.FindByID(context.Background(), byName["go"])
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := s.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})
}

func TestFindManyByIDs(t *testing.T) {
	s, _ := setupTestEnvironment(t)

	tags, err := s.ResolveOrCreateByNames(context.Background(), []string{"go", "rust"})
	assert.NoError(t, err)

	ids := []uuid.UUID{tags[0].ID, tags[1].ID}

	t.Run("all present", func(t *testing.T) {
		found, err := s.FindManyByIDs(context.Background(), ids)
		assert.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("duplicate ids are deduplicated", func(t *testing.T) {
		found, err := s.FindManyByIDs(context.Background(), []uuid.UUID{ids[0], ids[0], ids[1]})
		assert.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("any absent id fails the whole call", func(t *testing.T) {
		_, err := s.FindManyByIDs(context.Background(), append(ids, uuid.New()))
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("empty input", func(t *testing.T) {
		found, err := s.FindManyByIDs(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, found)
	})
}
