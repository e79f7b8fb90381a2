package postservice

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Markelych32/blog-platform/internal/categoryservice"
	"github.com/Markelych32/blog-platform/internal/common"
	"github.com/Markelych32/blog-platform/internal/tagservice"
	"github.com/Markelych32/blog-platform/internal/userservice"
)

type noopProducer struct{}

func (noopProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	return nil
}

type testEnv struct {
	posts      *PostService
	categories *categoryservice.CategoryService
	tags       *tagservice.TagService
	users      *userservice.UserService
	db         *sql.DB
	authorID   uuid.UUID
	categoryID uuid.UUID
	tagIDs     []uuid.UUID
}

func setupTestEnvironment(t *testing.T) *testEnv {
	db := common.TestDB("file://../../migrations", t)
	c := common.NewCache(5*time.Minute, 10*time.Minute)

	users, err := userservice.NewUserService(db, noopProducer{}, []byte("0123456789abcdef0123456789abcdef"), common.SystemClock{})
	assert.NoError(t, err)

	categories := categoryservice.NewCategoryService(db, c)
	tags := tagservice.NewTagService(db, c)
	posts := NewPostService(db, c, categories, tags, users, common.SystemClock{})

	author, err := users.RegisterUser(context.Background(), "testuser", "testuser@example.com", "TestPassword123!")
	assert.NoError(t, err)

	category, err := categories.Create(context.Background(), "Tech")
	assert.NoError(t, err)

	created, err := tags.ResolveOrCreateByNames(context.Background(), []string{"go", "databases"})
	assert.NoError(t, err)

	tagIDs := make([]uuid.UUID, 0, len(created))
	for _, tag := range created {
		tagIDs = append(tagIDs, tag.ID)
	}

	t.Cleanup(func() {
		_, _ = db.Exec("DELETE FROM posts")
		_, _ = db.Exec("DELETE FROM tags")
		_, _ = db.Exec("DELETE FROM categories")
		_, _ = db.Exec("DELETE FROM users")
	})

	return &testEnv{
		posts:      posts,
		categories: categories,
		tags:       tags,
		users:      users,
		db:         db,
		authorID:   author.ID,
		categoryID: category.ID,
		tagIDs:     tagIDs,
	}
}

func (e *testEnv) createPost(t *testing.T, status Status, tagIDs []uuid.UUID) *Post {
	post, err := e.posts.Create(context.Background(), &CreatePostRequest{
		Title:      "Understanding Indexes",
		Content:    strings.Repeat("word ", 450),
		CategoryID: e.categoryID,
		TagIDs:     tagIDs,
		Status:     status,
	}, e.authorID)
	assert.NoError(t, err)
	return post
}

func TestCreatePost(t *testing.T) {
	env := setupTestEnvironment(t)

	t.Run("valid post", func(t *testing.T) {
		post := env.createPost(t, StatusPublished, env.tagIDs)

		assert.NotEqual(t, uuid.Nil, post.ID)
		assert.Equal(t, 3, post.ReadingTime)
		assert.ElementsMatch(t, env.tagIDs, post.TagIDs)
		assert.Equal(t, post.CreatedAt, post.UpdatedAt)

		fetched, err := env.posts.Get(context.Background(), post.ID)
		assert.NoError(t, err)
		assert.Equal(t, post.Title, fetched.Title)
		assert.ElementsMatch(t, env.tagIDs, fetched.TagIDs)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := env.posts.Create(context.Background(), &CreatePostRequest{
			Title:      "Orphaned",
			Content:    "some content",
			CategoryID: uuid.New(),
			TagIDs:     env.tagIDs,
			Status:     StatusDraft,
		}, env.authorID)
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("unknown tag fails the whole call", func(t *testing.T) {
		_, err := env.posts.Create(context.Background(), &CreatePostRequest{
			Title:      "Orphaned",
			Content:    "some content",
			CategoryID: env.categoryID,
			TagIDs:     append([]uuid.UUID{uuid.New()}, env.tagIDs...),
			Status:     StatusDraft,
		}, env.authorID)
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := env.posts.Create(context.Background(), &CreatePostRequest{
			Title:      "Bad Status",
			Content:    "some content",
			CategoryID: env.categoryID,
			TagIDs:     env.tagIDs,
			Status:     Status("ARCHIVED"),
		}, env.authorID)

		var vErr common.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("blank content gets zero reading time", func(t *testing.T) {
		post, err := env.posts.Create(context.Background(), &CreatePostRequest{
			Title:      "Placeholder",
			Content:    " ",
			CategoryID: env.categoryID,
			TagIDs:     nil,
			Status:     StatusDraft,
		}, env.authorID)
		assert.NoError(t, err)
		assert.Equal(t, 0, post.ReadingTime)
	})
}

func TestUpdatePost(t *testing.T) {
	env := setupTestEnvironment(t)

	post := env.createPost(t, StatusDraft, env.tagIDs)

	t.Run("publish with new content", func(t *testing.T) {
		updated, err := env.posts.Update(context.Background(), post.ID, &UpdatePostRequest{
			Title:      "Understanding Indexes, Revised",
			Content:    strings.Repeat("word ", 201),
			CategoryID: env.categoryID,
			TagIDs:     env.tagIDs,
			Status:     StatusPublished,
		})
		assert.NoError(t, err)
		assert.Equal(t, StatusPublished, updated.Status)
		assert.Equal(t, 2, updated.ReadingTime)
		assert.ElementsMatch(t, env.tagIDs, updated.TagIDs)
	})

	t.Run("reordered tag ids keep the same set", func(t *testing.T) {
		reversed := []uuid.UUID{env.tagIDs[1], env.tagIDs[0]}

		updated, err := env.posts.Update(context.Background(), post.ID, &UpdatePostRequest{
			Title:      "Understanding Indexes, Revised",
			Content:    "short update",
			CategoryID: env.categoryID,
			TagIDs:     reversed,
			Status:     StatusPublished,
		})
		assert.NoError(t, err)
		assert.ElementsMatch(t, env.tagIDs, updated.TagIDs)
	})

	t.Run("shrink the tag set", func(t *testing.T) {
		updated, err := env.posts.Update(context.Background(), post.ID, &UpdatePostRequest{
			Title:      "Understanding Indexes, Revised",
			Content:    "short update",
			CategoryID: env.categoryID,
			TagIDs:     env.tagIDs[:1],
			Status:     StatusPublished,
		})
		assert.NoError(t, err)
		assert.ElementsMatch(t, env.tagIDs[:1], updated.TagIDs)

		fetched, err := env.posts.Get(context.Background(), post.ID)
		assert.NoError(t, err)
		assert.ElementsMatch(t, env.tagIDs[:1], fetched.TagIDs)
	})

	t.Run("move to another category", func(t *testing.T) {
		other, err := env.categories.Create(context.Background(), "Science")
		assert.NoError(t, err)

		updated, err := env.posts.Update(context.Background(), post.ID, &UpdatePostRequest{
			Title:      "Understanding Indexes, Revised",
			Content:    "short update",
			CategoryID: other.ID,
			TagIDs:     env.tagIDs[:1],
			Status:     StatusPublished,
		})
		assert.NoError(t, err)
		assert.Equal(t, other.ID, updated.CategoryID)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := env.posts.Update(context.Background(), uuid.New(), &UpdatePostRequest{
			Title:      "Nope",
			Content:    "nope",
			CategoryID: env.categoryID,
			TagIDs:     nil,
			Status:     StatusDraft,
		})
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})
}

func TestListPublished(t *testing.T) {
	env := setupTestEnvironment(t)

	published := env.createPost(t, StatusPublished, env.tagIDs)
	env.createPost(t, StatusPublished, nil)
	env.createPost(t, StatusDraft, env.tagIDs)

	other, err := env.categories.Create(context.Background(), "Science")
	assert.NoError(t, err)

	t.Run("no filters", func(t *testing.T) {
		posts, err := env.posts.ListPublished(context.Background(), nil, nil)
		assert.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("by category", func(t *testing.T) {
		posts, err := env.posts.ListPublished(context.Background(), &env.categoryID, nil)
		assert.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("by tag", func(t *testing.T) {
		posts, err := env.posts.ListPublished(context.Background(), nil, &env.tagIDs[0])
		assert.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, published.ID, posts[0].ID)
	})

	t.Run("by category and tag", func(t *testing.T) {
		posts, err := env.posts.ListPublished(context.Background(), &env.categoryID, &env.tagIDs[0])
		assert.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, published.ID, posts[0].ID)
	})

	t.Run("empty category is not an error", func(t *testing.T) {
		posts, err := env.posts.ListPublished(context.Background(), &other.ID, nil)
		assert.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("unknown category id is an error", func(t *testing.T) {
		unknown := uuid.New()
		_, err := env.posts.ListPublished(context.Background(), &unknown, nil)
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})

	t.Run("unknown tag id is an error", func(t *testing.T) {
		unknown := uuid.New()
		_, err := env.posts.ListPublished(context.Background(), nil, &unknown)
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})
}

func TestListDrafts(t *testing.T) {
	env := setupTestEnvironment(t)

	draft := env.createPost(t, StatusDraft, env.tagIDs)
	env.createPost(t, StatusPublished, env.tagIDs)

	t.Run("only own drafts", func(t *testing.T) {
		posts, err := env.posts.ListDrafts(context.Background(), env.authorID)
		assert.NoError(t, err)
		assert.Len(t, posts, 1)
		assert.Equal(t, draft.ID, posts[0].ID)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := env.posts.ListDrafts(context.Background(), uuid.New())
		assert.ErrorIs(t, err, common.ErrRecordNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	env := setupTestEnvironment(t)

	post := env.createPost(t, StatusPublished, env.tagIDs)

	err := env.posts.Delete(context.Background(), post.ID)
	assert.NoError(t, err)

	_, err = env.posts.Get(context.Background(), post.ID)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)

	err = env.posts.Delete(context.Background(), post.ID)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)

	// tags survive the post
	_, err = env.tags.FindByID(context.Background(), env.tagIDs[0])
	assert.NoError(t, err)
}

func TestSameTagSet(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	testCases := []struct {
		name     string
		x, y     []uuid.UUID
		expected bool
	}{
		{name: "both empty", x: nil, y: []uuid.UUID{}, expected: true},
		{name: "same order", x: []uuid.UUID{a, b}, y: []uuid.UUID{a, b}, expected: true},
		{name: "different order", x: []uuid.UUID{a, b}, y: []uuid.UUID{b, a}, expected: true},
		{name: "duplicates ignored", x: []uuid.UUID{a, a, b}, y: []uuid.UUID{a, b}, expected: true},
		{name: "different member", x: []uuid.UUID{a, b}, y: []uuid.UUID{a, c}, expected: false},
		{name: "subset", x: []uuid.UUID{a, b}, y: []uuid.UUID{a}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sameTagSet(tc.x, tc.y))
		})
	}
}
