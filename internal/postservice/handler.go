package postservice

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

func NewPostService(db *sql.DB, c *common.Cache, categories CategoryResolver, tags TagResolver, users AuthorResolver, clock common.Clock) *PostService {
	return &PostService{
		m:          newPostModel(db),
		c:          c,
		categories: categories,
		tags:       tags,
		users:      users,
		clock:      clock,
	}
}

type CreatePostRequest struct {
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CategoryID uuid.UUID   `json:"category_id"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
	Status     Status      `json:"status"`
}

type UpdatePostRequest struct {
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CategoryID uuid.UUID   `json:"category_id"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
	Status     Status      `json:"status"`
}

// ListPublished returns published posts, optionally narrowed by category
// and tag. The filters combine independently: each of the four shapes is
// dispatched to its own query. A filter id that resolves to nothing is an
// error; an empty result set is not.
func (s *PostService) ListPublished(ctx context.Context, categoryID, tagID *uuid.UUID) ([]Post, error) {
	switch {
	case categoryID != nil && tagID != nil:
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return nil, err
		}
		if _, err := s.tags.FindByID(ctx, *tagID); err != nil {
			return nil, err
		}
		return s.m.listByStatusAndCategoryAndTag(ctx, StatusPublished, *categoryID, *tagID)

	case categoryID != nil:
		if _, err := s.categories.FindByID(ctx, *categoryID); err != nil {
			return nil, err
		}
		return s.m.listByStatusAndCategory(ctx, StatusPublished, *categoryID)

	case tagID != nil:
		if _, err := s.tags.FindByID(ctx, *tagID); err != nil {
			return nil, err
		}
		return s.m.listByStatusAndTag(ctx, StatusPublished, *tagID)

	default:
		return s.m.listByStatus(ctx, StatusPublished)
	}
}

// ListDrafts returns the author's own drafts and nothing else.
func (s *PostService) ListDrafts(ctx context.Context, authorID uuid.UUID) ([]Post, error) {
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, err
	}

	return s.m.listByAuthorAndStatus(ctx, authorID, StatusDraft)
}

// Create resolves the author, category, and full tag set before anything is
// written. Tags are never auto-created here; an unknown tag id fails the
// whole call.
func (s *PostService) Create(ctx context.Context, req *CreatePostRequest, authorID uuid.UUID) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateTagIDs(v, req.TagIDs)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// The caller supplies an authenticated id, so the author lookup is
	// expected to succeed; it still fails closed if the account is gone.
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, err
	}

	if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	tags, err := s.tags.FindManyByIDs(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}

	now := s.clock.Now()

	post := &Post{
		Title:       req.Title,
		Content:     req.Content,
		AuthorID:    authorID,
		CategoryID:  req.CategoryID,
		TagIDs:      tagIDs,
		Status:      req.Status,
		ReadingTime: ReadingTime(req.Content),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := s.m.insert(ctx, tx, post); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return post, nil
}

// Update rewrites the post's content fields. The category is only
// re-resolved when the requested id differs from the current one, and the
// tag set is only replaced when it differs by value from the current set.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, req *UpdatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
	validateTagIDs(v, req.TagIDs)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.CategoryID != req.CategoryID {
		if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = req.CategoryID
	}

	replaceTags := !sameTagSet(post.TagIDs, req.TagIDs)
	if replaceTags {
		tags, err := s.tags.FindManyByIDs(ctx, req.TagIDs)
		if err != nil {
			return nil, err
		}

		tagIDs := make([]uuid.UUID, 0, len(tags))
		for _, t := range tags {
			tagIDs = append(tagIDs, t.ID)
		}
		post.TagIDs = tagIDs
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Status = req.Status
	post.ReadingTime = ReadingTime(req.Content)
	post.UpdatedAt = s.clock.Now()

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if err := s.m.update(ctx, tx, post); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if replaceTags {
		if err := s.m.replaceTags(ctx, tx, post.ID, post.TagIDs); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.c.EvictKey(common.RegionPosts, id.String())

	return post, nil
}

// Get returns a post by its id, cached per id.
func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if cached, ok := s.c.Get(common.RegionPosts, id.String()); ok {
		return cached.(*Post), nil
	}

	post, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.RegionPosts, id.String(), post)

	return post, nil
}

// Delete removes a post by id. Posts have no dependents, so there is no
// usage check.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.c.EvictKey(common.RegionPosts, id.String())

	return nil
}

// sameTagSet compares the two id sets by value, ignoring order and
// duplicates.
func sameTagSet(a, b []uuid.UUID) bool {
	as := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		as[id] = true
	}

	bs := make(map[uuid.UUID]bool, len(b))
	for _, id := range b {
		bs[id] = true
	}

	if len(as) != len(bs) {
		return false
	}

	for id := range as {
		if !bs[id] {
			return false
		}
	}

	return true
}
