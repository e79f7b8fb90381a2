package tagservice

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

const listCacheKey = "all"

func NewTagService(db *sql.DB, c *common.Cache) *TagService {
	return &TagService{m: newTagModel(db), c: c}
}

// List returns every tag with its published-post count, cached as a whole.
func (s *TagService) List(ctx context.Context) ([]TagWithPostCount, error) {
	if cached, ok := s.c.Get(common.RegionTags, listCacheKey); ok {
		return cached.([]TagWithPostCount), nil
	}

	tags, err := s.m.listWithPublishedCount(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.RegionTags, listCacheKey, tags)

	return tags, nil
}

// ResolveOrCreateByNames looks up the given names and creates only the ones
// not already present, returning the full resulting tag set. Re-submitting
// the same names creates nothing on the second call.
func (s *TagService) ResolveOrCreateByNames(ctx context.Context, names []string) ([]Tag, error) {
	v := common.NewValidator()
	validateNames(v, names)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	existing, err := s.m.findByNameIn(ctx, tx, names)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	existingNames := make(map[string]bool, len(existing))
	for _, t := range existing {
		existingNames[t.Name] = true
	}

	tags := existing
	for _, name := range names {
		if existingNames[name] {
			continue
		}

		tag, err := s.m.insert(ctx, tx, name)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		tags = append(tags, *tag)
		existingNames[name] = true
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.c.EvictRegion(common.RegionTags)

	return tags, nil
}

// Delete removes a tag. It is rejected while any post still references the
// tag; deletion never cascades.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.m.getByID(ctx, id); err != nil {
		return err
	}

	hasPosts, err := s.m.hasPosts(ctx, id)
	if err != nil {
		return err
	}
	if hasPosts {
		return ErrHasPosts
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.c.EvictRegion(common.RegionTags)
	s.c.EvictKey(common.RegionTag, id.String())

	return nil
}

// FindByID returns a tag by its id, cached per id.
func (s *TagService) FindByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	if cached, ok := s.c.Get(common.RegionTag, id.String()); ok {
		return cached.(*Tag), nil
	}

	tag, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.RegionTag, id.String(), tag)

	return tag, nil
}

// FindManyByIDs resolves every id or fails: when any id is absent the whole
// call returns record not found rather than a partial list.
func (s *TagService) FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	unique := make(map[uuid.UUID]bool, len(ids))
	deduped := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !unique[id] {
			unique[id] = true
			deduped = append(deduped, id)
		}
	}

	tags, err := s.m.findManyByIDs(ctx, deduped)
	if err != nil {
		return nil, err
	}

	if len(tags) != len(deduped) {
		return nil, common.ErrRecordNotFound
	}

	return tags, nil
}
