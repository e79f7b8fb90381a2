package categoryservice

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

const listCacheKey = "all"

func NewCategoryService(db *sql.DB, c *common.Cache) *CategoryService {
	return &CategoryService{m: newCategoryModel(db), c: c}
}

// List returns every category with its published-post count. The result is
// cached as a whole and rebuilt on the first read after any write.
func (s *CategoryService) List(ctx context.Context) ([]CategoryWithPostCount, error) {
	if cached, ok := s.c.Get(common.RegionCategories, listCacheKey); ok {
		return cached.([]CategoryWithPostCount), nil
	}

	categories, err := s.m.listWithPublishedCount(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.RegionCategories, listCacheKey, categories)

	return categories, nil
}

// Create adds a new category. The name must not match an existing one,
// compared case-insensitively.
func (s *CategoryService) Create(ctx context.Context, name string) (*Category, error) {
	v := common.NewValidator()
	validateName(v, name)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	// Check-then-insert is a race window; the unique index on LOWER(name)
	// is the true guard and the insert maps its violation to the same error.
	exists, err := s.m.existsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	category, err := s.m.insert(ctx, name)
	if err != nil {
		return nil, err
	}

	s.c.EvictRegion(common.RegionCategories)

	return category, nil
}

// Update renames a category, evicting the list cache and refreshing the
// per-id entry.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*Category, error) {
	v := common.NewValidator()
	validateName(v, name)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	category, err := s.m.updateName(ctx, id, name)
	if err != nil {
		return nil, err
	}

	s.c.EvictRegion(common.RegionCategories)
	s.c.Set(common.RegionCategory, id.String(), category)

	return category, nil
}

// Delete removes a category. It is rejected while any post still references
// the category; deletion never cascades.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
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

	s.c.EvictRegion(common.RegionCategories)
	s.c.EvictKey(common.RegionCategory, id.String())

	return nil
}

// FindByID returns a category by its id, cached per id.
func (s *CategoryService) FindByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	if cached, ok := s.c.Get(common.RegionCategory, id.String()); ok {
		return cached.(*Category), nil
	}

	category, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.RegionCategory, id.String(), category)

	return category, nil
}
