package categoryservice

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategoryWithPostCount carries the published-post count derived by the list
// query. Drafts never contribute to the count.
type CategoryWithPostCount struct {
	Category
	PostCount int `json:"post_count"`
}

type CategoryService struct {
	m *CategoryModel
	c *common.Cache
}

type CategoryModel struct {
	db *sql.DB
}
