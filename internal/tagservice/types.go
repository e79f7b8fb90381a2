package tagservice

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/common"
)

// MaxTagNames caps how many names a single resolve-or-create request may carry.
const MaxTagNames = 10

type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TagWithPostCount struct {
	Tag
	PostCount int `json:"post_count"`
}

type TagService struct {
	m *TagModel
	c *common.Cache
}

type TagModel struct {
	db *sql.DB
}
