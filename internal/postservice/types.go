package postservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Markelych32/blog-platform/internal/categoryservice"
	"github.com/Markelych32/blog-platform/internal/common"
	"github.com/Markelych32/blog-platform/internal/tagservice"
	"github.com/Markelych32/blog-platform/internal/userservice"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// MaxTagsPerPost caps the tag set a single create or update request may carry.
const MaxTagsPerPost = 10

type Post struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	AuthorID    uuid.UUID   `json:"author_id"`
	CategoryID  uuid.UUID   `json:"category_id"`
	TagIDs      []uuid.UUID `json:"tag_ids"`
	Status      Status      `json:"status"`
	ReadingTime int         `json:"reading_time"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// The post service resolves references through the taxonomy and user
// services rather than querying their tables itself.
type CategoryResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*categoryservice.Category, error)
}

type TagResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*tagservice.Tag, error)
	FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]tagservice.Tag, error)
}

type AuthorResolver interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*userservice.User, error)
}

type PostService struct {
	m          *PostModel
	c          *common.Cache
	categories CategoryResolver
	tags       TagResolver
	users      AuthorResolver
	clock      common.Clock
}

type PostModel struct {
	db *sql.DB
}
