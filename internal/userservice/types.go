package userservice

import (
	"database/sql"
	"time"

	"github.com/Markelych32/blog-platform/internal/common"
	"github.com/google/uuid"
)

// TokenTTL is the absolute lifetime of an issued token. There is no refresh
// or rotation: after the TTL lapses the client must authenticate again.
const TokenTTL = 24 * time.Hour

type UserService struct {
	m     *UserModel
	mb    common.MessageProducer
	tm    *tokenMaker
	clock common.Clock
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

type AuthToken struct {
	Token  string    `json:"access_token"`
	Expiry time.Time `json:"expiry"`
}
