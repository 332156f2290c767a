package repository

import (
	"errors"

	"github.com/TooLazyToCreate/thing-service/internal/model"
)

/* Not-found is reported as sql.ErrNoRows by every implementation,
 * including the in-memory fakes used in tests. */
var ErrDuplicateEmail = errors.New("email is already registered")

type UserRepository interface {
	Create(user *model.User) error
	GetByEmail(email string) (*model.User, error)
	GetByToken(access, token string) (*model.User, error)
	AddToken(userID string, t model.Token) error
	RemoveToken(userID string, token string) error
}

type ThingRepository interface {
	Create(thing *model.Thing) error
	ListByCreator(creatorID string) ([]model.Thing, error)
	GetByID(id, creatorID string) (*model.Thing, error)
	/* DeleteByID and Update are atomic find-and-modify operations:
	 * the match on (id, creator_id) and the mutation happen in one
	 * statement, returning the affected document. */
	DeleteByID(id, creatorID string) (*model.Thing, error)
	Update(id, creatorID string, props model.Properties, completed bool, completedAt *int64) (*model.Thing, error)
}
