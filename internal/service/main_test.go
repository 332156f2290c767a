package service_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TooLazyToCreate/thing-service/config"
	"github.com/TooLazyToCreate/thing-service/internal/model"
	"github.com/TooLazyToCreate/thing-service/internal/repository"
	"github.com/TooLazyToCreate/thing-service/internal/service"
	"github.com/TooLazyToCreate/thing-service/internal/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

/* In-memory repositories with the same contract as the postgres ones:
 * not-found is sql.ErrNoRows, duplicate email is ErrDuplicateEmail. */

type fakeUserRepo struct {
	users []*model.User
}

func (r *fakeUserRepo) Create(user *model.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := *user
	stored.Tokens = append([]model.Token(nil), user.Tokens...)
	r.users = append(r.users, &stored)
	return nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByToken(access, rawToken string) (*model.User, error) {
	for _, user := range r.users {
		for _, t := range user.Tokens {
			if t.Access == access && t.Token == rawToken {
				return copyUser(user), nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) AddToken(userID string, t model.Token) error {
	for _, user := range r.users {
		if user.ID == userID {
			user.Tokens = append(user.Tokens, t)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) RemoveToken(userID string, rawToken string) error {
	for _, user := range r.users {
		if user.ID != userID {
			continue
		}
		for i, t := range user.Tokens {
			if t.Token == rawToken {
				user.Tokens = append(user.Tokens[:i], user.Tokens[i+1:]...)
				return nil
			}
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) byEmail(email string) *model.User {
	for _, user := range r.users {
		if user.Email == email {
			return user
		}
	}
	return nil
}

func copyUser(user *model.User) *model.User {
	copied := *user
	copied.Tokens = append([]model.Token(nil), user.Tokens...)
	return &copied
}

type fakeThingRepo struct {
	things   []*model.Thing
	forceErr error
}

func (r *fakeThingRepo) Create(thing *model.Thing) error {
	if r.forceErr != nil {
		return r.forceErr
	}
	if thing.ID == "" {
		thing.ID = uuid.NewString()
	}
	stored := *thing
	r.things = append(r.things, &stored)
	return nil
}

func (r *fakeThingRepo) ListByCreator(creatorID string) ([]model.Thing, error) {
	if r.forceErr != nil {
		return nil, r.forceErr
	}
	result := make([]model.Thing, 0)
	for _, thing := range r.things {
		if thing.CreatorID == creatorID {
			result = append(result, *thing)
		}
	}
	return result, nil
}

func (r *fakeThingRepo) GetByID(id, creatorID string) (*model.Thing, error) {
	if r.forceErr != nil {
		return nil, r.forceErr
	}
	for _, thing := range r.things {
		if thing.ID == id && thing.CreatorID == creatorID {
			copied := *thing
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeThingRepo) DeleteByID(id, creatorID string) (*model.Thing, error) {
	if r.forceErr != nil {
		return nil, r.forceErr
	}
	for i, thing := range r.things {
		if thing.ID == id && thing.CreatorID == creatorID {
			r.things = append(r.things[:i], r.things[i+1:]...)
			return thing, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeThingRepo) Update(id, creatorID string, props model.Properties, completed bool, completedAt *int64) (*model.Thing, error) {
	if r.forceErr != nil {
		return nil, r.forceErr
	}
	for _, thing := range r.things {
		if thing.ID == id && thing.CreatorID == creatorID {
			if props != nil {
				thing.Properties = props
			}
			thing.Completed = completed
			thing.CompletedAt = completedAt
			copied := *thing
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

/* Test environment seeded like the original fixture set: two users
 * with one live token each, one thing per user. */
type env struct {
	cfg    *config.Config
	users  *fakeUserRepo
	things *fakeThingRepo
	router http.Handler

	userOne, userTwo   *model.User
	tokenOne, tokenTwo string
	thingOne, thingTwo *model.Thing
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{MinPasswordLen: 6, Secret: []byte("test-secret")}
	users := &fakeUserRepo{}
	things := &fakeThingRepo{}
	svc := service.NewService(zap.NewNop(), cfg, users, things)

	e := &env{cfg: cfg, users: users, things: things, router: svc.Routes()}
	e.userOne, e.tokenOne = e.seedUser(t, "andrew@example.com", "userOnePass")
	e.userTwo, e.tokenTwo = e.seedUser(t, "jen@example.com", "userTwoPass")
	e.thingOne = e.seedThing(t, e.userOne.ID, model.Properties{"atoms": []interface{}{"H", "O", "O"}})
	e.thingTwo = e.seedThing(t, e.userTwo.ID, model.Properties{"atoms": []interface{}{"H", "O", "O"}, "state": []interface{}{"liquid"}})
	return e
}

func (e *env) seedUser(t *testing.T, email, password string) (*model.User, string) {
	t.Helper()
	user := &model.User{Email: email}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, e.users.Create(user))
	signed, err := token.Issue(e.cfg.Secret, user.ID)
	require.NoError(t, err)
	require.NoError(t, e.users.AddToken(user.ID, model.Token{Access: token.KindAuth, Token: signed}))
	return user, signed
}

func (e *env) seedThing(t *testing.T, creatorID string, props model.Properties) *model.Thing {
	t.Helper()
	thing := &model.Thing{CreatorID: creatorID, Properties: props}
	require.NoError(t, e.things.Create(thing))
	return thing
}

func (e *env) do(method, path, authToken string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if authToken != "" {
		req.Header.Set(service.AuthHeader, authToken)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func mustIssue(t *testing.T, secret []byte, userID string) string {
	t.Helper()
	signed, err := token.Issue(secret, userID)
	require.NoError(t, err)
	return signed
}

func mustToken(signed string) model.Token {
	return model.Token{Access: token.KindAuth, Token: signed}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

type thingEnvelope struct {
	Thing model.Thing `json:"thing"`
}

type thingListEnvelope struct {
	Thing []model.Thing `json:"thing"`
}
