package repository

import (
	"database/sql"
	"errors"

	"github.com/TooLazyToCreate/thing-service/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type userRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserRepository(logger *zap.Logger, db *sql.DB) UserRepository {
	return &userRepo{
		db:     db,
		logger: logger,
	}
}

func (r *userRepo) Create(user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepo) GetByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, email, password_hash FROM users WHERE email = $1`
	if err := r.db.QueryRow(query, email).Scan(&user.ID, &user.Email, &user.PasswordHash); err != nil {
		return nil, err
	}
	return user, r.loadTokens(user)
}

/* The join is the revocation check: a token that was removed on logout
 * no longer matches any row, whatever its signature says. */
func (r *userRepo) GetByToken(access, token string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT u.id, u.email, u.password_hash FROM users u
		JOIN tokens t ON t.user_id = u.id
		WHERE t.access = $1 AND t.token = $2`
	if err := r.db.QueryRow(query, access, token).Scan(&user.ID, &user.Email, &user.PasswordHash); err != nil {
		return nil, err
	}
	return user, r.loadTokens(user)
}

func (r *userRepo) loadTokens(user *model.User) error {
	rows, err := r.db.Query(`SELECT access, token FROM tokens WHERE user_id = $1 ORDER BY created_at`, user.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var t model.Token
		if err := rows.Scan(&t.Access, &t.Token); err != nil {
			return err
		}
		user.Tokens = append(user.Tokens, t)
	}
	return rows.Err()
}

func (r *userRepo) AddToken(userID string, t model.Token) error {
	_, err := r.db.Exec(`INSERT INTO tokens (user_id, access, token) VALUES ($1, $2, $3)`,
		userID, t.Access, t.Token)
	return err
}

func (r *userRepo) RemoveToken(userID string, token string) error {
	result, err := r.db.Exec(`DELETE FROM tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type thingRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewThingRepository(logger *zap.Logger, db *sql.DB) ThingRepository {
	return &thingRepo{
		db:     db,
		logger: logger,
	}
}

func (r *thingRepo) Create(thing *model.Thing) error {
	if thing.ID == "" {
		thing.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`INSERT INTO things (id, creator_id, properties, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		thing.ID, thing.CreatorID, thing.Properties, thing.Completed, completedAtValue(thing.CompletedAt))
	return err
}

func (r *thingRepo) ListByCreator(creatorID string) ([]model.Thing, error) {
	rows, err := r.db.Query(`SELECT id, creator_id, properties, completed, completed_at
		FROM things WHERE creator_id = $1`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	things := make([]model.Thing, 0)
	for rows.Next() {
		thing, err := scanThing(rows)
		if err != nil {
			return nil, err
		}
		things = append(things, *thing)
	}
	return things, rows.Err()
}

func (r *thingRepo) GetByID(id, creatorID string) (*model.Thing, error) {
	row := r.db.QueryRow(`SELECT id, creator_id, properties, completed, completed_at
		FROM things WHERE id = $1 AND creator_id = $2`, id, creatorID)
	return scanThing(row)
}

func (r *thingRepo) DeleteByID(id, creatorID string) (*model.Thing, error) {
	row := r.db.QueryRow(`DELETE FROM things WHERE id = $1 AND creator_id = $2
		RETURNING id, creator_id, properties, completed, completed_at`, id, creatorID)
	return scanThing(row)
}

/* COALESCE keeps the stored bag when the patch did not carry one;
 * completed/completed_at are always rewritten, matching the legacy
 * patch semantics. */
func (r *thingRepo) Update(id, creatorID string, props model.Properties, completed bool, completedAt *int64) (*model.Thing, error) {
	row := r.db.QueryRow(`UPDATE things
		SET properties = COALESCE($3, properties), completed = $4, completed_at = $5
		WHERE id = $1 AND creator_id = $2
		RETURNING id, creator_id, properties, completed, completed_at`,
		id, creatorID, props, completed, completedAtValue(completedAt))
	return scanThing(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanThing(row rowScanner) (*model.Thing, error) {
	thing := &model.Thing{}
	var completedAt sql.NullInt64
	err := row.Scan(&thing.ID, &thing.CreatorID, &thing.Properties, &thing.Completed, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		thing.CompletedAt = &completedAt.Int64
	}
	return thing, nil
}

func completedAtValue(completedAt *int64) sql.NullInt64 {
	if completedAt == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *completedAt, Valid: true}
}
