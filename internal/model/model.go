package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

/* Tokens live in their own table, but at the model level they stay
 * an owned sub-collection of the user: the whole slice is loaded and
 * saved through the user repository. */
type Token struct {
	Access string `json:"access"`
	Token  string `json:"token"`
}

type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Tokens       []Token `json:"-"`
}

/* SetPassword hashes the plaintext exactly once. An already-hashed
 * value is kept as-is, so a re-save can never double-hash. */
func (u *User) SetPassword(plain string) error {
	if strings.HasPrefix(plain, "$2a$") || strings.HasPrefix(plain, "$2b$") {
		u.PasswordHash = plain
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Properties is the schemaless property bag of a thing, stored as JSONB.
type Properties map[string]interface{}

func (p Properties) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *Properties) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported source type for properties")
	}
}

/* Completed/CompletedAt predate the open properties bag and are kept
 * for compatibility with existing clients. CompletedAt is epoch
 * milliseconds, null until completed. */
type Thing struct {
	ID          string     `json:"id"`
	CreatorID   string     `json:"creatorId"`
	Properties  Properties `json:"properties"`
	Completed   bool       `json:"completed"`
	CompletedAt *int64     `json:"completedAt"`
}
