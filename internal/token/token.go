package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"github.com/kataras/jwt"
)

// KindAuth is the only token kind this service issues.
const KindAuth = "auth"

var ErrWrongKind = errors.New("token has wrong kind")

type claims struct {
	UserID string `json:"sub"`
	Access string `json:"access"`
	ID     string `json:"jti"`
}

/* Issue signs a new auth token bound to the user. The random jti keeps
 * tokens issued for the same user distinct, so each login appends its
 * own revocable entry. */
func Issue(secret []byte, userID string) (string, error) {
	jti, err := randomBytes(12)
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(jwt.HS512, secret, claims{
		UserID: userID,
		Access: KindAuth,
		ID:     base64.RawURLEncoding.EncodeToString(jti),
	})
	return string(signed), err
}

/* Verify checks the signature and the "auth" kind and returns the
 * bound user id. It says nothing about revocation: the caller still
 * has to find the token in the user's token list. */
func Verify(secret []byte, raw string) (string, error) {
	verifiedToken, err := jwt.Verify(jwt.HS512, secret, []byte(raw))
	if err != nil {
		return "", err
	}
	var c claims
	if err = verifiedToken.Claims(&c); err != nil {
		return "", err
	}
	if c.Access != KindAuth || c.UserID == "" {
		return "", ErrWrongKind
	}
	return c.UserID, nil
}

func randomBytes(n int) ([]byte, error) {
	bytes := make([]byte, n)
	_, err := io.ReadFull(rand.Reader, bytes)
	return bytes, err
}
