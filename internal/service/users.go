package service

import (
	"encoding/json"
	"net/http"

	"github.com/TooLazyToCreate/thing-service/internal/model"
	"github.com/TooLazyToCreate/thing-service/internal/token"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.uber.org/zap"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p credentialsPayload) Validate(minPasswordLen int) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(minPasswordLen, 0)),
	)
}

/* issueToken mints a fresh auth token, appends it to the user's token
 * list and mirrors it into the x-auth response header. Shared by
 * signup and login. */
func (service *Service) issueToken(user *model.User, w http.ResponseWriter, req *http.Request) bool {
	signed, err := token.Issue(service.cfg.Secret, user.ID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to generate token", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("user_id", user.ID))
		return false
	}
	authToken := model.Token{Access: token.KindAuth, Token: signed}
	if err = service.users.AddToken(user.ID, authToken); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to persist token", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("user_id", user.ID))
		return false
	}
	user.Tokens = append(user.Tokens, authToken)
	w.Header().Set(AuthHeader, signed)
	return true
}

func (service *Service) HandleSignup(w http.ResponseWriter, req *http.Request) {
	/* Parse and validate the credentials */
	payload := credentialsPayload{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}
	if err := payload.Validate(service.cfg.MinPasswordLen); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		service.logger.Debug("Signup validation failed", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}

	/* Hash the password before anything is persisted */
	user := &model.User{Email: payload.Email}
	if err := user.SetPassword(payload.Password); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to generate bcrypt hash", zap.Error(err))
		return
	}

	/* A duplicate email is a validation failure from the caller's
	 * point of view, same 400 class */
	if err := service.users.Create(user); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		service.logger.Debug("Failed to create user", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("email", payload.Email))
		return
	}

	if service.issueToken(user, w, req) {
		service.writeJSON(w, user)
	}
}

func (service *Service) HandleLogin(w http.ResponseWriter, req *http.Request) {
	payload := credentialsPayload{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}

	/* Unknown email and wrong password are indistinguishable to the
	 * caller: empty 400 either way */
	user, err := service.users.GetByEmail(payload.Email)
	if err != nil || !user.VerifyPassword(payload.Password) {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Debug("Login rejected",
			zap.String("ip", req.RemoteAddr),
			zap.String("email", payload.Email))
		return
	}

	if service.issueToken(user, w, req) {
		service.writeJSON(w, user)
	}
}

/* HandleLogout revokes exactly the token that authenticated this
 * request; other sessions of the same user stay valid. Responds with
 * a status only, unlike the original service which leaked the numeric
 * status into the body. */
func (service *Service) HandleLogout(w http.ResponseWriter, req *http.Request) {
	user := requestUser(req)
	if err := service.users.RemoveToken(user.ID, requestToken(req)); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to remove token", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("user_id", user.ID))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (service *Service) HandleMe(w http.ResponseWriter, req *http.Request) {
	service.writeJSON(w, requestUser(req))
}
