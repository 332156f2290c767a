package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TooLazyToCreate/thing-service/config"
	"github.com/TooLazyToCreate/thing-service/internal/model"
	"github.com/TooLazyToCreate/thing-service/internal/repository"
	"go.uber.org/zap"
)

type Service struct {
	logger *zap.Logger
	cfg    *config.Config
	users  repository.UserRepository
	things repository.ThingRepository
}

func NewService(logger *zap.Logger, cfg *config.Config, users repository.UserRepository, things repository.ThingRepository) *Service {
	return &Service{
		logger,
		cfg,
		users,
		things,
	}
}

type contextKey int

const (
	userContextKey contextKey = iota
	tokenContextKey
)

/* requestUser and requestToken only make sense behind Authenticate,
 * which always puts both values into the context. */
func requestUser(req *http.Request) *model.User {
	return req.Context().Value(userContextKey).(*model.User)
}

func requestToken(req *http.Request) string {
	return req.Context().Value(tokenContextKey).(string)
}

func withAuth(ctx context.Context, user *model.User, rawToken string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, rawToken)
}

func (service *Service) writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		service.logger.Error("JSON failure", zap.Error(err))
	}
}
