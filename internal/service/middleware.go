package service

import (
	"net/http"

	"github.com/TooLazyToCreate/thing-service/internal/token"
	"go.uber.org/zap"
)

// AuthHeader carries the signed token on requests and on signup/login responses.
const AuthHeader = "x-auth"

/* Authenticate resolves the x-auth token to a user. Verification is
 * read-only; every failure ends the request with a bare 401. */
func (service *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rawToken := req.Header.Get(AuthHeader)
		if rawToken == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		/* Check the signature and kind before touching the store */
		userID, err := token.Verify(service.cfg.Secret, rawToken)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			service.logger.Debug("Token verification failed", zap.Error(err), zap.String("ip", req.RemoteAddr))
			return
		}

		/* The token must still be in the user's token list, otherwise
		 * it has been revoked by logout */
		user, err := service.users.GetByToken(token.KindAuth, rawToken)
		if err != nil || user.ID != userID {
			w.WriteHeader(http.StatusUnauthorized)
			service.logger.Debug("Token is not attached to a user",
				zap.String("ip", req.RemoteAddr),
				zap.String("user_id", userID))
			return
		}

		next.ServeHTTP(w, req.WithContext(withAuth(req.Context(), user, rawToken)))
	})
}
