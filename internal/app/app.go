package app

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/TooLazyToCreate/thing-service/config"
	"github.com/TooLazyToCreate/thing-service/internal/repository"
	"github.com/TooLazyToCreate/thing-service/internal/repository/migrations"
	"github.com/TooLazyToCreate/thing-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func Run(logger *zap.Logger, cfg *config.Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseUrl)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	} else {
		logger.Info("Connected to database")
	}
	defer func() {
		err := db.Close()
		if err != nil {
			logger.Error("Connection to database was closed with error", zap.Error(err))
		}
	}()

	/* Bring the schema up to date before taking traffic */
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(logger, db)
	thingRepo := repository.NewThingRepository(logger, db)
	svc := service.NewService(logger, cfg, userRepo, thingRepo)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)

	/* Attach our own request logger in debug mode */
	if cfg.Env == "DEV" {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Debug("Request to "+r.RequestURI, zap.String("ip", r.RemoteAddr))
				next.ServeHTTP(w, r)
			})
		})
	}

	router.Mount("/", svc.Routes())

	serverAddress := cfg.Host + ":" + strconv.Itoa(cfg.Port)

	logger.Info("Will serve on " + serverAddress)
	return http.ListenAndServe(serverAddress, router)
}
