package service

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts every handler on a fresh router. Signup and login are
// the only routes outside the authenticated group.
func (service *Service) Routes() *chi.Mux {
	router := chi.NewRouter()

	router.Post("/users", service.HandleSignup)
	router.Post("/users/login", service.HandleLogin)

	router.Group(func(r chi.Router) {
		r.Use(service.Authenticate)

		r.Post("/thing", service.HandleCreateThing)
		r.Get("/thing", service.HandleListThings)
		r.Get("/thing/{id}", service.HandleGetThing)
		r.Delete("/thing/{id}", service.HandleDeleteThing)
		r.Patch("/thing/{id}", service.HandlePatchThing)

		r.Get("/users/me", service.HandleMe)
		r.Delete("/users/me/token", service.HandleLogout)
	})

	return router
}
