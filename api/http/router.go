package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/akorchemkin/sitebase/api/http/handlers"
)

// Register wires all HTTP routes onto the given Fiber app.
func Register(app *fiber.App, auth *handlers.AuthHandler, health *handlers.HealthHandler, requireAuth fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Post("/logout", auth.Logout)
	a.Get("/me", requireAuth, auth.Me)

	u := v1.Group("/users", requireAuth)
	u.Patch("/me", auth.UpdateProfile)
}
