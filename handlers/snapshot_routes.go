package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// SnapshotRunner exports standings on demand.
type SnapshotRunner interface {
	RunOnce(ctx context.Context) (string, error)
}

func SetupSnapshotRoutes(app *fiber.App, runner SnapshotRunner, auth Auth) {
	app.Post("/expeditions/snapshots", auth.service(), func(c *fiber.Ctx) error {
		url, err := runner.RunOnce(c.UserContext())
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
	})
}
