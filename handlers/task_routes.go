// handlers/task_routes.go
package handlers

import (
	"fmt"

	"expeditions-service/models"
	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// taskMessage makes a claim signature cover the task type being claimed.
func taskMessage(c *fiber.Ctx) (string, error) {
	var req struct {
		Type models.TaskType `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	if !req.Type.Valid() {
		return "", fmt.Errorf("%w: %q", services.ErrUnknownTaskType, req.Type)
	}
	return string(req.Type), nil
}

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService, progressService *services.ProgressService, auth Auth) {
	group := app.Group("/expeditions")

	group.Get("/progress", func(c *fiber.Ctx) error {
		address, err := services.NormalizeAddress(c.Query("address"))
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		progress, err := progressService.GetCampaignProgress(c.UserContext(), address)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(progress)
	})

	group.Post("/claim", auth.signed(taskMessage), func(c *fiber.Ctx) error {
		var req struct {
			Type models.TaskType `json:"type"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		result, err := taskService.Claim(c.UserContext(), signerAddress(c), req.Type)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(result)
	})

	group.Post("/daily-swaps", auth.service(), func(c *fiber.Ctx) error {
		var req struct {
			Address       string          `json:"address"`
			TradeUSDValue decimal.Decimal `json:"tradeUSDValue"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		address, err := services.NormalizeAddress(req.Address)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		result, err := taskService.RegisterDailySwap(c.UserContext(), address, req.TradeUSDValue)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(result)
	})
}
