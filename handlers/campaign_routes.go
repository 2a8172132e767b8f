// handlers/campaign_routes.go
package handlers

import (
	"fmt"
	"time"

	"expeditions-service/middleware"
	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
)

// parseInstant accepts YYYY-MM-DD or RFC3339. Date-only values become the
// start of the day, or its last millisecond when endOfDay is set.
func parseInstant(s string, endOfDay bool) (time.Time, error) {
	if day, err := services.ParseDate(s); err == nil {
		if endOfDay {
			return services.EndOfDay(day), nil
		}
		return day, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", services.ErrInvalidDateFormat, s)
	}
	return t.UTC(), nil
}

func SetupCampaignRoutes(app *fiber.App, campaignService *services.CampaignService, auth Auth) {
	group := app.Group("/expeditions")

	group.Get("/week", func(c *fiber.Ctx) error {
		week, err := services.WeekOf(c.Query("date"), campaignService.Now())
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(week)
	})

	group.Post("/add-campaign", auth.signed(middleware.StaticMessage(services.AddCampaignMessage)), func(c *fiber.Ctx) error {
		var req struct {
			StartDate     string `json:"startDate"`
			EndDate       string `json:"endDate"`
			RedeemEndDate string `json:"redeemEndDate"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}

		start, err := parseInstant(req.StartDate, false)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		end, err := parseInstant(req.EndDate, true)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		redeemEnd, err := parseInstant(req.RedeemEndDate, true)
		if err != nil {
			return respondError(c, auth.Log, err)
		}

		campaign, err := campaignService.AddCampaign(c.UserContext(), signerAddress(c), start, end, redeemEnd)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(campaign)
	})

	group.Get("/campaigns", func(c *fiber.Ctx) error {
		campaigns, err := campaignService.ListCampaigns(c.UserContext())
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(fiber.Map{"campaigns": campaigns})
	})

	group.Delete("/campaigns/:id", auth.service(), func(c *fiber.Ctx) error {
		if err := campaignService.DeleteCampaign(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
