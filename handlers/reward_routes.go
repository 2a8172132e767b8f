// handlers/reward_routes.go
package handlers

import (
	"errors"

	"expeditions-service/models"
	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
)

// tokenMessage makes a reward claim signature cover the token id.
func tokenMessage(c *fiber.Ctx) (string, error) {
	var req struct {
		TokenID string `json:"tokenId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return "", err
	}
	if req.TokenID == "" {
		return "", errors.New("tokenId is required")
	}
	return req.TokenID, nil
}

func SetupRewardRoutes(app *fiber.App, rewardService *services.RewardService, campaignService *services.CampaignService, auth Auth) {
	group := app.Group("/expeditions")

	group.Get("/rewards", func(c *fiber.Ctx) error {
		campaign, err := campaignService.ActiveCampaign(c.UserContext())
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		rewards, err := rewardService.ActiveRewards(c.UserContext(), campaign.ID)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(fiber.Map{"rewards": rewards})
	})

	group.Post("/rewards", auth.service(), func(c *fiber.Ctx) error {
		var req struct {
			CampaignID        string        `json:"campaignId"`
			NFTAddress        string        `json:"nftAddress"`
			TokenID           string        `json:"tokenId"`
			Name              string        `json:"name"`
			Description       string        `json:"description"`
			RequiredFragments int           `json:"requiredFragments"`
			Rarity            models.Rarity `json:"rarity"`
			ImageURI          string        `json:"imageURI"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}

		if req.CampaignID == "" {
			campaign, err := campaignService.ActiveCampaign(c.UserContext())
			if err != nil {
				return respondError(c, auth.Log, err)
			}
			req.CampaignID = campaign.ID
		}

		reward := &models.Reward{
			CampaignID:        req.CampaignID,
			NFTAddress:        req.NFTAddress,
			TokenID:           req.TokenID,
			Name:              req.Name,
			Description:       req.Description,
			RequiredFragments: req.RequiredFragments,
			Rarity:            req.Rarity,
			ImageURI:          req.ImageURI,
		}
		if err := rewardService.AddReward(c.UserContext(), reward); err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	group.Post("/claim-reward", auth.signed(tokenMessage), func(c *fiber.Ctx) error {
		var req struct {
			TokenID string `json:"tokenId"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body", err)
		}
		campaign, err := campaignService.ActiveCampaign(c.UserContext())
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		result, err := rewardService.ClaimReward(c.UserContext(), signerAddress(c), campaign.ID, req.TokenID)
		if err != nil {
			return respondError(c, auth.Log, err)
		}
		return c.JSON(result)
	})
}
