package handlers

import (
	"errors"

	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps business outcomes to 4xx. Everything else is a 5xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidDateFormat),
		errors.Is(err, services.ErrInvalidCampaignWindow),
		errors.Is(err, services.ErrUnknownTaskType),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrInvalidTradeValue),
		errors.Is(err, services.ErrInvalidRewardDef):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUnauthorizedInitiator):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNoActiveCampaign),
		errors.Is(err, services.ErrRewardNotFound),
		errors.Is(err, services.ErrCampaignNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrOverlappingCampaign),
		errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrDailyVisitAlreadyRecorded),
		errors.Is(err, services.ErrRewardExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrCampaignEnded),
		errors.Is(err, services.ErrNoClaimableFragments),
		errors.Is(err, services.ErrInsufficientFragments):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
			"cause": err.Error(),
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string, cause error) error {
	body := fiber.Map{"error": msg}
	if cause != nil {
		body["cause"] = cause.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}
