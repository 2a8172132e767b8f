package handlers

import (
	"expeditions-service/middleware"
	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Auth bundles what the route guards need.
type Auth struct {
	Verifier     services.SignatureVerifier
	ServiceToken string
	Log          *zap.Logger
}

func (a Auth) signed(message middleware.MessageFunc) fiber.Handler {
	return middleware.SignedAddressMiddleware(a.Verifier, message, a.Log)
}

func (a Auth) service() fiber.Handler {
	return middleware.ServiceTokenMiddleware(a.ServiceToken, a.Log)
}

func signerAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals(middleware.AddressLocalsKey).(string)
	return addr
}
