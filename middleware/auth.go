// middleware/auth.go
package middleware

import (
	"strings"

	"expeditions-service/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AddressLocalsKey holds the verified, lowercased signer address.
const AddressLocalsKey = "address"

// MessageFunc returns the text the caller must have signed for this request.
type MessageFunc func(c *fiber.Ctx) (string, error)

// StaticMessage requires the same message on every request.
func StaticMessage(msg string) MessageFunc {
	return func(*fiber.Ctx) (string, error) { return msg, nil }
}

type signedBody struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// SignedAddressMiddleware proves the caller controls the address in the body:
// the personal_sign signature over the route's message must recover to it.
func SignedAddressMiddleware(verifier services.SignatureVerifier, message MessageFunc, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body signedBody
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
				"cause": err.Error(),
			})
		}

		address, err := services.NormalizeAddress(body.Address)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "address is not a valid hex address",
			})
		}
		if strings.TrimSpace(body.Signature) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "signature is required",
			})
		}

		msg, err := message(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		if err := services.VerifySigner(verifier, address, msg, body.Signature); err != nil {
			log.Info("[SIGNED_AUTH] rejected signature",
				zap.String("address", address),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": services.ErrInvalidSignature.Error(),
			})
		}

		c.Locals(AddressLocalsKey, address)
		return c.Next()
	}
}
