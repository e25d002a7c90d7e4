package middleware

import (
	"log"
	"time"

	"Motorhouse/Models"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request: method, path, status,
// latency and the acting user when known.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		username := "-"
		if u, ok := c.Locals("user").(Models.User); ok {
			username = u.Username
		}

		log.Printf("%s %s -> %d (%s) user=%s",
			c.Method(), c.Path(), status, time.Since(start).Round(time.Millisecond), username)

		return err
	}
}
