package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const clientIPKey = "client_ip"

// ClientIP is a Fiber middleware that records the caller's address in the request locals.
// When a proxy header is configured and carries a list, the first entry is the client.
func ClientIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := utils.CopyString(c.IP())
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		c.Locals(clientIPKey, strings.TrimSpace(ip))
		return c.Next()
	}
}

// ClientIPFrom returns the address stored by ClientIP, or "" when none was recorded.
func ClientIPFrom(c *fiber.Ctx) string {
	ip, _ := c.Locals(clientIPKey).(string)
	return ip
}
