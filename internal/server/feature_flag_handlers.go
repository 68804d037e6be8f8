package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags returns the flags evaluated for the current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(map[string]bool{})
	}
	return c.JSON(s.featureFlags.Snapshot(currentUser(c)))
}
