package server

import (
	"errors"

	"innercircle/internal/config"
	"innercircle/internal/files"
	"innercircle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ServeAsset handles GET /assets/*. The requested file is only served when
// the session user may see the media it belongs to; thumbnails share the
// decision of their original.
func (s *Server) ServeAsset(c *fiber.Ctx) error {
	location, err := files.Location(c.Params("*"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid media path"))
	}

	ctx := c.UserContext()
	allowed, err := s.mediaChecker.CheckAccess(ctx, currentUser(c), location)
	if err != nil {
		return respondError(c, err)
	}
	if !allowed {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You do not have access to this file"))
	}

	if s.config.FilesBackend == config.FilesBackendS3 {
		url, err := s.resolver.Resolve(ctx, location)
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		c.Set(fiber.HeaderCacheControl, "private, no-store")
		return c.Redirect(url, fiber.StatusFound)
	}

	path, err := s.store.Path(location)
	switch {
	case errors.Is(err, files.ErrNotFound):
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Media", location))
	case errors.Is(err, files.ErrInvalidPath):
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid media path"))
	case err != nil:
		return respondError(c, models.NewInternalError(err))
	}
	if err := c.SendFile(path); err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return nil
}
