package service

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/observability"
	"innercircle/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// MediaAccessChecker decides whether a user may fetch a stored file.
type MediaAccessChecker struct {
	media repository.MediaRepository
}

func NewMediaAccessChecker(media repository.MediaRepository) *MediaAccessChecker {
	return &MediaAccessChecker{media: media}
}

// CheckAccess reports whether userID may fetch location. Thumbnails get the
// decision of the media they belong to.
//
// Profile pictures are deliberately broad: any user who belongs to a circle
// that has something shared to it may see every profile picture, and a
// user may always see their own.
func (s *MediaAccessChecker) CheckAccess(ctx context.Context, userID uint, location string) (bool, error) {
	kind, primary := models.ClassifyMedia(location)

	span, ctx := observability.NewSpan(ctx, "MediaAccessChecker.CheckAccess")
	defer span.End()
	span.AddAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.String("media.kind", string(kind)),
	)

	var (
		allowed bool
		err     error
	)
	switch kind {
	case models.MediaProfilePicture:
		allowed, err = s.media.ProfilePictureVisible(ctx, userID, primary)
	case models.MediaVideo:
		allowed, err = s.media.PostVideoVisible(ctx, userID, primary)
	default:
		allowed, err = s.media.PostImageVisible(ctx, userID, primary)
	}

	switch {
	case err != nil:
		span.SetError(err)
		observability.RecordMediaDecision(string(kind), observability.DecisionError)
		return false, err
	case allowed:
		observability.RecordMediaDecision(string(kind), observability.DecisionAllow)
	default:
		observability.RecordMediaDecision(string(kind), observability.DecisionDeny)
	}
	span.AddAttributes(attribute.Bool("media.allowed", allowed))
	return allowed, nil
}
