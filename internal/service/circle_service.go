package service

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/repository"
)

type CircleService struct {
	circleRepo repository.CircleRepository
}

func NewCircleService(circleRepo repository.CircleRepository) *CircleService {
	return &CircleService{circleRepo: circleRepo}
}

// ListCircles returns the circles owned by userID.
func (s *CircleService) ListCircles(ctx context.Context, userID uint) ([]models.CircleView, error) {
	return s.circleRepo.ListByOwner(ctx, userID)
}

// CircleFor returns the owner's circle with exactly memberIDs, creating it
// when no such circle exists yet.
func (s *CircleService) CircleFor(ctx context.Context, ownerID uint, memberIDs []uint) (*models.Circle, error) {
	members := models.NormalizeMembers(memberIDs)
	if len(members) == 0 {
		return nil, models.NewValidationError("A circle needs at least one member")
	}
	circle, _, err := s.circleRepo.FindOrCreate(ctx, ownerID, members)
	return circle, err
}
