package service

import (
	"context"
	"time"

	"innercircle/internal/models"
	"innercircle/internal/repository"
	"innercircle/internal/validation"
)

type PostService struct {
	postRepo   repository.PostRepository
	circleRepo repository.CircleRepository
	now        func() time.Time
}

type CreatePostInput struct {
	UserID    uint
	Text      string
	CircleIDs []uint
}

func NewPostService(postRepo repository.PostRepository, circleRepo repository.CircleRepository) *PostService {
	return &PostService{postRepo: postRepo, circleRepo: circleRepo, now: time.Now}
}

// CreatePost stores a post dated today and shares it to the given circles,
// all of which must be owned by the author.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	circleIDs := models.NormalizeMembers(in.CircleIDs)
	if err := validation.ValidateCircleIDs(circleIDs); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	owned, err := s.circleRepo.OwnedIDs(ctx, in.UserID, circleIDs)
	if err != nil {
		return nil, err
	}
	if len(owned) != len(circleIDs) {
		return nil, models.NewValidationError("Posts can only be shared to your own circles")
	}

	now := s.now().UTC()
	post := &models.Post{
		UserID:      in.UserID,
		Text:        in.Text,
		CreatedDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := s.postRepo.CreateShared(ctx, post, owned); err != nil {
		return nil, err
	}
	return post, nil
}
