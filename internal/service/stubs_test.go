package service

import (
	"context"
	"errors"

	"innercircle/internal/models"
	"innercircle/internal/repository"
)

var errStorage = errors.New("connection refused")

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listVisibleFn  func(context.Context, uint, *uint, int) ([]repository.PostRow, error)
	createFn       func(context.Context, *models.Post) error
	createSharedFn func(context.Context, *models.Post, []uint) error
	shareToFn      func(context.Context, uint, []uint) error
}

func (s *postRepoStub) ListVisible(ctx context.Context, viewerID uint, beforeID *uint, limit int) ([]repository.PostRow, error) {
	return s.listVisibleFn(ctx, viewerID, beforeID, limit)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) CreateShared(ctx context.Context, post *models.Post, circleIDs []uint) error {
	return s.createSharedFn(ctx, post, circleIDs)
}
func (s *postRepoStub) ShareTo(ctx context.Context, postID uint, circleIDs []uint) error {
	return s.shareToFn(ctx, postID, circleIDs)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	listLatestFn func(context.Context, []uint, int) ([]repository.CommentRow, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) ListLatestByPosts(ctx context.Context, postIDs []uint, perPost int) ([]repository.CommentRow, error) {
	return s.listLatestFn(ctx, postIDs, perPost)
}

// attachmentRepoStub is a stub for repository.AttachmentRepository.
type attachmentRepoStub struct {
	imagesFn func(context.Context, []uint) ([]repository.AttachmentRow, error)
	videosFn func(context.Context, []uint) ([]repository.AttachmentRow, error)
}

func (s *attachmentRepoStub) ListImagesByPosts(ctx context.Context, ids []uint) ([]repository.AttachmentRow, error) {
	return s.imagesFn(ctx, ids)
}
func (s *attachmentRepoStub) ListVideosByPosts(ctx context.Context, ids []uint) ([]repository.AttachmentRow, error) {
	return s.videosFn(ctx, ids)
}
func (s *attachmentRepoStub) AttachImage(context.Context, uint, uint) error { return nil }
func (s *attachmentRepoStub) AttachVideo(context.Context, uint, uint) error { return nil }

// mediaRepoStub is a stub for repository.MediaRepository.
type mediaRepoStub struct {
	profileFn func(context.Context, uint, string) (bool, error)
	imageFn   func(context.Context, uint, string) (bool, error)
	videoFn   func(context.Context, uint, string) (bool, error)
}

func (s *mediaRepoStub) CreateImage(context.Context, *models.Image) error { return nil }
func (s *mediaRepoStub) CreateVideo(context.Context, *models.Video) error { return nil }
func (s *mediaRepoStub) ProfilePictureVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	return s.profileFn(ctx, viewerID, location)
}
func (s *mediaRepoStub) PostImageVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	return s.imageFn(ctx, viewerID, location)
}
func (s *mediaRepoStub) PostVideoVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	return s.videoFn(ctx, viewerID, location)
}

// circleRepoStub is a stub for repository.CircleRepository.
type circleRepoStub struct {
	listByOwnerFn  func(context.Context, uint) ([]models.CircleView, error)
	ownedIDsFn     func(context.Context, uint, []uint) ([]uint, error)
	findOrCreateFn func(context.Context, uint, []uint) (*models.Circle, bool, error)
}

func (s *circleRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]models.CircleView, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *circleRepoStub) OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error) {
	return s.ownedIDsFn(ctx, ownerID, ids)
}
func (s *circleRepoStub) FindOrCreate(ctx context.Context, ownerID uint, members []uint) (*models.Circle, bool, error) {
	return s.findOrCreateFn(ctx, ownerID, members)
}
func (s *circleRepoStub) AddMember(context.Context, uint, uint) error            { return nil }
func (s *circleRepoStub) ListIDsNotOwnedBy(context.Context, uint) ([]uint, error) { return nil, nil }

// resolverStub fails for one location.
type resolverStub struct {
	failOn string
}

func (r resolverStub) Resolve(_ context.Context, location string) (string, error) {
	if location == r.failOn {
		return "", errors.New("presign failed")
	}
	return "https://cdn.test/" + location, nil
}
