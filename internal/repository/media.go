package repository

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
)

// MediaRepository stores media rows and answers per-viewer access questions.
type MediaRepository interface {
	CreateImage(ctx context.Context, image *models.Image) error
	CreateVideo(ctx context.Context, video *models.Video) error
	// ProfilePictureVisible holds when location is the profile picture of
	// the viewer, or of any user while the viewer belongs to a circle that
	// has posts shared to it.
	ProfilePictureVisible(ctx context.Context, viewerID uint, location string) (bool, error)
	// PostImageVisible holds when location is attached to a post the viewer may see.
	PostImageVisible(ctx context.Context, viewerID uint, location string) (bool, error)
	// PostVideoVisible holds when location is attached to a post the viewer may see.
	PostVideoVisible(ctx context.Context, viewerID uint, location string) (bool, error)
}

type mediaRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewMediaRepository returns a MediaRepository backed by db.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *mediaRepository) CreateImage(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mediaRepository) ProfilePictureVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	defer r.metrics.TrackQuery("profile_visible", "circle_user")()

	var n int64
	err := readDB(r.db).WithContext(ctx).
		Table("circle_user").
		Joins("JOIN image ON image.id = circle_user.image_id").
		Where("image.location = ?", location).
		Where("(circle_user.id = ? OR "+inSharedCircleSQL+")", viewerID, viewerID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *mediaRepository) PostImageVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	return r.attachedVisible(ctx, "image", "post_image", "image_id", viewerID, location)
}

func (r *mediaRepository) PostVideoVisible(ctx context.Context, viewerID uint, location string) (bool, error) {
	return r.attachedVisible(ctx, "video", "post_video", "video_id", viewerID, location)
}

func (r *mediaRepository) attachedVisible(ctx context.Context, mediaTable, joinTable, fk string, viewerID uint, location string) (bool, error) {
	defer r.metrics.TrackQuery("attached_visible", mediaTable)()

	var n int64
	q := readDB(r.db).WithContext(ctx).
		Table(mediaTable).
		Joins("JOIN "+joinTable+" ON "+joinTable+"."+fk+" = "+mediaTable+".id").
		Joins("JOIN post ON post.id = "+joinTable+".post_id").
		Where(mediaTable+".location = ?", location)
	err := VisibleTo(viewerID)(q).Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
