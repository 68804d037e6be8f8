package repository

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttachmentRow is an image or video attached to a post.
type AttachmentRow struct {
	PostID   uint
	ID       uint
	Location string
	Source   *string
}

// AttachmentRepository reads and writes post images and videos.
type AttachmentRepository interface {
	// ListImagesByPosts returns images for postIDs in attachment order.
	ListImagesByPosts(ctx context.Context, postIDs []uint) ([]AttachmentRow, error)
	// ListVideosByPosts returns videos for postIDs in attachment order.
	ListVideosByPosts(ctx context.Context, postIDs []uint) ([]AttachmentRow, error)
	AttachImage(ctx context.Context, postID, imageID uint) error
	AttachVideo(ctx context.Context, postID, videoID uint) error
}

type attachmentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewAttachmentRepository returns an AttachmentRepository backed by db.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *attachmentRepository) ListImagesByPosts(ctx context.Context, postIDs []uint) ([]AttachmentRow, error) {
	return r.list(ctx, "post_image", "image", "image_id", postIDs)
}

func (r *attachmentRepository) ListVideosByPosts(ctx context.Context, postIDs []uint) ([]AttachmentRow, error) {
	return r.list(ctx, "post_video", "video", "video_id", postIDs)
}

func (r *attachmentRepository) list(ctx context.Context, joinTable, mediaTable, fk string, postIDs []uint) ([]AttachmentRow, error) {
	rows := []AttachmentRow{}
	if len(postIDs) == 0 {
		return rows, nil
	}
	defer r.metrics.TrackQuery("list_by_posts", joinTable)()

	err := readDB(r.db).WithContext(ctx).
		Table(joinTable).
		Select(joinTable+".post_id, "+mediaTable+".id, "+mediaTable+".location, "+mediaTable+".source").
		Joins("JOIN "+mediaTable+" ON "+mediaTable+".id = "+joinTable+"."+fk).
		Where(joinTable+".post_id IN ?", postIDs).
		Order(joinTable + ".id").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *attachmentRepository) AttachImage(ctx context.Context, postID, imageID uint) error {
	return r.attach(ctx, &models.PostImage{PostID: postID, ImageID: imageID})
}

func (r *attachmentRepository) AttachVideo(ctx context.Context, postID, videoID uint) error {
	return r.attach(ctx, &models.PostVideo{PostID: postID, VideoID: videoID})
}

func (r *attachmentRepository) attach(ctx context.Context, row interface{}) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
