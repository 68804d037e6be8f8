package repository

import (
	"context"
	"time"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRow is one visible post joined with its author.
type PostRow struct {
	ID          uint
	CreatedDate time.Time
	PostText    string
	UserID      uint
	UserName    string
	UserImage   *string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// ListVisible returns up to limit posts visible to viewerID ordered by
	// (created_date DESC, id DESC), restricted to id < *beforeID when set.
	ListVisible(ctx context.Context, viewerID uint, beforeID *uint, limit int) ([]PostRow, error)
	Create(ctx context.Context, post *models.Post) error
	// CreateShared inserts the post and its shares atomically.
	CreateShared(ctx context.Context, post *models.Post, circleIDs []uint) error
	ShareTo(ctx context.Context, postID uint, circleIDs []uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *postRepository) ListVisible(ctx context.Context, viewerID uint, beforeID *uint, limit int) ([]PostRow, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListVisible", "post")
	defer span.End()
	defer r.metrics.TrackQuery("list_visible", "post")()

	q := readDB(r.db).WithContext(ctx).
		Table("post").
		Select("post.id, post.created_date, post.post_text, post.user_id, circle_user.name AS user_name, image.location AS user_image").
		Joins("JOIN circle_user ON circle_user.id = post.user_id").
		Joins("LEFT JOIN image ON image.id = circle_user.image_id")
	q = VisibleTo(viewerID)(q)
	if beforeID != nil {
		q = q.Where("post.id < ?", *beforeID)
		span.SetAttributes(attribute.Int64("feed.before_id", int64(*beforeID)))
	}

	rows := make([]PostRow, 0, limit)
	if err := q.Order("post.created_date DESC, post.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, models.NewInternalError(err)
	}
	span.SetAttributes(attribute.Int("feed.rows", len(rows)))
	return rows, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "post")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) CreateShared(ctx context.Context, post *models.Post, circleIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &postRepository{db: tx, metrics: r.metrics}
		if err := txRepo.Create(ctx, post); err != nil {
			return err
		}
		return txRepo.ShareTo(ctx, post.ID, circleIDs)
	})
}

func (r *postRepository) ShareTo(ctx context.Context, postID uint, circleIDs []uint) error {
	if len(circleIDs) == 0 {
		return nil
	}
	defer r.metrics.TrackQuery("share", "post_share")()

	shares := make([]models.PostShare, 0, len(circleIDs))
	for _, id := range models.NormalizeMembers(circleIDs) {
		shares = append(shares, models.PostShare{PostID: postID, CircleID: id})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&shares).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
