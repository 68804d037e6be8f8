package repository

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
)

// CommentRow is a comment joined with its author.
type CommentRow struct {
	PostID    uint
	Text      string
	UserID    uint
	UserName  string
	UserImage *string
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListLatestByPosts returns, for each post in postIDs, its perPost most
	// recent comments. Rows come back in ascending comment id order.
	ListLatestByPosts(ctx context.Context, postIDs []uint, perPost int) ([]CommentRow, error)
}

type commentRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery("create", "comment")()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

const latestCommentsSQL = `SELECT pc.post_id, pc.comment_text AS text, pc.user_id,
	circle_user.name AS user_name, image.location AS user_image
FROM (
	SELECT comment.id, comment.post_id, comment.user_id, comment.comment_text,
		ROW_NUMBER() OVER (PARTITION BY comment.post_id ORDER BY comment.id DESC) AS r
	FROM comment
	WHERE comment.post_id IN ?
) pc
JOIN circle_user ON circle_user.id = pc.user_id
LEFT JOIN image ON image.id = circle_user.image_id
WHERE pc.r <= ?
ORDER BY pc.id`

func (r *commentRepository) ListLatestByPosts(ctx context.Context, postIDs []uint, perPost int) ([]CommentRow, error) {
	rows := []CommentRow{}
	if len(postIDs) == 0 {
		return rows, nil
	}
	defer r.metrics.TrackQuery("list_latest", "comment")()

	if err := readDB(r.db).WithContext(ctx).Raw(latestCommentsSQL, postIDs, perPost).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}
