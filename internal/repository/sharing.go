package repository

import (
	"context"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
)

// visibleToSQL is the visibility predicate over the "post" table: the viewer
// authored the post, or the post is shared to a circle the viewer is a
// direct member of. Both placeholders take the viewer id.
const visibleToSQL = `(post.user_id = ? OR EXISTS (
	SELECT 1 FROM post_share
	JOIN circle_member ON circle_member.circle_id = post_share.circle_id
	WHERE post_share.post_id = post.id AND circle_member.user_id = ?))`

// inSharedCircleSQL holds when the viewer belongs to any circle that has at
// least one post shared to it.
const inSharedCircleSQL = `EXISTS (
	SELECT 1 FROM post_share
	JOIN circle_member ON circle_member.circle_id = post_share.circle_id
	WHERE circle_member.user_id = ?)`

// VisibleTo restricts a query over "post" to rows the viewer may see.
func VisibleTo(viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(visibleToSQL, viewerID, viewerID)
	}
}

// SharingGraph answers membership questions about users and circles.
type SharingGraph interface {
	IsMember(ctx context.Context, userID, circleID uint) (bool, error)
	InAnySharedCircle(ctx context.Context, userID uint) (bool, error)
}

type sharingGraph struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewSharingGraph returns a SharingGraph backed by db.
func NewSharingGraph(db *gorm.DB) SharingGraph {
	return &sharingGraph{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (g *sharingGraph) IsMember(ctx context.Context, userID, circleID uint) (bool, error) {
	defer g.metrics.TrackQuery("is_member", "circle_member")()

	var n int64
	err := readDB(g.db).WithContext(ctx).
		Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (g *sharingGraph) InAnySharedCircle(ctx context.Context, userID uint) (bool, error) {
	defer g.metrics.TrackQuery("in_shared_circle", "circle_member")()

	var found bool
	err := readDB(g.db).WithContext(ctx).
		Raw("SELECT "+inSharedCircleSQL, userID).
		Scan(&found).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return found, nil
}
