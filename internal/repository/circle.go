package repository

import (
	"context"
	"errors"
	"fmt"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CircleRepository defines persistence operations for circles and membership.
type CircleRepository interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]models.CircleView, error)
	// OwnedIDs returns the subset of ids that ownerID owns.
	OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error)
	// FindOrCreate returns the owner's circle whose member set equals
	// memberIDs, creating it with its members when absent. The bool reports
	// whether a circle was created.
	FindOrCreate(ctx context.Context, ownerID uint, memberIDs []uint) (*models.Circle, bool, error)
	AddMember(ctx context.Context, circleID, userID uint) error
	ListIDsNotOwnedBy(ctx context.Context, ownerID uint) ([]uint, error)
}

type circleRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCircleRepository returns a CircleRepository backed by db.
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *circleRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.CircleView, error) {
	defer r.metrics.TrackQuery("list_by_owner", "circle")()

	circles := []models.CircleView{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Circle{}).
		Select("id, name").
		Where("owner_id = ?", ownerID).
		Order("id").
		Scan(&circles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

func (r *circleRepository) OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error) {
	owned := []uint{}
	if len(ids) == 0 {
		return owned, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Circle{}).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Order("id").
		Pluck("id", &owned).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return owned, nil
}

func (r *circleRepository) find(ctx context.Context, db *gorm.DB, ownerID uint, key string) (*models.Circle, error) {
	var circle models.Circle
	err := db.WithContext(ctx).
		Where("owner_id = ? AND member_key = ?", ownerID, key).
		First(&circle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *circleRepository) FindOrCreate(ctx context.Context, ownerID uint, memberIDs []uint) (*models.Circle, bool, error) {
	defer r.metrics.TrackQuery("find_or_create", "circle")()

	members := models.NormalizeMembers(memberIDs)
	key := models.MemberKey(members)

	existing, err := r.find(ctx, r.db, ownerID, key)
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	var created models.Circle
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Circle{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
			return err
		}
		created = models.Circle{
			OwnerID:   ownerID,
			Name:      fmt.Sprintf("circle %d", count+1),
			MemberKey: key,
		}
		if err := tx.Omit(clause.Associations).Create(&created).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		rows := make([]models.CircleMember, 0, len(members))
		for _, id := range members {
			rows = append(rows, models.CircleMember{CircleID: created.ID, UserID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		// A concurrent caller created the same circle first.
		if isUniqueConstraintError(err) {
			existing, findErr := r.find(ctx, r.db, ownerID, key)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, models.NewInternalError(err)
	}
	return &created, true, nil
}

func (r *circleRepository) AddMember(ctx context.Context, circleID, userID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CircleMember{CircleID: circleID, UserID: userID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *circleRepository) ListIDsNotOwnedBy(ctx context.Context, ownerID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(&models.Circle{}).
		Where("owner_id <> ?", ownerID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
