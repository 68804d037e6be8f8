package repository

import (
	"context"
	"errors"

	"innercircle/internal/models"
	"innercircle/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByEmail returns nil, nil when no user has the address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns every user ordered by name, email, id.
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	// SetEmailByName assigns email to every user called name and reports how
	// many rows changed.
	SetEmailByName(ctx context.Context, name, email string) (int64, error)
}

type userRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, metrics: observability.NewDatabaseMetrics()}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_id", "circle_user")()

	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_email", "circle_user")()

	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	defer r.metrics.TrackQuery("list", "circle_user")()

	users := []models.User{}
	if err := readDB(r.db).WithContext(ctx).Order("name, email, id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) SetEmailByName(ctx context.Context, name, email string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("name = ?", name).Update("email", email)
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return 0, models.NewValidationError("Email already assigned to another user")
		}
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
