package repository

import (
	"context"
	"errors"

	"feedbacktalent/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, name *string, description *string) error
	ListCompanies(ctx context.Context, limit, offset int) ([]entity.User, error)
	SearchCompanies(ctx context.Context, query string, limit int) ([]entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = true", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = true", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).
		Error
}

// UpdateProfile changes only the fields that were provided; nil means keep.
func (r *userRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, name *string, description *string) error {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(updates).
		Error
}

func (r *userRepository) ListCompanies(ctx context.Context, limit, offset int) ([]entity.User, error) {
	var companies []entity.User
	query := r.db.WithContext(ctx).
		Where("role = ? AND is_active = true", entity.UserRoleCompany).
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *userRepository) SearchCompanies(ctx context.Context, search string, limit int) ([]entity.User, error) {
	if limit <= 0 {
		limit = 20
	}
	var companies []entity.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = true AND name ILIKE ?", entity.UserRoleCompany, "%"+search+"%").
		Order("name ASC").
		Limit(limit).
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}
