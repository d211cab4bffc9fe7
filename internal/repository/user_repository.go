package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db        *gorm.DB
	lockReads bool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) read(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.lockReads {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.read(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.read(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Find lists users matching filter
func (r *GormUserRepository) Find(ctx context.Context, filter Filter, opts database.FindOptions) ([]models.User, error) {
	users := []models.User{}
	query := r.read(ctx).Model(&models.User{})
	if len(filter) > 0 {
		query = query.Where(map[string]any(filter))
	}
	if err := query.Scopes(database.ApplyFindOptions(opts)).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count counts users matching filter
func (r *GormUserRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{})
	if len(filter) > 0 {
		query = query.Where(map[string]any(filter))
	}
	err := query.Count(&count).Error
	return count, err
}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update overwrites the patched columns of one user
func (r *GormUserRepository) Update(ctx context.Context, id string, patch Patch) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any(patch)).Error
}

// Delete removes a user
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
