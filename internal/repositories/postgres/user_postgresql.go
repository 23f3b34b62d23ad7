package postgres

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Preload("Section").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Preload("Section").
		First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var users []*models.User
	err := u.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).
		Model(user).
		Select("full_name", "role", "section_id", "is_active").
		Updates(user).Error
}

// GetStudentsBySection retrieves a section's roster ordered by name
func (u *UserPostgreSQL) GetStudentsBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.User, error) {
	query := u.db.WithContext(ctx).
		Where("section_id = ? AND role = ?", sectionID, models.RoleStudent)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var students []*models.User
	err := query.Order("full_name ASC").Find(&students).Error
	return students, err
}

func (u *UserPostgreSQL) CountStudentsBySections(ctx context.Context, sectionIDs []uint, activeOnly bool) (int64, error) {
	query := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("section_id IN ? AND role = ?", sectionIDs, models.RoleStudent)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (u *UserPostgreSQL) SetActive(ctx context.Context, id string, active bool) error {
	result := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetActiveBySection flips every student in the section, used when a section
// is deactivated or restored
func (u *UserPostgreSQL) SetActiveBySection(ctx context.Context, sectionID uint, active bool) error {
	return u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("section_id = ? AND role = ?", sectionID, models.RoleStudent).
		Update("is_active", active).Error
}

func (u *UserPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", id, role).
		Count(&count).Error
	return count > 0, err
}
