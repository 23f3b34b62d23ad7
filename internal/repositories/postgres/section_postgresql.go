package postgres

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type SectionPostgreSQL struct {
	db *gorm.DB
}

func NewSectionPostgreSQL(db *gorm.DB) repositories.SectionRepository {
	return &SectionPostgreSQL{db: db}
}

func (s *SectionPostgreSQL) Create(ctx context.Context, section *models.Section) error {
	return s.db.WithContext(ctx).Create(section).Error
}

func (s *SectionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	var section models.Section
	err := s.db.WithContext(ctx).First(&section, id).Error
	if err != nil {
		return nil, err
	}

	s.countStudents(ctx, &section)
	return &section, nil
}

func (s *SectionPostgreSQL) GetByCode(ctx context.Context, code string) (*models.Section, error) {
	var section models.Section
	err := s.db.WithContext(ctx).First(&section, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (s *SectionPostgreSQL) List(ctx context.Context, activeOnly bool) ([]*models.Section, error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var sections []*models.Section
	err := query.Order("name ASC").Find(&sections).Error
	if err != nil {
		return nil, err
	}

	for _, section := range sections {
		s.countStudents(ctx, section)
	}
	return sections, nil
}

func (s *SectionPostgreSQL) Update(ctx context.Context, section *models.Section) error {
	return s.db.WithContext(ctx).
		Model(section).
		Select("name", "code").
		Updates(section).Error
}

// Deactivate closes a section and takes its students with it, inside one
// transaction
func (s *SectionPostgreSQL) Deactivate(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

// Restore reopens a section and reactivates its students
func (s *SectionPostgreSQL) Restore(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *SectionPostgreSQL) setActive(ctx context.Context, id uint, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Section{}).
			Where("id = ?", id).
			Update("is_active", active)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&models.User{}).
			Where("section_id = ? AND role = ?", id, models.RoleStudent).
			Update("is_active", active).Error
	})
}

func (s *SectionPostgreSQL) ExistsByCode(ctx context.Context, code string, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Section{}).
		Where("code = ?", code)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (s *SectionPostgreSQL) countStudents(ctx context.Context, section *models.Section) {
	var count int64
	s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("section_id = ? AND role = ?", section.ID, models.RoleStudent).
		Count(&count)
	section.StudentCount = int(count)
}
