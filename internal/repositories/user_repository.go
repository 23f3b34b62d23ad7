package repositories

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/models"
)

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error

	// Roster queries
	GetStudentsBySection(ctx context.Context, sectionID uint, activeOnly bool) ([]*models.User, error)
	CountStudentsBySections(ctx context.Context, sectionIDs []uint, activeOnly bool) (int64, error)

	// Status management
	SetActive(ctx context.Context, id string, active bool) error
	SetActiveBySection(ctx context.Context, sectionID uint, active bool) error

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}

// SectionRepository interface for class section operations
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	GetByID(ctx context.Context, id uint) (*models.Section, error)
	GetByCode(ctx context.Context, code string) (*models.Section, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Section, error)
	Update(ctx context.Context, section *models.Section) error

	// Deactivate also deactivates the section's students; Restore reactivates them
	Deactivate(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error

	ExistsByCode(ctx context.Context, code string, excludeID *uint) (bool, error)
}
