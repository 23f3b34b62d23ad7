package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/repositories"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

type sectionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSectionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SectionService {
	return &sectionService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *sectionService) Create(ctx context.Context, req *CreateSectionRequest, actorID string) (*models.Section, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}
	if err := s.requireAdmin(ctx, actorID, "create"); err != nil {
		return nil, err
	}

	exists, err := s.repo.Section().ExistsByCode(ctx, req.Code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check section code: %w", err)
	}
	if exists {
		return nil, ErrSectionDuplicateCode
	}

	section := &models.Section{
		Name:     req.Name,
		Code:     req.Code,
		IsActive: true,
	}
	if err := s.repo.Section().Create(ctx, section); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrSectionDuplicateCode
		}
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.logger.Info("Section created", "section_id", section.ID, "code", section.Code, "actor_id", actorID)
	return section, nil
}

func (s *sectionService) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	section, err := s.repo.Section().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}
	return section, nil
}

func (s *sectionService) List(ctx context.Context, activeOnly bool) ([]*models.Section, error) {
	sections, err := s.repo.Section().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

func (s *sectionService) Update(ctx context.Context, id uint, req *UpdateSectionRequest, actorID string) (*models.Section, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.Translate(err)
	}
	if err := s.requireAdmin(ctx, actorID, "update"); err != nil {
		return nil, err
	}

	section, err := s.repo.Section().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to load section: %w", err)
	}

	if req.Code != nil && *req.Code != section.Code {
		exists, err := s.repo.Section().ExistsByCode(ctx, *req.Code, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check section code: %w", err)
		}
		if exists {
			return nil, ErrSectionDuplicateCode
		}
		section.Code = *req.Code
	}
	if req.Name != nil {
		section.Name = *req.Name
	}

	if err := s.repo.Section().Update(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return section, nil
}

// Deactivate retires a section and its students. Survey assignments are
// kept so existing responses stay attributable.
func (s *sectionService) Deactivate(ctx context.Context, id uint, actorID string) error {
	if err := s.requireAdmin(ctx, actorID, "deactivate"); err != nil {
		return err
	}
	if err := s.repo.Section().Deactivate(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to deactivate section: %w", err)
	}
	s.logger.Info("Section deactivated", "section_id", id, "actor_id", actorID)
	return nil
}

func (s *sectionService) Restore(ctx context.Context, id uint, actorID string) error {
	if err := s.requireAdmin(ctx, actorID, "restore"); err != nil {
		return err
	}
	if err := s.repo.Section().Restore(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSectionNotFound
		}
		return fmt.Errorf("failed to restore section: %w", err)
	}
	s.logger.Info("Section restored", "section_id", id, "actor_id", actorID)
	return nil
}

func (s *sectionService) GetRoster(ctx context.Context, id uint, activeOnly bool) ([]*models.User, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.repo.User().GetStudentsBySection(ctx, id, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return students, nil
}

func (s *sectionService) SetStudentActive(ctx context.Context, studentID string, active bool, actorID string) error {
	if err := s.requireAdmin(ctx, actorID, "set_student_active"); err != nil {
		return err
	}

	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return ErrUserNotFound
	}

	if err := s.repo.User().SetActive(ctx, studentID, active); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

func (s *sectionService) requireAdmin(ctx context.Context, actorID, action string) error {
	user, err := s.repo.User().GetByID(ctx, actorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user.Role != models.RoleAdmin {
		return NewPermissionError(actorID, 0, "section", action, "admin role required")
	}
	return nil
}
