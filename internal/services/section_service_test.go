package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gizmo-edu/survey-service/internal/models"
	"github.com/gizmo-edu/survey-service/internal/validator"
)

func newTestSectionService(repo *MockRepository) SectionService {
	return NewSectionService(repo, testLogger(), validator.New())
}

func testAdmin(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin, IsActive: true}
}

func TestSectionService_Create(t *testing.T) {
	repo := newMockRepository()
	svc := newTestSectionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "admin-1").Return(testAdmin("admin-1"), nil)
	repo.sectionRepo.On("ExistsByCode", mock.Anything, "5A", (*uint)(nil)).Return(false, nil)
	repo.sectionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Section) bool {
		return s.Name == "Grade 5 A" && s.Code == "5A" && s.IsActive
	})).Return(nil)

	section, err := svc.Create(context.Background(), &CreateSectionRequest{
		Name: "Grade 5 A",
		Code: "5A",
	}, "admin-1")

	require.NoError(t, err)
	assert.Equal(t, "5A", section.Code)
	repo.assertExpectations(t)
}

func TestSectionService_Create_DuplicateCode(t *testing.T) {
	repo := newMockRepository()
	svc := newTestSectionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "admin-1").Return(testAdmin("admin-1"), nil)
	repo.sectionRepo.On("ExistsByCode", mock.Anything, "5A", (*uint)(nil)).Return(true, nil)

	_, err := svc.Create(context.Background(), &CreateSectionRequest{
		Name: "Grade 5 A",
		Code: "5A",
	}, "admin-1")

	assert.ErrorIs(t, err, ErrSectionDuplicateCode)
	repo.sectionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSectionService_Create_TeacherRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestSectionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
		&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)

	_, err := svc.Create(context.Background(), &CreateSectionRequest{
		Name: "Grade 5 A",
		Code: "5A",
	}, "teacher-1")

	var perr *PermissionError
	assert.ErrorAs(t, err, &perr)
}

func TestSectionService_Update_CodeChangeChecksUniqueness(t *testing.T) {
	repo := newMockRepository()
	svc := newTestSectionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "admin-1").Return(testAdmin("admin-1"), nil)
	repo.sectionRepo.On("GetByID", mock.Anything, uint(7)).Return(
		&models.Section{ID: 7, Name: "Grade 5 A", Code: "5A", IsActive: true}, nil)
	repo.sectionRepo.On("ExistsByCode", mock.Anything, "5B", uintPtr(7)).Return(true, nil)

	_, err := svc.Update(context.Background(), 7, &UpdateSectionRequest{
		Code: stringPtr("5B"),
	}, "admin-1")

	assert.ErrorIs(t, err, ErrSectionDuplicateCode)
}

func TestSectionService_SetStudentActive_OnlyStudents(t *testing.T) {
	repo := newMockRepository()
	svc := newTestSectionService(repo)

	repo.userRepo.On("GetByID", mock.Anything, "admin-1").Return(testAdmin("admin-1"), nil)
	repo.userRepo.On("GetByID", mock.Anything, "teacher-1").Return(
		&models.User{ID: "teacher-1", Role: models.RoleTeacher, IsActive: true}, nil)

	err := svc.SetStudentActive(context.Background(), "teacher-1", false, "admin-1")

	assert.ErrorIs(t, err, ErrUserNotFound)
	repo.userRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}
