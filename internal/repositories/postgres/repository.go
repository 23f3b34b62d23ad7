package postgres

import (
	"context"

	"github.com/gizmo-edu/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	survey   repositories.SurveyRepository
	question repositories.QuestionRepository
	response repositories.ResponseRepository
	user     repositories.UserRepository
	section  repositories.SectionRepository
}

// New wires all PostgreSQL repositories around one gorm handle.
func New(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:       db,
		survey:   NewSurveyPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		user:     NewUserPostgreSQL(db),
		section:  NewSectionPostgreSQL(db),
	}
}

func (r *gormRepository) Survey() repositories.SurveyRepository     { return r.survey }
func (r *gormRepository) Question() repositories.QuestionRepository { return r.question }
func (r *gormRepository) Response() repositories.ResponseRepository { return r.response }
func (r *gormRepository) User() repositories.UserRepository         { return r.user }
func (r *gormRepository) Section() repositories.SectionRepository   { return r.section }

// WithTransaction runs fn against a Repository bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
