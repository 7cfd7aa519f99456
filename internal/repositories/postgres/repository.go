package postgres

import (
	"context"

	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB

	school      repositories.SchoolRepository
	student     repositories.StudentRepository
	exam        repositories.ExamRepository
	examVersion repositories.ExamVersionRepository
	answerSheet repositories.AnswerSheetRepository
	result      repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:          db,
		school:      NewSchoolPostgreSQL(db),
		student:     NewStudentPostgreSQL(db),
		exam:        NewExamPostgreSQL(db),
		examVersion: NewExamVersionPostgreSQL(db),
		answerSheet: NewAnswerSheetPostgreSQL(db),
		result:      NewResultPostgreSQL(db),
	}
}

func (r *gormRepository) School() repositories.SchoolRepository           { return r.school }
func (r *gormRepository) Student() repositories.StudentRepository         { return r.student }
func (r *gormRepository) Exam() repositories.ExamRepository               { return r.exam }
func (r *gormRepository) ExamVersion() repositories.ExamVersionRepository { return r.examVersion }
func (r *gormRepository) AnswerSheet() repositories.AnswerSheetRepository { return r.answerSheet }
func (r *gormRepository) Result() repositories.ResultRepository           { return r.result }

func (r *gormRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
