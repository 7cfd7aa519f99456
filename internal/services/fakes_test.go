package services

import (
	"context"
	"sort"
	"strings"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory repositories.Repository for service tests.
// It mimics the storage contract the services rely on: gorm sentinel errors
// for missing rows and duplicate keys, and newest-first result listings.
type fakeRepository struct {
	schools      map[uint]*models.School
	students     map[uint]*models.Student
	exams        map[uint]*models.Exam
	versions     map[uint]*models.ExamVersion
	answerSheets map[uint]*models.AnswerSheet
	results      map[uint]*models.Result
	nextID       uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		schools:      map[uint]*models.School{},
		students:     map[uint]*models.Student{},
		exams:        map[uint]*models.Exam{},
		versions:     map[uint]*models.ExamVersion{},
		answerSheets: map[uint]*models.AnswerSheet{},
		results:      map[uint]*models.Result{},
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) School() repositories.SchoolRepository   { return (*fakeSchoolRepo)(f) }
func (f *fakeRepository) Student() repositories.StudentRepository { return (*fakeStudentRepo)(f) }
func (f *fakeRepository) Exam() repositories.ExamRepository       { return (*fakeExamRepo)(f) }
func (f *fakeRepository) ExamVersion() repositories.ExamVersionRepository {
	return (*fakeVersionRepo)(f)
}
func (f *fakeRepository) AnswerSheet() repositories.AnswerSheetRepository { return (*fakeSheetRepo)(f) }
func (f *fakeRepository) Result() repositories.ResultRepository           { return (*fakeResultRepo)(f) }

func (f *fakeRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ===== SCHOOLS =====

type fakeSchoolRepo fakeRepository

func (f *fakeSchoolRepo) Create(ctx context.Context, school *models.School) error {
	for _, s := range f.schools {
		if s.Code == school.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	school.ID = (*fakeRepository)(f).id()
	f.schools[school.ID] = school
	return nil
}

func (f *fakeSchoolRepo) GetByID(ctx context.Context, id uint) (*models.School, error) {
	s, ok := f.schools[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSchoolRepo) GetByCode(ctx context.Context, code string) (*models.School, error) {
	for _, s := range f.schools {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSchoolRepo) List(ctx context.Context, filters repositories.PageFilters) ([]*models.School, int64, error) {
	var out []*models.School
	for _, s := range f.schools {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeSchoolRepo) Update(ctx context.Context, school *models.School) error {
	f.schools[school.ID] = school
	return nil
}

func (f *fakeSchoolRepo) SoftDelete(ctx context.Context, id uint) error {
	delete(f.schools, id)
	return nil
}

// ===== STUDENTS =====

type fakeStudentRepo fakeRepository

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	for _, s := range f.students {
		if s.SchoolID == student.SchoolID && s.StudentCode == student.StudentCode {
			return gorm.ErrDuplicatedKey
		}
	}
	student.ID = (*fakeRepository)(f).id()
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id, schoolID uint) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok || s.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeStudentRepo) GetByCode(ctx context.Context, schoolID uint, studentCode string) (*models.Student, error) {
	for _, s := range f.students {
		if s.SchoolID == schoolID && s.StudentCode == studentCode {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) List(ctx context.Context, schoolID uint, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	var out []*models.Student
	for _, s := range f.students {
		if s.SchoolID != schoolID {
			continue
		}
		if filters.Classroom != nil && s.Classroom != *filters.Classroom {
			continue
		}
		if filters.Search != "" && !strings.Contains(s.StudentCode+s.FirstName+s.LastName, filters.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentRepo) SoftDelete(ctx context.Context, id uint) error {
	delete(f.students, id)
	return nil
}

func (f *fakeStudentRepo) Classrooms(ctx context.Context, schoolID uint) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range f.students {
		if s.SchoolID == schoolID && !seen[s.Classroom] {
			seen[s.Classroom] = true
			out = append(out, s.Classroom)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ===== EXAMS =====

type fakeExamRepo fakeRepository

func (f *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = (*fakeRepository)(f).id()
	f.exams[exam.ID] = exam
	return nil
}

func (f *fakeExamRepo) GetByID(ctx context.Context, id, schoolID uint) (*models.Exam, error) {
	e, ok := f.exams[id]
	if !ok || e.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeExamRepo) GetByIDWithDetails(ctx context.Context, id, schoolID uint) (*models.Exam, error) {
	return f.GetByID(ctx, id, schoolID)
}

func (f *fakeExamRepo) List(ctx context.Context, schoolID uint, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, e := range f.exams {
		if e.SchoolID != schoolID {
			continue
		}
		if filters.Status != nil && e.Status != *filters.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	f.exams[exam.ID] = exam
	return nil
}

func (f *fakeExamRepo) UpdateStatus(ctx context.Context, id uint, status models.ExamStatus) error {
	e, ok := f.exams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeExamRepo) SoftDelete(ctx context.Context, id uint) error {
	delete(f.exams, id)
	return nil
}

// ===== EXAM VERSIONS =====

type fakeVersionRepo fakeRepository

func (f *fakeVersionRepo) Upsert(ctx context.Context, version *models.ExamVersion) error {
	for _, v := range f.versions {
		if v.ExamID == version.ExamID && v.VersionCode == version.VersionCode {
			version.ID = v.ID
			f.versions[v.ID] = version
			return nil
		}
	}
	version.ID = (*fakeRepository)(f).id()
	f.versions[version.ID] = version
	return nil
}

func (f *fakeVersionRepo) GetByExamAndCode(ctx context.Context, examID uint, versionCode string) (*models.ExamVersion, error) {
	for _, v := range f.versions {
		if v.ExamID == examID && v.VersionCode == versionCode {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVersionRepo) ListByExam(ctx context.Context, examID uint) ([]*models.ExamVersion, error) {
	var out []*models.ExamVersion
	for _, v := range f.versions {
		if v.ExamID == examID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionCode < out[j].VersionCode })
	return out, nil
}

// ===== ANSWER SHEETS =====

type fakeSheetRepo fakeRepository

func (f *fakeSheetRepo) Create(ctx context.Context, sheet *models.AnswerSheet) error {
	sheet.ID = (*fakeRepository)(f).id()
	f.answerSheets[sheet.ID] = sheet
	return nil
}

// ===== RESULTS =====

type fakeResultRepo fakeRepository

func (f *fakeResultRepo) Create(ctx context.Context, result *models.Result) error {
	for _, r := range f.results {
		if r.ExamID == result.ExamID && r.StudentID == result.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	result.ID = (*fakeRepository)(f).id()
	if s, ok := f.students[result.StudentID]; ok {
		result.Student = *s
	}
	if v, ok := f.versions[result.ExamVersionID]; ok {
		result.ExamVersion = *v
	}
	f.results[result.ID] = result
	return nil
}

func (f *fakeResultRepo) GetByID(ctx context.Context, id, schoolID uint) (*models.Result, error) {
	r, ok := f.results[id]
	if !ok || r.SchoolID != schoolID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeResultRepo) GetByExamAndStudent(ctx context.Context, examID, studentID uint) (*models.Result, error) {
	for _, r := range f.results {
		if r.ExamID == examID && r.StudentID == studentID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResultRepo) ListByExam(ctx context.Context, examID, schoolID uint, filters repositories.PageFilters) ([]*models.Result, int64, error) {
	out, err := f.ListAllByExam(ctx, examID, schoolID)
	return out, int64(len(out)), err
}

func (f *fakeResultRepo) ListByStudent(ctx context.Context, studentID, schoolID uint) ([]*models.Result, error) {
	var out []*models.Result
	for _, r := range f.results {
		if r.StudentID == studentID && r.SchoolID == schoolID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeResultRepo) ListAllByExam(ctx context.Context, examID, schoolID uint) ([]*models.Result, error) {
	var out []*models.Result
	for _, r := range f.results {
		if r.ExamID == examID && r.SchoolID == schoolID {
			out = append(out, r)
		}
	}
	// Newest first, matching the store's created_at desc ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
