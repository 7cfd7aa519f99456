package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/schoolscan/omr-service/internal/models"
	"github.com/schoolscan/omr-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExamService(repo *fakeRepository, intn IntN) ExamService {
	return NewExamService(repo, testLogger(), utils.NewValidator(), intn)
}

func seedSchool(t *testing.T, repo *fakeRepository) *models.School {
	t.Helper()
	school := &models.School{Name: "Test School", Code: "TST01"}
	require.NoError(t, repo.School().Create(context.Background(), school))
	return school
}

func examRequest(questions int, choices int) *CreateExamRequest {
	req := &CreateExamRequest{
		Title:              "Midterm",
		Subject:            "Math",
		TotalQuestions:     questions,
		ChoicesPerQuestion: choices,
	}
	labels := models.ChoiceLabels[:choices]
	for q := 1; q <= questions; q++ {
		question := CreateQuestionRequest{
			QuestionNumber: q,
			Content:        "question",
		}
		for ci, label := range labels {
			question.Choices = append(question.Choices, CreateChoiceRequest{
				Label:     label,
				Content:   "choice",
				IsCorrect: ci == (q-1)%choices,
			})
		}
		req.Questions = append(req.Questions, question)
	}
	return req
}

func TestCreateExam(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	exam, err := svc.Create(context.Background(), school.ID, examRequest(3, 4))
	require.NoError(t, err)

	assert.Equal(t, models.ExamStatusDraft, exam.Status)
	assert.Equal(t, 4, exam.ChoicesPerQuestion)
	assert.Len(t, exam.Questions, 3)
}

func TestCreateExamRejectsZeroCorrectChoices(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	req := examRequest(1, 4)
	for i := range req.Questions[0].Choices {
		req.Questions[0].Choices[i].IsCorrect = false
	}

	_, err := svc.Create(context.Background(), school.ID, req)
	assert.ErrorIs(t, err, ErrExamCorrectChoiceCount)
}

func TestCreateExamRejectsMultipleCorrectChoices(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	req := examRequest(1, 4)
	req.Questions[0].Choices[0].IsCorrect = true
	req.Questions[0].Choices[1].IsCorrect = true

	_, err := svc.Create(context.Background(), school.ID, req)
	assert.ErrorIs(t, err, ErrExamCorrectChoiceCount)
}

func TestCreateExamRejectsWrongChoiceCount(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	req := examRequest(1, 4)
	req.Questions[0].Choices = req.Questions[0].Choices[:3]

	_, err := svc.Create(context.Background(), school.ID, req)
	assert.ErrorIs(t, err, ErrExamChoiceCount)
}

func decodeVersion(t *testing.T, v *models.ExamVersion) ([]models.QuestionMappingEntry, []models.ChoiceMappingEntry, []models.AnswerKeyEntry) {
	t.Helper()
	var qm []models.QuestionMappingEntry
	var cm []models.ChoiceMappingEntry
	var ak []models.AnswerKeyEntry
	require.NoError(t, json.Unmarshal(v.QuestionMapping, &qm))
	require.NoError(t, json.Unmarshal(v.ChoiceMapping, &cm))
	require.NoError(t, json.Unmarshal(v.AnswerKey, &ak))
	return qm, cm, ak
}

func TestGenerateVersionsIdentity(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	exam, err := svc.Create(context.Background(), school.ID, examRequest(4, 4))
	require.NoError(t, err)

	versions, err := svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes: []string{"A"},
	})
	require.NoError(t, err)
	require.Len(t, versions, 1)

	qm, cm, ak := decodeVersion(t, versions[0])

	require.Len(t, qm, 4)
	for _, entry := range qm {
		assert.Equal(t, entry.OriginalNumber, entry.NewNumber)
	}
	require.Len(t, cm, 16)
	for _, entry := range cm {
		assert.Equal(t, entry.OriginalLabel, entry.NewLabel)
	}

	// Correct choices were seeded cyclically: A, B, C, D.
	require.Len(t, ak, 4)
	assert.Equal(t, "A", ak[0].CorrectChoice)
	assert.Equal(t, "B", ak[1].CorrectChoice)
	assert.Equal(t, "C", ak[2].CorrectChoice)
	assert.Equal(t, "D", ak[3].CorrectChoice)
}

// The answer key must stay consistent with the mappings: resolving each
// keyed choice back through the choice mapping and question mapping lands
// on the originally correct choice.
func TestGenerateVersionsShuffledAnswerKeyRoundTrip(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, rand.New(rand.NewSource(99)).Intn)

	exam, err := svc.Create(context.Background(), school.ID, examRequest(10, 4))
	require.NoError(t, err)

	versions, err := svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes:     []string{"A", "B"},
		ShuffleQuestions: true,
		ShuffleChoices:   true,
	})
	require.NoError(t, err)
	require.Len(t, versions, 2)

	for _, version := range versions {
		qm, cm, ak := decodeVersion(t, version)
		require.Len(t, ak, 10)

		newToOriginal := map[int]int{}
		for _, entry := range qm {
			newToOriginal[entry.NewNumber] = entry.OriginalNumber
		}
		assert.Len(t, newToOriginal, 10)

		for _, key := range ak {
			var originalLabel string
			for _, entry := range cm {
				if entry.QuestionNumber == key.QuestionNumber && entry.NewLabel == key.CorrectChoice {
					originalLabel = entry.OriginalLabel
				}
			}
			require.NotEmpty(t, originalLabel)

			// Correct choices were seeded cyclically by original number.
			originalNumber := newToOriginal[key.QuestionNumber]
			expected := models.ChoiceLabels[(originalNumber-1)%4]
			assert.Equal(t, expected, originalLabel)
		}
	}
}

func TestGenerateVersionsDeterministicForFixedSource(t *testing.T) {
	build := func() *models.ExamVersion {
		repo := newFakeRepository()
		school := seedSchool(t, repo)
		svc := newTestExamService(repo, rand.New(rand.NewSource(5)).Intn)

		exam, err := svc.Create(context.Background(), school.ID, examRequest(8, 4))
		require.NoError(t, err)

		versions, err := svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
			VersionCodes:     []string{"A"},
			ShuffleQuestions: true,
			ShuffleChoices:   true,
		})
		require.NoError(t, err)
		return versions[0]
	}

	a := build()
	b := build()
	assert.JSONEq(t, string(a.QuestionMapping), string(b.QuestionMapping))
	assert.JSONEq(t, string(a.ChoiceMapping), string(b.ChoiceMapping))
	assert.JSONEq(t, string(a.AnswerKey), string(b.AnswerKey))
}

func TestGenerateVersionsPublishesExam(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	exam, err := svc.Create(context.Background(), school.ID, examRequest(2, 4))
	require.NoError(t, err)
	require.Equal(t, models.ExamStatusDraft, exam.Status)

	_, err = svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes: []string{"A", "B"},
	})
	require.NoError(t, err)

	updated, err := svc.GetByID(context.Background(), exam.ID, school.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusPublished, updated.Status)
}

func TestGenerateVersionsRegenerateReplacesMappings(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, rand.New(rand.NewSource(3)).Intn)

	exam, err := svc.Create(context.Background(), school.ID, examRequest(5, 4))
	require.NoError(t, err)

	_, err = svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes:     []string{"A"},
		ShuffleQuestions: true,
	})
	require.NoError(t, err)

	_, err = svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes: []string{"A"},
	})
	require.NoError(t, err)

	versions, err := svc.ListVersions(context.Background(), exam.ID, school.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	qm, _, _ := decodeVersion(t, versions[0])
	for _, entry := range qm {
		assert.Equal(t, entry.OriginalNumber, entry.NewNumber)
	}
}

func TestGenerateVersionsNoQuestions(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	req := examRequest(1, 4)
	req.Questions = nil
	exam, err := svc.Create(context.Background(), school.ID, req)
	require.NoError(t, err)

	_, err = svc.GenerateVersions(context.Background(), exam.ID, school.ID, &GenerateVersionsRequest{
		VersionCodes: []string{"A"},
	})
	assert.ErrorIs(t, err, ErrExamNoQuestions)
}

func TestGenerateVersionsExamNotFound(t *testing.T) {
	repo := newFakeRepository()
	school := seedSchool(t, repo)
	svc := newTestExamService(repo, nil)

	_, err := svc.GenerateVersions(context.Background(), 999, school.ID, &GenerateVersionsRequest{
		VersionCodes: []string{"A"},
	})
	assert.ErrorIs(t, err, ErrExamNotFound)
}
