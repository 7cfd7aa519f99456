package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestResultService(repo *fakeRepository) ResultService {
	return NewResultService(repo, testLogger())
}

func TestExportExamResults(t *testing.T) {
	f := newScanFixture(t, allA(5), "2002", "1001")
	f.submitWithScore(t, "2002", 3)
	f.submitWithScore(t, "1001", 5)

	svc := newTestResultService(f.repo)

	data, filename, err := svc.ExportExamResults(context.Background(), f.exam.ID, f.school.ID)
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Student Code", rows[0][0])

	// Rows are ordered by student code, not submission order.
	assert.Equal(t, "1001", rows[1][0])
	assert.Equal(t, "5", rows[1][4])
	assert.Equal(t, "A", rows[1][3])
	assert.Equal(t, "2002", rows[2][0])
	assert.Equal(t, "3", rows[2][4])
}

func TestExportExamResultsEmptyExam(t *testing.T) {
	f := newScanFixture(t, allA(3))
	svc := newTestResultService(f.repo)

	data, _, err := svc.ExportExamResults(context.Background(), f.exam.ID, f.school.ID)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportExamResultsUnknownExam(t *testing.T) {
	f := newScanFixture(t, allA(3))
	svc := newTestResultService(f.repo)

	_, _, err := svc.ExportExamResults(context.Background(), 999, f.school.ID)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestListByStudent(t *testing.T) {
	f := newScanFixture(t, allA(4), "1001")
	f.submitWithScore(t, "1001", 4)

	student, err := f.repo.Student().GetByCode(context.Background(), f.school.ID, "1001")
	require.NoError(t, err)

	svc := newTestResultService(f.repo)
	results, err := svc.ListByStudent(context.Background(), student.ID, f.school.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].Score)
}
