package services

import (
	"context"
	"testing"

	"github.com/schoolscan/omr-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchoolService(repo *fakeRepository) SchoolService {
	return NewSchoolService(repo, testLogger(), utils.NewValidator())
}

func TestCreateSchool(t *testing.T) {
	svc := newTestSchoolService(newFakeRepository())

	school, err := svc.Create(context.Background(), &CreateSchoolRequest{
		Name: "Hillside Primary",
		Code: "HSP01",
	})
	require.NoError(t, err)
	assert.NotZero(t, school.ID)
	assert.Equal(t, "HSP01", school.Code)
}

func TestCreateSchoolDuplicateCode(t *testing.T) {
	svc := newTestSchoolService(newFakeRepository())

	_, err := svc.Create(context.Background(), &CreateSchoolRequest{Name: "First", Code: "SAME1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateSchoolRequest{Name: "Second", Code: "SAME1"})
	assert.ErrorIs(t, err, ErrSchoolDuplicateCode)
	assert.True(t, IsConflict(err))
}

func TestCreateSchoolValidation(t *testing.T) {
	svc := newTestSchoolService(newFakeRepository())

	_, err := svc.Create(context.Background(), &CreateSchoolRequest{Name: "No Code"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestUpdateSchoolNotFound(t *testing.T) {
	svc := newTestSchoolService(newFakeRepository())

	name := "Renamed"
	_, err := svc.Update(context.Background(), 42, &UpdateSchoolRequest{Name: &name})
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestDeleteSchoolHidesIt(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestSchoolService(repo)

	school, err := svc.Create(context.Background(), &CreateSchoolRequest{Name: "Gone", Code: "GON01"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), school.ID))

	_, err = svc.GetByID(context.Background(), school.ID)
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}
