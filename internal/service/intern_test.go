package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

func newInternFixture() (*InternService, *mockInternRepository, *mockEventPublisher) {
	interns := new(mockInternRepository)
	events := new(mockEventPublisher)
	svc := NewInternService(interns, newTestHasher(), events, newTestLogger(), WithClock(testClock))
	return svc, interns, events
}

func createInput() CreateInternInput {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	return CreateInternInput{
		FullName:       "Karthik Subramanian",
		Email:          "Karthik@Example.com",
		Password:       "welcome1",
		PhoneNumber:    "9123456780",
		Location:       "Bengaluru",
		Position:       "Frontend Intern",
		Department:     "Product",
		SupervisorName: "Meera Nair",
		StartDate:      start,
		EndDate:        start.AddDate(0, 6, 0),
	}
}

func TestCreateIntern_Success_DefaultsToPending(t *testing.T) {
	svc, interns, events := newInternFixture()
	in := createInput()

	interns.On("ExistsByEmail", mock.Anything, "karthik@example.com").Return(false, nil)
	interns.On("Create", mock.Anything, mock.MatchedBy(func(i *domain.Intern) bool {
		return i.Role == domain.RoleIntern &&
			i.ApprovalStatus == domain.ApprovalPending &&
			i.Status == domain.StatusActive &&
			i.Username == "Karthik Subramanian" &&
			i.StartDate != nil && i.StartDate.Equal(in.StartDate)
	})).Return(nil)
	events.On("PublishInternCreated", mock.Anything, mock.AnythingOfType("*domain.Intern"), "admin-1").Return(nil)

	got, err := svc.CreateIntern(context.Background(), "admin-1", in)

	require.NoError(t, err)
	assert.Equal(t, "karthik@example.com", got.Email)
	assert.Equal(t, domain.ApprovalPending, got.ApprovalStatus)
	assert.Equal(t, "Product", got.Department)
	interns.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateIntern_ApprovedByAdmin(t *testing.T) {
	svc, interns, events := newInternFixture()
	in := createInput()
	in.ApprovalStatus = domain.ApprovalApproved

	interns.On("ExistsByEmail", mock.Anything, "karthik@example.com").Return(false, nil)
	interns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Intern")).Return(nil)
	events.On("PublishInternCreated", mock.Anything, mock.AnythingOfType("*domain.Intern"), "admin-1").Return(nil)

	got, err := svc.CreateIntern(context.Background(), "admin-1", in)

	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalApproved, got.ApprovalStatus)
}

func TestCreateIntern_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInternInput)
		field  string
	}{
		{
			name:   "unknown approval status",
			mutate: func(in *CreateInternInput) { in.ApprovalStatus = "archived" },
			field:  "approvalStatus",
		},
		{
			name:   "end before start",
			mutate: func(in *CreateInternInput) { in.EndDate = in.StartDate.Add(-24 * time.Hour) },
			field:  "endDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, interns, _ := newInternFixture()
			in := createInput()
			tt.mutate(&in)

			_, err := svc.CreateIntern(context.Background(), "admin-1", in)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			require.Len(t, appErr.Details, 1)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
			interns.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateIntern_DuplicateEmail(t *testing.T) {
	svc, interns, _ := newInternFixture()
	interns.On("ExistsByEmail", mock.Anything, "karthik@example.com").Return(true, nil)

	_, err := svc.CreateIntern(context.Background(), "admin-1", createInput())

	assert.Equal(t, http.StatusConflict, apperrors.HTTPStatus(err))
	assert.Equal(t, apperrors.TypeConflict, apperrors.TypeOf(err))
}

func TestCreateIntern_StoreError_Internal(t *testing.T) {
	svc, interns, events := newInternFixture()
	interns.On("ExistsByEmail", mock.Anything, "karthik@example.com").Return(false, nil)
	interns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Intern")).Return(errors.New("read-only transaction"))

	_, err := svc.CreateIntern(context.Background(), "admin-1", createInput())

	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	events.AssertNotCalled(t, "PublishInternCreated", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntern_PublishFailure_StillSucceeds(t *testing.T) {
	svc, interns, events := newInternFixture()
	interns.On("ExistsByEmail", mock.Anything, "karthik@example.com").Return(false, nil)
	interns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Intern")).Return(nil)
	events.On("PublishInternCreated", mock.Anything, mock.AnythingOfType("*domain.Intern"), "admin-1").
		Return(errors.New("broker down"))

	got, err := svc.CreateIntern(context.Background(), "admin-1", createInput())

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
}
