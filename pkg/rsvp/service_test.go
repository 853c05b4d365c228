package rsvp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetGuestByToken(ctx context.Context, token string, withWedding bool) (*models.Guest, error) {
	args := m.Called(ctx, token, withWedding)
	if g := args.Get(0); g != nil {
		return g.(*models.Guest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) RecordRSVP(ctx context.Context, guestID int64, resp database.RSVPUpdate) error {
	args := m.Called(ctx, guestID, resp)
	return args.Error(0)
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func newTestService(store Store) *Service {
	svc := NewService(store, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestSubmitRSVP_InvalidStatus(t *testing.T) {
	store := new(mockStore)
	svc := newTestService(store)

	for _, status := range []string{"", "pending", "maybe", "ATTENDING"} {
		_, err := svc.SubmitRSVP(context.Background(), "tok", Submission{Status: status})
		assert.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
	}
	store.AssertNotCalled(t, "GetGuestByToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRSVP_UnknownToken(t *testing.T) {
	store := new(mockStore)
	store.On("GetGuestByToken", mock.Anything, "nope", false).Return(nil, database.ErrNotFound)

	_, err := newTestService(store).SubmitRSVP(context.Background(), "nope", Submission{Status: "attending"})
	assert.ErrorIs(t, err, database.ErrNotFound)
	store.AssertNotCalled(t, "RecordRSVP", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitRSVP_WritesFullResponse(t *testing.T) {
	store := new(mockStore)
	guest := &models.Guest{ID: 4, Name1: "Anna", Name2: "Paul", AskPartnerAttendance: true}
	store.On("GetGuestByToken", mock.Anything, "tok", false).Return(guest, nil)
	store.On("RecordRSVP", mock.Anything, int64(4), database.RSVPUpdate{
		Status:           models.RSVPAttending,
		PartnerAttending: boolPtr(true),
		Message:          strPtr("hi"),
		RespondedAt:      time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}).Return(nil)

	res, err := newTestService(store).SubmitRSVP(context.Background(), "tok", Submission{
		Status:           "attending",
		PartnerAttending: boolPtr(true),
		Message:          strPtr("  hi  "),
	})
	require.NoError(t, err)
	assert.Equal(t, &models.RSVPResult{ID: 4, Status: models.RSVPAttending}, res)
	store.AssertExpectations(t)
}

func TestSubmitRSVP_PartnerAnswerDroppedWhenNotApplicable(t *testing.T) {
	cases := []struct {
		name   string
		guest  *models.Guest
		status string
	}{
		{"declining", &models.Guest{ID: 1, Name2: "Paul", AskPartnerAttendance: true}, "declining"},
		{"solo invitation", &models.Guest{ID: 1, AskPartnerAttendance: true}, "attending"},
		{"asking disabled", &models.Guest{ID: 1, Name2: "Paul"}, "attending"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mockStore)
			store.On("GetGuestByToken", mock.Anything, "tok", false).Return(tc.guest, nil)
			store.On("RecordRSVP", mock.Anything, int64(1), mock.MatchedBy(func(u database.RSVPUpdate) bool {
				return u.PartnerAttending == nil
			})).Return(nil)

			_, err := newTestService(store).SubmitRSVP(context.Background(), "tok", Submission{
				Status:           tc.status,
				PartnerAttending: boolPtr(true),
			})
			require.NoError(t, err)
			store.AssertExpectations(t)
		})
	}
}

func TestSubmitRSVP_PersistenceFailure(t *testing.T) {
	store := new(mockStore)
	store.On("GetGuestByToken", mock.Anything, "tok", false).Return(&models.Guest{ID: 2}, nil)
	store.On("RecordRSVP", mock.Anything, int64(2), mock.Anything).Return(errors.New("disk full"))

	_, err := newTestService(store).SubmitRSVP(context.Background(), "tok", Submission{Status: "declining"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, database.ErrNotFound)
}

func TestCleanMessage(t *testing.T) {
	assert.Nil(t, CleanMessage(nil))
	assert.Nil(t, CleanMessage(strPtr("   ")))
	assert.Equal(t, "bonjour", *CleanMessage(strPtr("  bonjour \n")))

	long := strings.Repeat("é", models.MaxMessageLength+50)
	got := CleanMessage(&long)
	require.NotNil(t, got)
	assert.Equal(t, models.MaxMessageLength, len([]rune(*got)))

	// cut happens before trim, so trailing spaces inside the limit disappear
	padded := strings.Repeat("a", models.MaxMessageLength-2) + "   tail"
	assert.Equal(t, strings.Repeat("a", models.MaxMessageLength-2), *CleanMessage(&padded))
}
