package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/library_service/internal/model"
)

func Test_RequestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    model.RequestStatus
		to      model.RequestStatus
		allowed bool
	}{
		{"pending_to_approved", model.RequestStatusPending, model.RequestStatusApproved, true},
		{"pending_to_rejected", model.RequestStatusPending, model.RequestStatusRejected, true},
		{"pending_to_returned", model.RequestStatusPending, model.RequestStatusReturned, false},
		{"approved_to_returned", model.RequestStatusApproved, model.RequestStatusReturned, true},
		{"approved_to_approved", model.RequestStatusApproved, model.RequestStatusApproved, false},
		{"approved_to_rejected", model.RequestStatusApproved, model.RequestStatusRejected, false},
		{"rejected_to_approved", model.RequestStatusRejected, model.RequestStatusApproved, false},
		{"rejected_to_returned", model.RequestStatusRejected, model.RequestStatusReturned, false},
		{"returned_to_approved", model.RequestStatusReturned, model.RequestStatusApproved, false},
		{"returned_to_pending", model.RequestStatusReturned, model.RequestStatusPending, false},
		{"approved_to_pending", model.RequestStatusApproved, model.RequestStatusPending, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func Test_RequestStatus_Terminal(t *testing.T) {
	assert.False(t, model.RequestStatusPending.Terminal())
	assert.False(t, model.RequestStatusApproved.Terminal())
	assert.True(t, model.RequestStatusRejected.Terminal())
	assert.True(t, model.RequestStatusReturned.Terminal())
}

func Test_DueDateFor_FixedLendingPeriod(t *testing.T) {
	issue := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	due := model.DueDateFor(issue, 14)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), due)
}

func Test_DueDateFor_NoTimezoneDrift(t *testing.T) {
	// Поздний вечер в минусовом поясе: в UTC это уже следующий день,
	// срок должен считаться от календарной даты UTC
	loc := time.FixedZone("UTC-5", -5*60*60)
	issue := time.Date(2025, 6, 30, 23, 30, 0, 0, loc)

	due := model.DueDateFor(issue, 14)

	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), due)
	assert.Equal(t, time.Duration(0), due.Sub(model.UTCDate(issue))-14*24*time.Hour)
}

func Test_UTCDate_TruncatesToMidnight(t *testing.T) {
	moment := time.Date(2025, 12, 31, 18, 45, 12, 999, time.UTC)

	day := model.UTCDate(moment)

	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, time.UTC, day.Location())
}
