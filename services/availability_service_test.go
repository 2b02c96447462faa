package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	availability := NewAvailabilityService(f.db)
	tomorrow := today().AddDate(0, 0, 1).Format("2006-01-02")

	slot, err := availability.Publish(ctx, f.technician.Account.ID, AvailabilityInput{Date: tomorrow, StartTime: "08:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.True(t, slot.IsAvailable)

	off := false
	_, err = availability.Publish(ctx, f.technician.Account.ID, AvailabilityInput{Date: tomorrow, StartTime: "13:00", EndTime: "17:00", IsAvailable: &off})
	require.NoError(t, err)

	tests := []struct {
		name      string
		accountID uint
		in        AvailabilityInput
		want      error
	}{
		{"past day", f.technician.Account.ID, AvailabilityInput{Date: today().AddDate(0, 0, -1).Format("2006-01-02"), StartTime: "08:00", EndTime: "12:00"}, ErrValidation},
		{"reversed hours", f.technician.Account.ID, AvailabilityInput{Date: tomorrow, StartTime: "12:00", EndTime: "08:00"}, ErrValidation},
		{"bad date", f.technician.Account.ID, AvailabilityInput{Date: "tomorrow", StartTime: "08:00", EndTime: "12:00"}, ErrValidation},
		{"secretary", f.secretary.Account.ID, AvailabilityInput{Date: tomorrow, StartTime: "08:00", EndTime: "12:00"}, ErrForbidden},
		{"customer", f.customer.Account.ID, AvailabilityInput{Date: tomorrow, StartTime: "08:00", EndTime: "12:00"}, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := availability.Publish(ctx, tt.accountID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	upcoming, err := availability.Upcoming(ctx, f.technician.EmployeeID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "08:00", upcoming[0].StartTime)
	assert.False(t, upcoming[1].IsAvailable)

	_, err = availability.Upcoming(ctx, f.secretary.EmployeeID)
	assert.ErrorIs(t, err, ErrNotFound)
}
