package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusInProgress, StatusScheduled, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusScheduled.IsTerminal())
}

func TestAppointmentIsOnTime(t *testing.T) {
	scheduled := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	service := ServiceType{DurationMinutes: 90}

	at := func(d time.Duration) *time.Time {
		end := scheduled.Add(d)
		return &end
	}

	early := Appointment{Status: StatusCompleted, ScheduledAt: scheduled, ServiceType: service, ActualEndTime: at(60 * time.Minute)}
	onTime := early.IsOnTime()
	if assert.NotNil(t, onTime) {
		assert.True(t, *onTime)
	}

	exact := Appointment{Status: StatusCompleted, ScheduledAt: scheduled, ServiceType: service, ActualEndTime: at(90 * time.Minute)}
	if v := exact.IsOnTime(); assert.NotNil(t, v) {
		assert.True(t, *v)
	}

	late := Appointment{Status: StatusCompleted, ScheduledAt: scheduled, ServiceType: service, ActualEndTime: at(91 * time.Minute)}
	if v := late.IsOnTime(); assert.NotNil(t, v) {
		assert.False(t, *v)
	}

	running := Appointment{Status: StatusInProgress, ScheduledAt: scheduled, ServiceType: service}
	assert.Nil(t, running.IsOnTime())
}
