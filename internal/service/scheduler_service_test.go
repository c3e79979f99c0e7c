package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "08:00", want: "0 0 8 * * *"},
		{in: " 7:45 ", want: "0 45 7 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "12:00:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	loc := time.FixedZone("CET", 60*60)
	s := NewSchedulerService(loc, zap.NewNop())
	id, err := s.ScheduleDaily("06:30", func() {})
	require.NoError(t, err)
	assert.True(t, s.Next(id).IsZero())

	s.Start()
	next := s.Next(id).In(loc)
	s.Stop()

	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 30, next.Minute())

	_, err = s.ScheduleDaily("6h", func() {})
	assert.Error(t, err)
}
