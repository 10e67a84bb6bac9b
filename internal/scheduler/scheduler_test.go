package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronExpression(t *testing.T) {
	tests := []struct {
		spec    string
		want    string
		wantErr bool
	}{
		{spec: "07:30", want: "30 7 * * *"},
		{spec: "23:05", want: "5 23 * * *"},
		{spec: "0 6 * * 0-5", want: "0 6 * * 0-5"},
		{spec: "@daily", want: "@daily"},
		{spec: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := cronExpression(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("07:30", time.UTC, nil)
	require.Error(t, err)

	_, err = New("not a schedule", time.UTC, func() {})
	require.Error(t, err)

	_, err = New("25:00 * *", time.UTC, func() {})
	require.Error(t, err)
}

func TestNextAfterUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)

	s, err := New("07:30", loc, func() {})
	require.NoError(t, err)

	from := time.Date(2025, 4, 12, 8, 0, 0, 0, loc)
	next := s.NextAfter(from)
	assert.Equal(t, time.Date(2025, 4, 13, 7, 30, 0, 0, loc), next.In(loc))
}

func TestNextIsZeroBeforeStart(t *testing.T) {
	s, err := New("@daily", nil, func() {})
	require.NoError(t, err)
	assert.True(t, s.Next().IsZero())
}

func TestJobRuns(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", time.UTC, func() { runs.Add(1) })
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	assert.False(t, s.Next().IsZero())
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}
