package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	available bool
	rows      int
}

func (p stubProbe) Available() bool { return p.available }
func (p stubProbe) Rows() int       { return p.rows }

type stubSessions int

func (s stubSessions) SessionCount() int { return int(s) }

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", "", nil, nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name     string
		datasets map[string]DatasetProbe
		want     string
	}{
		{
			name: "all loaded",
			datasets: map[string]DatasetProbe{
				"skills":     stubProbe{available: true, rows: 10},
				"healthcare": stubProbe{available: true, rows: 5000},
			},
			want: "ready",
		},
		{
			name: "skills disabled",
			datasets: map[string]DatasetProbe{
				"skills":     stubProbe{},
				"healthcare": stubProbe{available: true, rows: 5000},
			},
			want: "ready",
		},
		{
			name:     "nothing loaded",
			datasets: map[string]DatasetProbe{"skills": stubProbe{}},
			want:     "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.0.0", "", tt.datasets, stubSessions(3), nil)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Len(t, status.Services, len(tt.datasets)+1)

			ws, ok := status.Services["websocket"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, 3, ws.Clients)
		})
	}
}

func TestHealthService_ReadinessReportsRows(t *testing.T) {
	hs := NewHealthService("1.0.0", "", map[string]DatasetProbe{
		"healthcare": stubProbe{available: true, rows: 42},
	}, nil, nil)

	status := hs.ReadinessCheck(context.Background())
	sh, ok := status.Services["healthcare"].(ServiceHealth)
	require.True(t, ok)
	assert.Equal(t, 42, sh.Rows)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.0.0", "2026-01-01T00:00:00Z", nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", v["build_time"])
}
