package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.True(t, cfg.Data.SkillsEnabled)
	assert.Equal(t, 5000, cfg.Healthcare.Patients)
	assert.Equal(t, uint64(42), cfg.Healthcare.Seed)
	assert.Equal(t, []int{10, 20, 30, 50}, cfg.Dashboard.CountryTopN)
	assert.Equal(t, 20, cfg.Dashboard.CountryDefault)
	assert.Equal(t, []int{10, 20, 30}, cfg.Dashboard.ONETTopN)
	assert.Equal(t, 10, cfg.Dashboard.ONETDefault)
}

func TestLoadFrom_PrecedenceFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 9090
  read_timeout: 5s
logging:
  level: debug
healthcare:
  patients: 100
dashboard:
  onet_top_n: [5, 10]
  onet_default: 5
`), 0644))

	t.Setenv("PULSE_SERVER_PORT", "9191")
	t.Setenv("PULSE_HEALTHCARE_SEED", "7")

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port, "env wins over file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout, "file wins over defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Healthcare.Patients)
	assert.Equal(t, uint64(7), cfg.Healthcare.Seed)
	assert.Equal(t, []int{5, 10}, cfg.Dashboard.ONETTopN)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "untouched defaults survive")
}

func TestLoadFrom_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PULSE_LOGGING_LEVEL=warn\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PULSE_LOGGING_LEVEL") })

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "port", env: map[string]string{"PULSE_SERVER_PORT": "70000"}, want: "invalid server port"},
		{name: "logging output", env: map[string]string{"PULSE_LOGGING_OUTPUT": "syslog"}, want: "invalid logging output"},
		{name: "date", env: map[string]string{"PULSE_HEALTHCARE_START_DATE": "2022/01/01"}, want: "invalid healthcare start date"},
		{
			name: "inverted window",
			env:  map[string]string{"PULSE_HEALTHCARE_START_DATE": "2024-01-01", "PULSE_HEALTHCARE_END_DATE": "2023-01-01"},
			want: "before start date",
		},
		{name: "country default", env: map[string]string{"PULSE_DASHBOARD_COUNTRY_DEFAULT": "25"}, want: "country default"},
		{name: "sample ratio", env: map[string]string{"PULSE_TELEMETRY_SAMPLE_RATIO": "1.5"}, want: "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHealthcareWindow(t *testing.T) {
	start, end, err := Default().Healthcare.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), end)
}
