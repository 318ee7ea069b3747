package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. PULSE_SERVER_PORT.
const EnvPrefix = "PULSE"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Data       DataConfig       `yaml:"data" envconfig:"DATA"`
	Healthcare HealthcareConfig `yaml:"healthcare" envconfig:"HEALTHCARE"`
	Dashboard  DashboardConfig  `yaml:"dashboard" envconfig:"DASHBOARD"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig locates the Digital Skills Pulse source files.
type DataConfig struct {
	Root          string `yaml:"root" envconfig:"ROOT"`
	SkillsEnabled bool   `yaml:"skills_enabled" envconfig:"SKILLS_ENABLED"`
	ONETDir       string `yaml:"onet_dir" envconfig:"ONET_DIR"`
	ITUFile       string `yaml:"itu_file" envconfig:"ITU_FILE"`
	BLSFile       string `yaml:"bls_file" envconfig:"BLS_FILE"`
}

// HealthcareConfig controls the synthetic patient cohort.
type HealthcareConfig struct {
	Patients  int     `yaml:"patients" envconfig:"PATIENTS"`
	Seed      uint64  `yaml:"seed" envconfig:"SEED"`
	StartDate string  `yaml:"start_date" envconfig:"START_DATE"`
	EndDate   string  `yaml:"end_date" envconfig:"END_DATE"`
	CostMean  float64 `yaml:"cost_mean" envconfig:"COST_MEAN"`
	CostSD    float64 `yaml:"cost_sd" envconfig:"COST_SD"`
}

// DashboardConfig holds the selectable result sizes of the dashboards.
type DashboardConfig struct {
	OccupationsTopN  int   `yaml:"occupations_top_n" envconfig:"OCCUPATIONS_TOP_N"`
	CountryTopN      []int `yaml:"country_top_n" envconfig:"COUNTRY_TOP_N"`
	CountryDefault   int   `yaml:"country_default" envconfig:"COUNTRY_DEFAULT"`
	ONETTopN         []int `yaml:"onet_top_n" envconfig:"ONET_TOP_N"`
	ONETDefault      int   `yaml:"onet_default" envconfig:"ONET_DEFAULT"`
	OverviewBLSLimit int   `yaml:"overview_bls_limit" envconfig:"OVERVIEW_BLS_LIMIT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// Load loads configuration from defaults, an optional YAML file, an optional
// .env file and the environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.Data = cfg.Data.Resolved()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q", c.Logging.Output)
	}

	if c.Healthcare.Patients < 0 {
		return fmt.Errorf("healthcare patients must not be negative")
	}

	start, end, err := c.Healthcare.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("healthcare end date %s is before start date %s", c.Healthcare.EndDate, c.Healthcare.StartDate)
	}

	if c.Dashboard.OccupationsTopN <= 0 {
		return fmt.Errorf("occupations top-n must be positive")
	}
	if !containsInt(c.Dashboard.CountryTopN, c.Dashboard.CountryDefault) {
		return fmt.Errorf("country default %d is not one of %v", c.Dashboard.CountryDefault, c.Dashboard.CountryTopN)
	}
	if !containsInt(c.Dashboard.ONETTopN, c.Dashboard.ONETDefault) {
		return fmt.Errorf("onet default %d is not one of %v", c.Dashboard.ONETDefault, c.Dashboard.ONETTopN)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be within [0, 1], got %v", c.Telemetry.SampleRatio)
	}

	return nil
}

// Window parses the configured admission date window.
func (h HealthcareConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, h.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid healthcare start date %q: %w", h.StartDate, err)
	}
	end, err := time.Parse(DateLayout, h.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid healthcare end date %q: %w", h.EndDate, err)
	}
	return start, end, nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			SkillsEnabled: true,
			ONETDir:       "data/db_29_1_text",
			ITUFile:       "data/ITU_DH.csv",
			BLSFile:       "data/oesm24nat/national_M2024_dl.xlsx",
		},
		Healthcare: HealthcareConfig{
			Patients:  5000,
			Seed:      42,
			StartDate: "2022-01-01",
			EndDate:   "2023-12-31",
			CostMean:  8000,
			CostSD:    2500,
		},
		Dashboard: DashboardConfig{
			OccupationsTopN:  15,
			CountryTopN:      []int{10, 20, 30, 50},
			CountryDefault:   20,
			ONETTopN:         []int{10, 20, 30},
			ONETDefault:      10,
			OverviewBLSLimit: 15,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageSize:  64 * 1024,
		},
	}
}
