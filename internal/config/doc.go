// Package config provides centralized configuration management for pulseboard.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables, including a .env file in the working directory (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or PULSE_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PULSE_<SECTION>_<FIELD>:
//
//	PULSE_SERVER_PORT=8080
//	PULSE_LOGGING_LEVEL=debug
//	PULSE_DATA_ROOT=/srv/pulse
//	PULSE_DATA_BLS_FILE=data/oesm24nat/national_M2024_dl.xlsx
//	PULSE_HEALTHCARE_SEED=42
//	PULSE_DASHBOARD_COUNTRY_TOP_N=10,20,30,50
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("failed to load configuration: %w", err)
//	}
package config
