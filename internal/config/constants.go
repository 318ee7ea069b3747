package config

// Application constants
const (
	AppName    = "pulseboard"
	AppVersion = "1.0.0"

	// DateLayout is the layout of every date accepted in configuration and queries.
	DateLayout = "2006-01-02"
)
