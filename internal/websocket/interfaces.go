package websocket

import (
	"context"
	"time"

	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// SkillsService is the part of the skills dashboard reachable over the live channel
type SkillsService interface {
	Overview(ctx context.Context) (*domain.SkillsOverview, error)
	Occupations(ctx context.Context, sortBy string) (*domain.OccupationsView, error)
	Countries(ctx context.Context, topN int) (*domain.CountriesView, error)
	DigitalOccupations(ctx context.Context, topN int) (*domain.DigitalOccupationsView, error)
	CountryOptions() []int
	ONETOptions() []int
}

// HealthcareService is the part of the healthcare dashboard reachable over the live channel
type HealthcareService interface {
	Dashboard(ctx context.Context, filter services.HealthcareFilter, dark bool) (*domain.HealthcareDashboard, error)
}
