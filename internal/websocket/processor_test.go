package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
	"pulseboard/pkg/contracts/events"
)

type MockSkillsService struct {
	mock.Mock
}

func (m *MockSkillsService) Overview(ctx context.Context) (*domain.SkillsOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SkillsOverview), args.Error(1)
}

func (m *MockSkillsService) Occupations(ctx context.Context, sortBy string) (*domain.OccupationsView, error) {
	args := m.Called(ctx, sortBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OccupationsView), args.Error(1)
}

func (m *MockSkillsService) Countries(ctx context.Context, topN int) (*domain.CountriesView, error) {
	args := m.Called(ctx, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CountriesView), args.Error(1)
}

func (m *MockSkillsService) DigitalOccupations(ctx context.Context, topN int) (*domain.DigitalOccupationsView, error) {
	args := m.Called(ctx, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DigitalOccupationsView), args.Error(1)
}

func (m *MockSkillsService) CountryOptions() []int {
	return m.Called().Get(0).([]int)
}

func (m *MockSkillsService) ONETOptions() []int {
	return m.Called().Get(0).([]int)
}

type MockHealthcareService struct {
	mock.Mock
}

func (m *MockHealthcareService) Dashboard(ctx context.Context, filter services.HealthcareFilter, dark bool) (*domain.HealthcareDashboard, error) {
	args := m.Called(ctx, filter, dark)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthcareDashboard), args.Error(1)
}

func errorCode(t *testing.T, msg events.WebSocketMessage) string {
	t.Helper()
	require.Equal(t, events.MessageTypeError, msg.Type)
	data, ok := msg.Data.(events.ErrorData)
	require.True(t, ok)
	return data.Code
}

func TestProcessor_RejectsBadRequests(t *testing.T) {
	p := NewProcessor(new(MockSkillsService), new(MockHealthcareService), nil)

	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"malformed json", `{"dashboard":`, apierrors.CodeInvalidRequest},
		{"wrong type", `{"type":"dashboard:update","dashboard":"healthcare"}`, apierrors.CodeValidationFailed},
		{"missing dashboard", `{"type":"filter:request"}`, apierrors.CodeValidationFailed},
		{"unknown dashboard", `{"dashboard":"finance"}`, apierrors.CodeValidationFailed},
		{"bad date", `{"dashboard":"healthcare","healthcare":{"start":"2024-13-40"}}`, apierrors.CodeValidationFailed},
		{"unknown view", `{"dashboard":"skills","skills":{"view":"salaries"}}`, apierrors.CodeValidationFailed},
		{"missing skills query", `{"dashboard":"skills"}`, apierrors.CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := p.Process(context.Background(), []byte(tt.raw), "s1")
			assert.Equal(t, tt.code, errorCode(t, msg))
			assert.Equal(t, "s1", msg.SessionID)
		})
	}
}

func TestProcessor_HealthcareUpdate(t *testing.T) {
	hc := new(MockHealthcareService)
	hc.On("Dashboard", mock.Anything, mock.MatchedBy(func(f services.HealthcareFilter) bool {
		return len(f.Diagnoses) == 1 && f.Diagnoses[0] == "Diabetes" && f.Start != nil
	}), true).Return(&domain.HealthcareDashboard{}, nil)

	p := NewProcessor(nil, hc, nil)
	raw := `{"id":"r1","type":"filter:request","dashboard":"healthcare",
		"healthcare":{"diagnosis":["Diabetes"],"start":"2024-01-01","dark":true}}`
	msg := p.Process(context.Background(), []byte(raw), "s1")

	assert.Equal(t, events.MessageTypeDashboardUpdate, msg.Type)
	assert.Equal(t, "r1", msg.ID)
	assert.Equal(t, domain.DashboardHealthcare, msg.Dashboard)
	assert.IsType(t, &domain.HealthcareDashboard{}, msg.Data)
	hc.AssertExpectations(t)
}

func TestProcessor_HealthcareWithoutFilter(t *testing.T) {
	hc := new(MockHealthcareService)
	hc.On("Dashboard", mock.Anything, services.HealthcareFilter{}, false).
		Return(&domain.HealthcareDashboard{}, nil)

	p := NewProcessor(nil, hc, nil)
	msg := p.Process(context.Background(), []byte(`{"dashboard":"healthcare"}`), "s1")

	assert.Equal(t, events.MessageTypeDashboardUpdate, msg.Type)
	hc.AssertExpectations(t)
}

func TestProcessor_DisabledDashboard(t *testing.T) {
	p := NewProcessor(nil, nil, nil)

	msg := p.Process(context.Background(), []byte(`{"dashboard":"skills","skills":{"view":"overview"}}`), "s1")
	assert.Equal(t, apierrors.CodeDatasetUnavailable, errorCode(t, msg))

	msg = p.Process(context.Background(), []byte(`{"dashboard":"healthcare"}`), "s1")
	assert.Equal(t, apierrors.CodeDatasetUnavailable, errorCode(t, msg))
}

func TestProcessor_SkillsViews(t *testing.T) {
	skills := new(MockSkillsService)
	skills.On("Overview", mock.Anything).Return(&domain.SkillsOverview{}, nil)
	skills.On("Occupations", mock.Anything, "A_MEDIAN").Return(&domain.OccupationsView{}, nil)
	skills.On("CountryOptions").Return([]int{10, 20})
	skills.On("Countries", mock.Anything, 20).Return(&domain.CountriesView{}, nil)
	skills.On("ONETOptions").Return([]int{10})
	skills.On("DigitalOccupations", mock.Anything, 10).Return(&domain.DigitalOccupationsView{}, nil)

	p := NewProcessor(skills, nil, nil)
	tests := []struct {
		raw  string
		want interface{}
	}{
		{`{"dashboard":"skills","skills":{"view":"overview"}}`, &domain.SkillsOverview{}},
		{`{"dashboard":"skills","skills":{"view":"occupations","sort_by":"A_MEDIAN"}}`, &domain.OccupationsView{}},
		{`{"dashboard":"skills","skills":{"view":"countries","top_n":20}}`, &domain.CountriesView{}},
		{`{"dashboard":"skills","skills":{"view":"onet","top_n":10}}`, &domain.DigitalOccupationsView{}},
	}
	for _, tt := range tests {
		msg := p.Process(context.Background(), []byte(tt.raw), "s1")
		require.Equal(t, events.MessageTypeDashboardUpdate, msg.Type, tt.raw)
		assert.Equal(t, domain.DashboardSkills, msg.Dashboard)
		assert.IsType(t, tt.want, msg.Data)
	}
	skills.AssertExpectations(t)
}

func TestProcessor_InvalidTopN(t *testing.T) {
	skills := new(MockSkillsService)
	skills.On("CountryOptions").Return([]int{10, 20})
	skills.On("Countries", mock.Anything, 7).Return(nil, services.ErrInvalidTopN)

	p := NewProcessor(skills, nil, nil)
	msg := p.Process(context.Background(), []byte(`{"dashboard":"skills","skills":{"view":"countries","top_n":7}}`), "s1")

	assert.Equal(t, apierrors.CodeInvalidTopN, errorCode(t, msg))
	data := msg.Data.(events.ErrorData)
	assert.Contains(t, data.Message, "7")
}

func TestProcessor_UnexpectedErrorIsMasked(t *testing.T) {
	skills := new(MockSkillsService)
	skills.On("Overview", mock.Anything).Return(nil, assert.AnError)

	p := NewProcessor(skills, nil, nil)
	msg := p.Process(context.Background(), []byte(`{"dashboard":"skills","skills":{"view":"overview"}}`), "s1")

	assert.Equal(t, apierrors.CodeInternal, errorCode(t, msg))
	assert.NotContains(t, msg.Data.(events.ErrorData).Message, assert.AnError.Error())
}
