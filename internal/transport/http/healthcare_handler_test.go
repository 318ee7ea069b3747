package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/exporter"
	pbmiddleware "pulseboard/internal/middleware"
	"pulseboard/internal/services"
	"pulseboard/pkg/contracts/domain"
)

// MockHealthcareService is a mock implementation of HealthcareService
type MockHealthcareService struct {
	mock.Mock
}

func (m *MockHealthcareService) Options(ctx context.Context) (*domain.HealthcareOptions, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthcareOptions), args.Error(1)
}

func (m *MockHealthcareService) Dashboard(ctx context.Context, filter services.HealthcareFilter, dark bool) (*domain.HealthcareDashboard, error) {
	args := m.Called(filter, dark)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HealthcareDashboard), args.Error(1)
}

func (m *MockHealthcareService) Export(ctx context.Context, filter services.HealthcareFilter, format string, trigger int) (*exporter.Artifact, error) {
	args := m.Called(filter, format, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*exporter.Artifact), args.Error(1)
}

func newHealthcareRouter(svc HealthcareService) http.Handler {
	logger := testLogger()
	h := NewHealthcareHandler(svc, pbmiddleware.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api/healthcare", h.Routes())
	return r
}

func TestHealthcareHandler_GetOptions(t *testing.T) {
	svc := new(MockHealthcareService)
	svc.On("Options").Return(&domain.HealthcareOptions{
		Diagnoses: []string{"Cardio", "Neuro"},
		Genders:   []string{"Female", "Male"},
		MinDate:   "2022-01-01",
		MaxDate:   "2023-12-31",
	}, nil)

	rec := httptest.NewRecorder()
	newHealthcareRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthcare/options", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"min_date":"2022-01-01"`)
}

func TestHealthcareHandler_GetDashboard(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockHealthcareService)
		expectedStatus int
	}{
		{
			name:  "no filter",
			query: "",
			setupMock: func(m *MockHealthcareService) {
				m.On("Dashboard", services.HealthcareFilter{}, false).Return(&domain.HealthcareDashboard{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "repeated and comma separated values",
			query: "?diagnosis=Cardio,Neuro&gender=Male&gender=Female&start=2022-01-01&dark=true",
			setupMock: func(m *MockHealthcareService) {
				m.On("Dashboard", services.HealthcareFilter{
					Diagnoses: []string{"Cardio", "Neuro"},
					Genders:   []string{"Male", "Female"},
					Start:     &start,
				}, true).Return(&domain.HealthcareDashboard{Theme: services.Theme(true)}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed date",
			query:          "?end=31/12/2023",
			setupMock:      func(m *MockHealthcareService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed dark flag",
			query:          "?dark=maybe",
			setupMock:      func(m *MockHealthcareService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthcareService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			newHealthcareRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthcare/dashboard"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthcareHandler_Export(t *testing.T) {
	t.Run("not triggered", func(t *testing.T) {
		svc := new(MockHealthcareService)
		svc.On("Export", services.HealthcareFilter{}, "", 0).Return(nil, services.ErrExportNotTriggered)

		rec := httptest.NewRecorder()
		newHealthcareRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthcare/export", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("xlsx attachment", func(t *testing.T) {
		svc := new(MockHealthcareService)
		svc.On("Export", services.HealthcareFilter{Diagnoses: []string{"Cardio"}}, "xlsx", 3).Return(&exporter.Artifact{
			Filename:    "filtered_healthcare_data.xlsx",
			ContentType: exporter.FormatXLSX.ContentType(),
			Format:      exporter.FormatXLSX,
			Rows:        12,
			Data:        []byte("PK"),
		}, nil)

		rec := httptest.NewRecorder()
		newHealthcareRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthcare/export?diagnosis=Cardio&format=XLSX&trigger=3", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;"))
		assert.Equal(t, exporter.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
		assert.Equal(t, "2", rec.Header().Get("Content-Length"))
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := new(MockHealthcareService)

		rec := httptest.NewRecorder()
		newHealthcareRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthcare/export?format=pdf&trigger=1", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
	})
}
