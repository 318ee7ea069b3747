package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "pulseboard/internal/errors"
	"pulseboard/internal/exporter"
	"pulseboard/internal/services"
)

func TestQueryList(t *testing.T) {
	q := url.Values{"diagnosis": {"Cardio, Neuro", "", " Ortho "}}
	assert.Equal(t, []string{"Cardio", "Neuro", "Ortho"}, queryList(q, "diagnosis"))
	assert.Nil(t, queryList(url.Values{"diagnosis": {""}}, "diagnosis"))
}

func TestQueryIntAndBool(t *testing.T) {
	n, err := queryInt(url.Values{"top_n": {" 20 "}}, "top_n")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	n, err = queryInt(url.Values{}, "top_n")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = queryInt(url.Values{"top_n": {"twenty"}}, "top_n")
	assert.Error(t, err)

	b, err := queryBool(url.Values{"dark": {"true"}}, "dark")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = queryBool(url.Values{"dark": {"maybe"}}, "dark")
	assert.Error(t, err)
}

func TestServiceError(t *testing.T) {
	req := requested{SortBy: "OCC_CODE", TopN: 25, Options: []int{10, 20}}

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"dataset", fmt.Errorf("overview: %w", services.ErrDatasetUnavailable), apierrors.CodeDatasetUnavailable, http.StatusServiceUnavailable},
		{"sort key", fmt.Errorf("%w: OCC_CODE", services.ErrInvalidSortKey), apierrors.CodeInvalidSortKey, http.StatusBadRequest},
		{"top n", fmt.Errorf("%w: 25", services.ErrInvalidTopN), apierrors.CodeInvalidTopN, http.StatusBadRequest},
		{"filter", fmt.Errorf("%w: inverted dates", services.ErrInvalidFilter), apierrors.CodeInvalidRequest, http.StatusBadRequest},
		{"export", fmt.Errorf("healthcare export: %w: disk full", services.ErrExportFailed), apierrors.CodeExportFailed, http.StatusInternalServerError},
		{"format", fmt.Errorf("%w: pdf", exporter.ErrUnsupportedFormat), apierrors.CodeUnsupportedFormat, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr *apierrors.APIError
			require.True(t, errors.As(serviceError(tt.err, "skills", req), &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
		})
	}

	plain := errors.New("boom")
	assert.Same(t, plain, serviceError(plain, "skills", req))
}
