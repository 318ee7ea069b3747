package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/dataprocessing"
)

func newValidator() *SourceValidator {
	return NewSourceValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func validSources(t *testing.T) dataprocessing.SkillsSources {
	t.Helper()
	dir := t.TempDir()
	onet := filepath.Join(dir, "onet")
	writeFile(t, filepath.Join(onet, dataprocessing.ONETOccupationFile))
	writeFile(t, filepath.Join(onet, dataprocessing.ONETTechnologyFile))
	return dataprocessing.SkillsSources{
		BLSFile: writeFile(t, filepath.Join(dir, "national.xlsx")),
		ITUFile: writeFile(t, filepath.Join(dir, "itu.csv")),
		ONETDir: onet,
	}
}

func TestSourceValidator_ValidateSkillsSources(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(t *testing.T, src *dataprocessing.SkillsSources)
		wantErr       bool
		errorContains string
	}{
		{
			name:   "all sources present",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {},
		},
		{
			name: "BLS file missing",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {
				src.BLSFile = filepath.Join(t.TempDir(), "absent.xlsx")
			},
			wantErr:       true,
			errorContains: "absent.xlsx",
		},
		{
			name: "ITU with wrong extension",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {
				src.ITUFile = writeFile(t, filepath.Join(t.TempDir(), "itu.xlsx"))
			},
			wantErr:       true,
			errorContains: "expected a .csv file",
		},
		{
			name: "Excel lock file",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {
				src.BLSFile = writeFile(t, filepath.Join(t.TempDir(), "~$national.xlsx"))
			},
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
		{
			name: "O*NET directory without technology skills",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {
				require.NoError(t, os.Remove(filepath.Join(src.ONETDir, dataprocessing.ONETTechnologyFile)))
			},
			wantErr:       true,
			errorContains: dataprocessing.ONETTechnologyFile,
		},
		{
			name: "nothing configured",
			mutate: func(t *testing.T, src *dataprocessing.SkillsSources) {
				*src = dataprocessing.SkillsSources{}
			},
			wantErr:       true,
			errorContains: "no O*NET directory configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := validSources(t)
			tt.mutate(t, &src)

			err := newValidator().ValidateSkillsSources(src)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSourceValidator_ReportsEveryProblem(t *testing.T) {
	err := newValidator().ValidateSkillsSources(dataprocessing.SkillsSources{
		BLSFile: "missing.xlsx",
		ITUFile: "missing.csv",
		ONETDir: "missing-dir",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.xlsx")
	assert.Contains(t, err.Error(), "missing.csv")
	assert.Contains(t, err.Error(), "missing-dir")
}

func TestSourceValidator_ValidateOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "nested")

	require.NoError(t, newValidator().ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	file := writeFile(t, filepath.Join(t.TempDir(), "plain"))
	assert.Error(t, newValidator().ValidateOutputDirectory(file))
}
