// Package validation checks the files the dashboards read and write before any
// parsing starts, so a misconfigured path fails with the path in the message.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pulseboard/internal/dataprocessing"
)

// SourceValidator checks dataset source paths and export destinations
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a new source validator
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{
		logger: logger.With(slog.String("component", "validation")),
	}
}

// ValidateSkillsSources checks all three skills sources and reports every
// problem at once.
func (v *SourceValidator) ValidateSkillsSources(src dataprocessing.SkillsSources) error {
	err := errors.Join(
		v.validateFile(src.BLSFile, ".xlsx"),
		v.validateFile(src.ITUFile, ".csv"),
		v.validateONETDir(src.ONETDir),
	)
	if err != nil {
		v.logger.Warn("Skills sources failed validation", slog.String("error", err.Error()))
		return err
	}
	v.logger.Debug("Skills sources validated",
		slog.String("bls", src.BLSFile),
		slog.String("itu", src.ITUFile),
		slog.String("onet", src.ONETDir))
	return nil
}

// ValidateOutputDirectory ensures dir exists, or can be created, and is writable.
func (v *SourceValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

func (v *SourceValidator) validateFile(path, ext string) error {
	if path == "" {
		return fmt.Errorf("no %s source configured", ext)
	}
	if got := strings.ToLower(filepath.Ext(path)); got != ext {
		return fmt.Errorf("source %s: expected a %s file, got %q", path, ext, got)
	}
	// Excel lock files sit next to open workbooks.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("source %s is a temporary Excel file", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("source %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory, not a file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("source %s is not readable: %w", path, err)
	}
	return f.Close()
}

func (v *SourceValidator) validateONETDir(dir string) error {
	if dir == "" {
		return errors.New("no O*NET directory configured")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("O*NET directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("O*NET path %s is not a directory", dir)
	}

	var missing []string
	for _, name := range []string{dataprocessing.ONETOccupationFile, dataprocessing.ONETTechnologyFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("O*NET directory %s is missing %s", dir, strings.Join(missing, ", "))
	}
	return nil
}
