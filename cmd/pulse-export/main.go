// Command pulse-export writes dashboard downloads to disk without starting the
// server.
//
//	pulse-export healthcare --diagnosis Cardio --gender Female --format csv -o out/
//	pulse-export occupations --sort-by A_MEDIAN
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	goflags "github.com/jessevdk/go-flags"

	"pulseboard/internal/config"
	"pulseboard/internal/dataprocessing"
	"pulseboard/internal/exporter"
	"pulseboard/internal/infrastructure"
	"pulseboard/internal/services"
	"pulseboard/internal/validation"
	"pulseboard/pkg/contracts"
	api "pulseboard/pkg/contracts/api/v1"
)

// GlobalFlags apply to every subcommand.
type GlobalFlags struct {
	Config  string `short:"c" long:"config" description:"YAML configuration file"`
	Output  string `short:"o" long:"output" default:"." description:"Directory the export is written to"`
	Verbose bool   `short:"v" long:"verbose" description:"Log pipeline stages"`
}

type cli struct {
	globals *GlobalFlags
	stdout  io.Writer
}

func (rt *cli) load() (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if rt.globals.Config != "" {
		cfg, err = config.LoadFrom(rt.globals.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Logging.Output = "console"
	if rt.globals.Verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func (rt *cli) save(artifact *exporter.Artifact, logger *slog.Logger) error {
	if err := validation.NewSourceValidator(logger).ValidateOutputDirectory(rt.globals.Output); err != nil {
		return err
	}
	path, err := exporter.SaveArtifact(rt.globals.Output, artifact)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "%s (%d rows)\n", path, artifact.Rows)
	return nil
}

// HealthcareCommand exports the filtered synthetic patient rows.
type HealthcareCommand struct {
	Diagnoses []string `long:"diagnosis" description:"Keep only this diagnosis (repeatable)"`
	Genders   []string `long:"gender" description:"Keep only this gender (repeatable)"`
	Start     string   `long:"start" description:"First admission date, YYYY-MM-DD"`
	End       string   `long:"end" description:"Last admission date, YYYY-MM-DD"`
	Format    string   `short:"f" long:"format" default:"xlsx" choice:"xlsx" choice:"excel" choice:"csv" description:"File format"`

	rt *cli
}

// Execute implements goflags.Commander
func (c *HealthcareCommand) Execute(args []string) error {
	cfg, logger, err := c.rt.load()
	if err != nil {
		return err
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	filter, err := services.ParseHealthcareFilter(api.HealthcareFilterRequest{
		Diagnoses: c.Diagnoses,
		Genders:   c.Genders,
		Start:     c.Start,
		End:       c.End,
	})
	if err != nil {
		return err
	}

	opts, err := dataprocessing.PatientOptionsFrom(cfg.Healthcare)
	if err != nil {
		return err
	}
	patients, err := dataprocessing.GeneratePatients(opts)
	if err != nil {
		return err
	}
	svc, err := services.NewHealthcareService(patients, services.Instrumentation{}, logger)
	if err != nil {
		return err
	}

	artifact, err := svc.Export(ctx, filter, c.Format, 1)
	if err != nil {
		return err
	}
	return c.rt.save(artifact, logger)
}

// OccupationsCommand exports the ranked BLS occupation table.
type OccupationsCommand struct {
	SortBy string `long:"sort-by" default:"TOT_EMP" choice:"TOT_EMP" choice:"A_MEDIAN" description:"Ranking column"`

	rt *cli
}

// Execute implements goflags.Commander
func (c *OccupationsCommand) Execute(args []string) error {
	cfg, logger, err := c.rt.load()
	if err != nil {
		return err
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	sources := dataprocessing.SkillsSources{
		ONETDir: cfg.Data.ONETDir,
		ITUFile: cfg.Data.ITUFile,
		BLSFile: cfg.Data.BLSFile,
	}
	if err := validation.NewSourceValidator(logger).ValidateSkillsSources(sources); err != nil {
		return err
	}
	data, err := dataprocessing.LoadSkills(ctx, sources, logger)
	if err != nil {
		return err
	}
	svc := services.NewSkillsService(data, cfg.Dashboard, services.Instrumentation{}, logger)

	artifact, err := svc.ExportOccupations(ctx, c.SortBy, 1)
	if err != nil {
		return err
	}
	return c.rt.save(artifact, logger)
}

func buildParser(stdout io.Writer) *goflags.Parser {
	rt := &cli{globals: &GlobalFlags{}, stdout: stdout}

	parser := goflags.NewParser(rt.globals, goflags.Default)
	parser.Name = "pulse-export"
	parser.LongDescription = "Export dashboard data to CSV or Excel. " + contracts.GetVersionString()

	parser.AddCommand("healthcare", "Export filtered patient rows",
		"Export the synthetic patient rows that match the given filters.", &HealthcareCommand{rt: rt})
	parser.AddCommand("occupations", "Export the top occupations table",
		"Export the top BLS occupational groups ranked by employment or median wage.", &OccupationsCommand{rt: rt})

	return parser
}

func run(args []string, stdout io.Writer) error {
	_, err := buildParser(stdout).ParseArgs(args)
	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
