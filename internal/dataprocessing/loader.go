package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"pulseboard/internal/dataset"
)

// SkillsSources locates the Digital Skills Pulse input files.
type SkillsSources struct {
	ONETDir string
	ITUFile string
	BLSFile string
}

// SkillsData is the set of base datasets behind the skills dashboard.
type SkillsData struct {
	BLS        *dataset.Dataset
	BLSGrouped *dataset.Dataset
	ITU        *dataset.Dataset
	ONET       *ONET
}

// LoadSkills reads the three skills sources concurrently. Any failure is
// fatal and cancels the remaining loads.
func LoadSkills(ctx context.Context, src SkillsSources, logger *slog.Logger) (*SkillsData, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "loader"))
	start := time.Now()

	var data SkillsData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bls, err := LoadBLS(gctx, src.BLSFile, logger)
		if err != nil {
			return err
		}
		grouped, err := GroupBLS(bls)
		if err != nil {
			return err
		}
		data.BLS, data.BLSGrouped = bls, grouped
		return nil
	})
	g.Go(func() error {
		itu, err := LoadITU(gctx, src.ITUFile, logger)
		if err != nil {
			return err
		}
		data.ITU = itu
		return nil
	})
	g.Go(func() error {
		onet, err := LoadONET(gctx, src.ONETDir, logger)
		if err != nil {
			return err
		}
		data.ONET = onet
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load skills data: %w", err)
	}

	logger.InfoContext(ctx, "skills data loaded",
		slog.Int("bls_rows", data.BLS.Len()),
		slog.Int("bls_groups", data.BLSGrouped.Len()),
		slog.Int("itu_countries", data.ITU.Len()),
		slog.Int("onet_occupations", data.ONET.Occupations.Len()),
		slog.Duration("duration", time.Since(start)))

	return &data, nil
}
