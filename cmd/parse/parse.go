package parse

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/page"
	"github.com/welling-fm/fireinspect/internal/report"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// Command returns the parse command
func Command(rc *runtime.Context) *cobra.Command {
	var writePage bool

	cmd := &cobra.Command{
		Use:   "parse [DIR]",
		Short: "Parse inspection reports into the JSON artifact",
		Long: `Parse every report file in DIR (default input.dir) and write the
reports to output.artifact. With --page the uploader page is written too.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rc.Settings.Input.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			return run(cmd.Context(), rc, dir, writePage)
		},
	}

	cmd.Flags().BoolVar(&writePage, "page", false, "Also write the uploader page to output.page")

	return cmd
}

func run(ctx context.Context, rc *runtime.Context, dir string, writePage bool) error {
	log := rc.Log("parse")

	scanner, err := rc.Scanner()
	if err != nil {
		return err
	}
	res, err := scanner.Scan(ctx, dir)
	if err != nil {
		return err
	}

	for _, r := range res.Reports {
		s := r.Summary()
		rc.Printf("%s (%s): %d devices, %d lights, %d notes\n", r.BuildingName, r.FileName, s.Devices, s.Lights, s.Notes)
	}
	for _, s := range res.Skipped {
		rc.Printf("skipped %s: %s\n", s.File, s.Reason)
	}

	artifact := rc.Settings.Output.Artifact
	if err := report.WriteArtifact(rc.Fs, artifact, res.Reports); err != nil {
		return err
	}
	rc.Printf("wrote %d reports from %d files to %s\n", len(res.Reports), res.Files, artifact)
	log.Info("parse finished",
		logger.String("dir", dir),
		logger.Int("files", res.Files),
		logger.Int("reports", len(res.Reports)),
		logger.Int("skipped", len(res.Skipped)))

	if !writePage {
		return nil
	}
	if err := page.WriteFile(rc.Fs, rc.Settings.Output.Page, res.Reports, rc.PageConfig()); err != nil {
		return err
	}
	rc.Printf("wrote uploader page to %s\n", rc.Settings.Output.Page)
	return nil
}
