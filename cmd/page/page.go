package page

import (
	"github.com/spf13/cobra"

	uploader "github.com/welling-fm/fireinspect/internal/page"
	"github.com/welling-fm/fireinspect/internal/report"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// Command returns the page command
func Command(rc *runtime.Context) *cobra.Command {
	var artifact, out, sdk string

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Render the uploader page from an existing artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if artifact == "" {
				artifact = rc.Settings.Output.Artifact
			}
			if out == "" {
				out = rc.Settings.Output.Page
			}
			reports, err := report.ReadArtifact(rc.Fs, artifact)
			if err != nil {
				return err
			}
			cfg := rc.PageConfig()
			cfg.SDKVersion = sdk
			if err := uploader.WriteFile(rc.Fs, out, reports, cfg); err != nil {
				return err
			}
			rc.Printf("wrote uploader page for %d reports to %s\n", len(report.Dedupe(reports)), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact to read (default output.artifact)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Page to write (default output.page)")
	cmd.Flags().StringVar(&sdk, "sdk-version", uploader.DefaultSDKVersion, "Firebase web SDK version")

	return cmd
}
