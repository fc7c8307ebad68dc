package serve

import (
	"github.com/spf13/cobra"

	"github.com/welling-fm/fireinspect/internal/httpserver"
	"github.com/welling-fm/fireinspect/internal/runtime"
)

// Command returns the serve command
func Command(rc *runtime.Context) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the uploader page and artifact over HTTP",
		Long: `Serve output.page at /, output.artifact at /data.json and Prometheus
metrics at /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = rc.Settings.Server.Listen
			}
			srv := httpserver.New(httpserver.Config{
				Listen:       listen,
				Fs:           rc.Fs,
				PagePath:     rc.Settings.Output.Page,
				ArtifactPath: rc.Settings.Output.Artifact,
				Metrics:      rc.Metrics,
				Logger:       rc.Log("httpserver"),
			})
			rc.Printf("serving %s on http://%s/\n", rc.Settings.Output.Page, listen)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default server.listen)")

	return cmd
}
