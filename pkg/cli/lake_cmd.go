package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"lake-crud/internal/lake"
)

func newLakeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lake",
		Short: "Inspect the DuckLake catalog used by the duckdb driver",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the lake data path on S3-compatible storage is reachable",
		Long: `Checks that the bucket of lake.data_path exists and can be listed with
the configured lake.s3 credentials, before any DuckLake catalog is attached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			l := settings.Lake
			if !l.Enabled() {
				return errors.New("no lake configured: set lake.metadata_path")
			}
			if !strings.HasPrefix(l.DataPath, "s3://") {
				return errors.New("lake data path is not on s3; nothing to check")
			}
			if !l.S3.Configured() {
				return errors.New("lake.s3.key_id and lake.s3.secret are required")
			}

			res, err := lake.NewS3Probe(l.S3).Check(cmd.Context(), l.DataPath)
			if err != nil {
				return err
			}
			logger.Info("lake data path reachable", "path", res.Path, "has_objects", res.HasObjects)

			state := "empty"
			if res.HasObjects {
				state = "has data"
			}
			return printResult(cmd, map[string]any{"path": res.Path, "reachable": true, "has_objects": res.HasObjects},
				"Lake data path %s is reachable (%s).", res.Path, state)
		},
	})

	return cmd
}
