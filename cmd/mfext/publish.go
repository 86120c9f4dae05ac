package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/artifact"
	"github.com/kyori-mfv/mfext/internal/build"
)

func publishCmd(g *globalFlags) *cobra.Command {
	var (
		bucket      string
		prefix      string
		region      string
		endpoint    string
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload static assets to S3",
		Long: `Upload the built static assets (dist/public) to an S3-compatible bucket.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN. The bucket, prefix, region and endpoint default to the
publish section of mfext.json.

Examples:
  mfext publish --bucket=my-assets --prefix=static
  mfext publish --endpoint=http://localhost:9000 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := loadProject(cmd, g, map[string]string{
				"publish.bucket":   "bucket",
				"publish.prefix":   "prefix",
				"publish.region":   "region",
				"publish.endpoint": "endpoint",
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := artifact.New(artifact.NewS3Client(cfg.Publish), artifact.Options{
				Bucket:      cfg.Publish.Bucket,
				Prefix:      cfg.Publish.Prefix,
				Concurrency: concurrency,
				DryRun:      dryRun,
				Immutable:   []string{build.ClientWasm, build.WasmExec},
			})
			result, err := p.Publish(ctx, cfg.StaticOutputPath())
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Println()
				for _, o := range result.Objects {
					info("%s  %s  (%s)", o.Key, o.ContentType, humanize.Bytes(uint64(o.Size)))
				}
				fmt.Println()
				success("Would upload %d objects (%s) to s3://%s", len(result.Objects), humanize.Bytes(uint64(result.Bytes)), cfg.Publish.Bucket)
				return nil
			}
			success("Uploaded %d objects (%s) to s3://%s in %s",
				len(result.Objects), humanize.Bytes(uint64(result.Bytes)), cfg.Publish.Bucket,
				result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix")
	cmd.Flags().StringVar(&region, "region", "", "Bucket region")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint (MinIO, R2)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List objects without uploading")
	cmd.Flags().IntVar(&concurrency, "concurrency", artifact.DefaultConcurrency, "Parallel uploads")
	return cmd
}
