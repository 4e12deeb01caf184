// Package command defines the gpumon CLI.
package command

import (
	"github.com/urfave/cli"

	cmdrun "github.com/damionirving/gpumon-aws/cmd/gpumon/run"
	cmdscan "github.com/damionirving/gpumon-aws/cmd/gpumon/scan"
	"github.com/damionirving/gpumon-aws/pkg/config"
	"github.com/damionirving/gpumon-aws/version"
)

const usage = `
# to publish GPU/CPU/memory usage to CloudWatch every 10 seconds
gpumon run

# to print a one-shot snapshot of the current readings
gpumon scan
`

func App() *cli.App {
	app := cli.NewApp()

	app.Name = "gpumon"
	app.Version = version.Version
	app.Usage = usage
	app.Description = "EC2 GPU usage monitor for CloudWatch"

	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "starts the monitoring loop in the foreground",
			Action: cmdrun.Command,
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  "sample-interval",
					Usage: "time between two sampling cycles",
					Value: config.DefaultSampleInterval,
				},
				&cli.IntFlag{
					Name:  "storage-resolution",
					Usage: "CloudWatch storage resolution in seconds (1 for high-resolution, up to 60)",
					Value: config.DefaultStorageResolution,
				},
				&cli.StringFlag{
					Name:  "namespace",
					Usage: "CloudWatch namespace to publish the metrics under",
					Value: config.DefaultNamespace,
				},
				&cli.DurationFlag{
					Name:  "retention-period",
					Usage: "set the time period to retain the local sample history for",
					Value: config.DefaultRetentionPeriod,
				},
				&cli.StringFlag{
					Name:  "listen-address",
					Usage: "address for /healthz and /metrics (set empty to disable the server)",
					Value: "127.0.0.1:15132",
				},
				&cli.StringFlag{
					Name:  "db-file",
					Usage: "sqlite file for the local sample history (set empty to disable)",
					Value: "",
				},
				&cli.StringFlag{
					Name:  "log-file",
					Usage: "set the log file path (set empty to stdout/stderr)",
					Value: "",
				},
				&cli.StringFlag{
					Name:  "log-level,l",
					Usage: "set the logging level [debug, info, warn, error, fatal, panic, dpanic]",
				},
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "collect and log samples without publishing to CloudWatch",
				},
			},
		},
		{
			Name:   "scan",
			Usage:  "prints a one-shot snapshot of the current GPU and host readings",
			Action: cmdscan.Command,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level,l",
					Usage: "set the logging level [debug, info, warn, error, fatal, panic, dpanic]",
				},
			},
		},
	}

	return app
}
