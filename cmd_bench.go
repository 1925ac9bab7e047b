package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/twmb/franz-go/pkg/kadm"

	"github.com/pliu/splayseq/pkg/bench"
	"github.com/pliu/splayseq/pkg/clients"
	"github.com/pliu/splayseq/pkg/config"
	"github.com/pliu/splayseq/pkg/reporter"
)

type benchOptions struct {
	ops     int
	seed    int64
	verify  bool
	format  string
	publish bool
}

func newBenchCommand(root *rootOptions) *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a random operation mix against a sequence and report timings",
		Long: `Fill a sequence, apply a weighted random mix of operations to it and
report per-operation latency. With --verify every operation is mirrored on a
slice and the tree is checked for consistency as the run goes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.ops, "ops", config.DefaultOperations, "Number of operations to apply")
	flags.Int64Var(&opts.seed, "seed", config.DefaultSeed, "Random seed")
	flags.BoolVar(&opts.verify, "verify", false, "Check every operation against a slice model")
	flags.StringVar(&opts.format, "format", config.DefaultReportFormat, "Report format: table, json or yaml")
	flags.BoolVar(&opts.publish, "publish", false, "Publish the report to Kafka")
	return cmd
}

// loadBenchConfig reads the config file and applies the flags that were set
// on the command line.
func loadBenchConfig(cmd *cobra.Command, root *rootOptions, opts *benchOptions) (*config.BenchConfig, error) {
	if root.configPath != "" {
		log.Info().Str("path", root.configPath).Msg("Using config file")
	}
	cfg, err := config.LoadBenchConfig(root.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ops") {
		cfg.Operations = opts.ops
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("verify") {
		cfg.Verify = opts.verify
	}
	cfg.Report = cfg.GetReportConfig()
	if flags.Changed("format") {
		cfg.Report.Format = opts.format
	}
	if flags.Changed("publish") {
		cfg.Report.Publish = opts.publish
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBench(cmd *cobra.Command, root *rootOptions, opts *benchOptions) error {
	cfg, err := loadBenchConfig(cmd, root, opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	stopMetrics := startMetricsServer(root.metricsPort)
	defer stopMetrics()

	runner, err := bench.NewRunner(cfg)
	if err != nil {
		return err
	}
	report, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, bench.ErrVerification) {
			color.New(color.FgRed, color.Bold).Fprintln(cmd.ErrOrStderr(), "verification failed")
		}
		return err
	}

	reportCfg := cfg.GetReportConfig()
	if err := reporter.NewWriterReporter(cmd.OutOrStdout(), reportCfg.GetFormat()).Publish(ctx, report); err != nil {
		return err
	}
	if reportCfg.Publish {
		if err := publishReport(ctx, reportCfg, report); err != nil {
			return err
		}
	}
	printStatus(cmd.ErrOrStderr(), report)
	return nil
}

func publishReport(ctx context.Context, cfg *config.ReportConfig, report *bench.Report) error {
	client, err := clients.GetFranzGoClient(cfg.GetKafkaConfig())
	if err != nil {
		return fmt.Errorf("create kafka client: %w", err)
	}
	defer client.Close()

	tm := reporter.NewTopicManager(client, kadm.NewClient(client), cfg)
	if err := tm.EnsureTopic(ctx); err != nil {
		return fmt.Errorf("ensure report topic: %w", err)
	}
	return reporter.NewKafkaReporter(client, cfg.GetTopic()).Publish(ctx, report)
}

func printStatus(w io.Writer, report *bench.Report) {
	ops := humanize.Comma(int64(report.Operations))
	if report.Verified {
		color.New(color.FgGreen).Fprintf(w, "verified %s operations against the model\n", ops)
		return
	}
	color.New(color.FgYellow).Fprintf(w, "%s operations applied without verification\n", ops)
}
