// Package main provides the CLI entry point for blobbench, a
// benchmarking and compatibility harness for Azure Blob storage
// emulators.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/blobbench/bench"
	"github.com/user/blobbench/blobclient"
	"github.com/user/blobbench/report"
	"github.com/user/blobbench/server"
	"github.com/user/blobbench/workload"
)

// Server labels. The candidate is the native binary under development;
// the baseline is the Azurite (Node.js) reference implementation.
const (
	candidateLabel = "azurite-rs"
	baselineLabel  = "azurite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Server processes are spawned under this context, so an interrupt
	// tears them down before the driver exits.
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("benchmark failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "blobbench",
		Short: "Benchmark Azure Blob storage emulators",
		Long: `Blobbench compares blob-storage emulators by spawning each one,
driving identical read/write workloads through the Azure Blob SDK, and
rendering a throughput comparison table with per-cell speedup ratios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		serverBin   string
		baselineDir string
		operations  int
		sizeList    string
		clientList  string
		only        string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the write/read benchmark matrix against both servers",
		Long: `Run every (payload size, concurrency) combination as a write batch
and a read batch against the candidate server and the Azurite baseline,
then print the combined comparison table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, runConfig{
				serverBin:   serverBin,
				baselineDir: baselineDir,
				operations:  operations,
				sizeList:    sizeList,
				clientList:  clientList,
				only:        only,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&serverBin, "server-bin", "./target/release/azurite-rs",
		"Path to the candidate server binary")
	flags.StringVar(&baselineDir, "baseline-dir", "../Azurite",
		"Path to the Azurite (Node.js) checkout")
	flags.IntVar(&operations, "operations", 1000,
		"Number of operations per benchmark batch")
	flags.StringVar(&sizeList, "sizes", "1024,10240,102400,1048576",
		"Comma-separated blob sizes in bytes")
	flags.StringVar(&clientList, "clients", "1,4,16",
		"Comma-separated concurrency levels")
	flags.StringVar(&only, "only", "",
		"Only benchmark one server (azurite-rs or azurite)")

	return cmd
}

type runConfig struct {
	serverBin   string
	baselineDir string
	operations  int
	sizeList    string
	clientList  string
	only        string
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg runConfig,
) error {
	sizes, err := workload.ParseSizes(cfg.sizeList)
	if err != nil {
		return fmt.Errorf("parse --sizes: %w", err)
	}

	clients, err := workload.ParseClients(cfg.clientList)
	if err != nil {
		return fmt.Errorf("parse --clients: %w", err)
	}

	matrix, err := workload.NewMatrix(sizes, clients, cfg.operations)
	if err != nil {
		return err
	}

	if cfg.only != "" && cfg.only != candidateLabel && cfg.only != baselineLabel {
		return fmt.Errorf("unknown --only value %q", cfg.only)
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.Any("sizes", matrix.Sizes),
		slog.Any("clients", matrix.Clients),
		slog.Int("operations", matrix.Operations),
	)

	mgr := server.NewManager(logger)

	type target struct {
		label string
		spec  func(port int) server.LaunchSpec
	}

	// Passes run strictly sequentially; two servers never coexist.
	targets := []target{
		{candidateLabel, func(port int) server.LaunchSpec {
			return server.CandidateSpec(cfg.serverBin, port)
		}},
		{baselineLabel, func(port int) server.LaunchSpec {
			return server.BaselineSpec(cfg.baselineDir, port)
		}},
	}

	var (
		results []bench.Result
		failed  bool
	)

	for _, tgt := range targets {
		if cfg.only != "" && cfg.only != tgt.label {
			continue
		}

		passResults, err := runPass(ctx, logger, mgr, tgt.label, tgt.spec, matrix)
		if err != nil {
			// A failed pass contributes no results but does not abort
			// the comparison against the other server.
			logger.Error("benchmark pass failed",
				slog.String("server", tgt.label),
				slog.String("error", err.Error()),
			)

			var startErr *server.StartupError
			if errors.As(err, &startErr) {
				fmt.Fprint(os.Stderr, startErr.Diagnostics())
			}

			failed = true

			continue
		}

		results = append(results, passResults...)
	}

	if len(results) > 0 {
		if err := report.Generate(os.Stdout, results, report.Options{
			Candidate: candidateLabel,
			Baseline:  baselineLabel,
		}); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if failed {
		return fmt.Errorf("one or more benchmark passes failed")
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("results", len(results)))

	return nil
}

// runPass benchmarks the full matrix against one server. The server is
// stopped on every exit path; a redundant Stop is a no-op.
func runPass(
	ctx context.Context,
	logger *slog.Logger,
	mgr *server.Manager,
	label string,
	makeSpec func(port int) server.LaunchSpec,
	matrix workload.Matrix,
) ([]bench.Result, error) {
	port, err := server.FreePort()
	if err != nil {
		return nil, fmt.Errorf("allocate port for %s: %w", label, err)
	}

	handle, err := mgr.Start(ctx, makeSpec(port))
	if err != nil {
		return nil, err
	}
	defer mgr.Stop(handle)

	creds := server.NewCredentials(handle)

	client, err := blobclient.New(creds.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("build client for %s: %w", label, err)
	}

	results := make([]bench.Result, 0, 2*len(matrix.Cells()))

	for _, cell := range matrix.Cells() {
		spec := bench.Spec{
			Container:  workload.ContainerName(cell.Size, cell.Clients),
			BlobSize:   cell.Size,
			Operations: matrix.Operations,
			Clients:    cell.Clients,
		}

		logger.InfoContext(ctx, "running cell",
			slog.String("server", label),
			slog.Int64("size", cell.Size),
			slog.Int("clients", cell.Clients),
		)

		elapsed, err := bench.RunWrite(ctx, client, spec)
		if err != nil {
			return nil, failPass(mgr, logger, handle, err)
		}

		writeResult, err := bench.NewResult(bench.OpWrite, label, spec, elapsed)
		if err != nil {
			return nil, failPass(mgr, logger, handle, err)
		}

		results = append(results, writeResult)

		elapsed, err = bench.RunRead(ctx, client, spec)
		if err != nil {
			return nil, failPass(mgr, logger, handle, err)
		}

		readResult, err := bench.NewResult(bench.OpRead, label, spec, elapsed)
		if err != nil {
			return nil, failPass(mgr, logger, handle, err)
		}

		results = append(results, readResult)
	}

	mgr.Stop(handle)

	return results, nil
}

// failPass stops the server and surfaces its captured output so a
// mid-batch failure still leaves usable diagnostics behind.
func failPass(
	mgr *server.Manager,
	logger *slog.Logger,
	h *server.Handle,
	err error,
) error {
	mgr.Stop(h)

	stdout, stderr := h.Output()
	if stdout != "" {
		logger.Error("server stdout",
			slog.String("server", h.Label), slog.String("output", stdout))
	}
	if stderr != "" {
		logger.Error("server stderr",
			slog.String("server", h.Label), slog.String("output", stderr))
	}

	return err
}
