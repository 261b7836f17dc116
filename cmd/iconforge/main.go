package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dunamismax/iconforge/internal/archive"
	"github.com/dunamismax/iconforge/internal/cli"
	"github.com/dunamismax/iconforge/internal/config"
	"github.com/dunamismax/iconforge/internal/pipeline"
	"github.com/dunamismax/iconforge/internal/telemetry"
)

const (
	exitUsage        = 2
	exitDecode       = 3
	exitInvalidImage = 4
	exitWrite        = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := log.New(os.Stderr, "[iconforge] ", log.LstdFlags|log.Lmsgprefix)

	req, err := cli.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "iconforge: %v\n", err)
		return exitUsage
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Trace, logger)
	if err != nil {
		logger.Printf("tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			logger.Printf("tracing shutdown: %v", err)
		}
	}()

	if err := pipeline.Startup(); err != nil {
		logger.Printf("initialize image runtime: %v", err)
		return 1
	}
	defer pipeline.Shutdown()

	processor, err := pipeline.NewLocalProcessor(logger, req.OutputDir, archive.ZipBundler{}, cfg.Render.Concurrency)
	if err != nil {
		logger.Printf("initialize pipeline: %v", err)
		return 1
	}

	result, err := processor.Process(ctx, req)
	if err != nil {
		logger.Printf("run failed: %v", err)
		switch {
		case errors.Is(err, pipeline.ErrDecode):
			return exitDecode
		case errors.Is(err, pipeline.ErrInvalidImage):
			return exitInvalidImage
		case errors.Is(err, pipeline.ErrWrite):
			return exitWrite
		}
		return 1
	}

	// Print the bundle path (or the outdir without one) for scripts to capture.
	if result.ArchivePath != "" {
		fmt.Println(result.ArchivePath)
	} else {
		fmt.Println(req.OutputDir)
	}
	return 0
}
