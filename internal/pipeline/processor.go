package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dunamismax/iconforge/internal/domain"
)

var (
	ErrDecode       = errors.New("unreadable or unsupported source image")
	ErrInvalidImage = errors.New("source image has invalid dimensions")
	ErrWrite        = errors.New("write output")
)

// SquareOptions selects the normalization strategy applied before resizing.
type SquareOptions struct {
	Mode string
	// Background fills the contain-mode padding. nil keeps it transparent.
	Background *color.NRGBA
}

type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Renderer turns source bytes into a square master, then the master into
// per-size icon PNGs. Stages exchange encoded bytes so implementations can
// swap freely.
type Renderer interface {
	Squarify(ctx context.Context, source []byte, opts SquareOptions) (master []byte, side int, err error)
	RenderIcon(ctx context.Context, master []byte, spec domain.OutputSpec) ([]byte, error)
}

type Emitter interface {
	Emit(ctx context.Context, size int, data []byte) (domain.OutputFile, error)
}

type Archiver interface {
	Bundle(ctx context.Context, dir string, files []domain.OutputFile) (string, error)
}

type Processor struct {
	fetcher     Fetcher
	renderer    Renderer
	emitter     Emitter
	archiver    Archiver
	logger      *log.Logger
	tracer      trace.Tracer
	concurrency int
}

func NewLocalProcessor(logger *log.Logger, outputDir string, archiver Archiver, concurrency int) (*Processor, error) {
	renderer, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	if concurrency < 1 {
		concurrency = 1
	}

	return &Processor{
		fetcher:     LocalFileFetcher{},
		renderer:    renderer,
		emitter:     LocalFileEmitter{OutputDir: outputDir},
		archiver:    archiver,
		logger:      logger,
		tracer:      otel.Tracer("iconforge/pipeline"),
		concurrency: concurrency,
	}, nil
}

// Process runs the full pipeline: fetch, squarify, one render+emit per unique
// size, then the optional archive. The first error aborts the run; files
// already written stay on disk.
func (p *Processor) Process(ctx context.Context, req domain.Request) (domain.RunResult, error) {
	if err := req.Validate(); err != nil {
		return domain.RunResult{}, err
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("icon.mode", strings.ToLower(req.Mode)),
		attribute.Bool("icon.round", req.Round),
		attribute.Bool("icon.archive", req.Archive),
	))
	defer span.End()

	source, err := p.fetcher.Fetch(ctx, req.InputPath)
	if err != nil {
		return domain.RunResult{}, p.fail(span, fmt.Errorf("fetch stage: %w", err))
	}

	master, side, err := p.renderer.Squarify(ctx, source, SquareOptions{
		Mode:       strings.ToLower(req.Mode),
		Background: req.Background,
	})
	if err != nil {
		return domain.RunResult{}, p.fail(span, fmt.Errorf("squarify stage: %w", err))
	}
	span.SetAttributes(attribute.Int("icon.master_side", side))

	specs := req.Specs()
	files, err := p.renderAll(ctx, master, specs)
	if err != nil {
		return domain.RunResult{}, p.fail(span, err)
	}

	// Completion order varies under the fan-out; the reported list does not.
	sort.Slice(files, func(i, j int) bool { return files[i].Size < files[j].Size })

	result := domain.RunResult{Files: files}
	if req.Archive {
		archivePath, err := p.archive(ctx, req.OutputDir, files)
		if err != nil {
			return domain.RunResult{}, p.fail(span, err)
		}
		result.ArchivePath = archivePath
	}

	p.logger.Printf("run complete icons=%d master_side=%d mode=%s", len(files), side, strings.ToLower(req.Mode))
	return result, nil
}

func (p *Processor) renderAll(ctx context.Context, master []byte, specs []domain.OutputSpec) ([]domain.OutputFile, error) {
	if p.concurrency <= 1 || len(specs) == 1 {
		files := make([]domain.OutputFile, 0, len(specs))
		for _, spec := range specs {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			file, err := p.renderOne(ctx, master, spec)
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
		return files, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	files := make([]domain.OutputFile, 0, len(specs))
	sem := make(chan struct{}, p.concurrency)

	for _, spec := range specs {
		spec := spec
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			file, err := p.renderOne(ctx, master, spec)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			files = append(files, file)
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return files, nil
}

func (p *Processor) renderOne(ctx context.Context, master []byte, spec domain.OutputSpec) (domain.OutputFile, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.render", trace.WithAttributes(
		attribute.Int("icon.size", spec.Size),
	))
	defer span.End()

	data, err := p.renderer.RenderIcon(ctx, master, spec)
	if err != nil {
		return domain.OutputFile{}, p.fail(span, fmt.Errorf("render stage size=%d: %w", spec.Size, err))
	}

	file, err := p.emitter.Emit(ctx, spec.Size, data)
	if err != nil {
		return domain.OutputFile{}, p.fail(span, fmt.Errorf("emit stage size=%d: %w", spec.Size, err))
	}
	return file, nil
}

func (p *Processor) archive(ctx context.Context, dir string, files []domain.OutputFile) (string, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.archive", trace.WithAttributes(
		attribute.Int("icon.count", len(files)),
	))
	defer span.End()

	if p.archiver == nil {
		return "", p.fail(span, fmt.Errorf("archive stage: %w: no archiver configured", ErrWrite))
	}

	path, err := p.archiver.Bundle(ctx, dir, files)
	if err != nil {
		return "", p.fail(span, fmt.Errorf("archive stage: %w: %v", ErrWrite, err))
	}
	return path, nil
}

func (p *Processor) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

type LocalFileFetcher struct{}

func (LocalFileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDecode, path, err)
	}
	return data, nil
}

type LocalFileEmitter struct {
	OutputDir string
}

func (e LocalFileEmitter) Emit(_ context.Context, size int, data []byte) (domain.OutputFile, error) {
	if strings.TrimSpace(e.OutputDir) == "" {
		return domain.OutputFile{}, fmt.Errorf("%w: output directory is required", ErrWrite)
	}

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return domain.OutputFile{}, fmt.Errorf("%w: create output dir: %v", ErrWrite, err)
	}

	fullPath := filepath.Join(e.OutputDir, IconFileName(size))
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return domain.OutputFile{}, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return domain.OutputFile{Size: size, Path: fullPath, Bytes: len(data)}, nil
}

// IconFileName is the deterministic per-size output name, so re-runs
// overwrite rather than accumulate.
func IconFileName(size int) string {
	return fmt.Sprintf("icon%d.png", size)
}
