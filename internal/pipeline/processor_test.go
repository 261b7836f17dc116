package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/dunamismax/iconforge/internal/domain"
)

type zipBundlerStub struct{}

func (zipBundlerStub) Bundle(_ context.Context, dir string, files []domain.OutputFile) (string, error) {
	bundlePath := filepath.Join(dir, "icons_bundle.zip")

	out, err := os.Create(bundlePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range files {
		w, err := zw.Create(filepath.Base(file.Path))
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(file.Path)
		if err != nil {
			return "", err
		}
		if _, err := w.Write(data); err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return bundlePath, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeSourcePNG(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "source.png")
	data := buildTestPNG(t, 200, 100, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write source image: %v", err)
	}
	return path
}

func verifyIconFile(t *testing.T, path string, size int) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if cfg.Width != size || cfg.Height != size {
		t.Fatalf("%s is %dx%d, want %dx%d", path, cfg.Width, cfg.Height, size, size)
	}
}

func TestProcessorEndToEnd(t *testing.T) {
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, "icons")
	inputPath := writeSourcePNG(t, tmp)

	processor, err := NewLocalProcessor(testLogger(), outputDir, zipBundlerStub{}, 1)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	result, err := processor.Process(context.Background(), domain.Request{
		InputPath: inputPath,
		OutputDir: outputDir,
		Mode:      domain.ModeContain,
		Sizes:     []int{128, 16, 128},
		Archive:   true,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	// Duplicates collapse and the result is sorted by size.
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 output files, got %d", len(result.Files))
	}
	if result.Files[0].Size != 16 || result.Files[1].Size != 128 {
		t.Fatalf("expected sizes [16 128], got [%d %d]", result.Files[0].Size, result.Files[1].Size)
	}

	verifyIconFile(t, filepath.Join(outputDir, "icon16.png"), 16)
	verifyIconFile(t, filepath.Join(outputDir, "icon128.png"), 128)

	if result.ArchivePath == "" {
		t.Fatal("expected an archive path")
	}
	zr, err := zip.OpenReader(result.ArchivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 archive entries, got %d", len(zr.File))
	}

	// Icons stay on disk beside the archive; archiving is additive.
	if _, err := os.Stat(filepath.Join(outputDir, "icon16.png")); err != nil {
		t.Fatalf("expected icon16.png to remain after archiving: %v", err)
	}
}

func TestProcessorNoArchive(t *testing.T) {
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, "icons")
	inputPath := writeSourcePNG(t, tmp)

	processor, err := NewLocalProcessor(testLogger(), outputDir, zipBundlerStub{}, 1)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	result, err := processor.Process(context.Background(), domain.Request{
		InputPath: inputPath,
		OutputDir: outputDir,
		Mode:      domain.ModeCover,
		Sizes:     []int{64},
		Archive:   false,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.ArchivePath != "" {
		t.Fatalf("expected no archive path, got %s", result.ArchivePath)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "icons_bundle.zip")); !os.IsNotExist(err) {
		t.Fatalf("expected no archive on disk, stat err=%v", err)
	}
	verifyIconFile(t, filepath.Join(outputDir, "icon64.png"), 64)
}

func TestProcessorConcurrentFanOut(t *testing.T) {
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, "icons")
	inputPath := writeSourcePNG(t, tmp)

	processor, err := NewLocalProcessor(testLogger(), outputDir, zipBundlerStub{}, 4)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	result, err := processor.Process(context.Background(), domain.Request{
		InputPath: inputPath,
		OutputDir: outputDir,
		Mode:      domain.ModeContain,
		Sizes:     []int{128, 48, 16, 32},
		Archive:   false,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	want := []int{16, 32, 48, 128}
	if len(result.Files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(result.Files))
	}
	for i, file := range result.Files {
		if file.Size != want[i] {
			t.Fatalf("files[%d].Size = %d, want %d (result must sort by size)", i, file.Size, want[i])
		}
		verifyIconFile(t, file.Path, want[i])
	}
}

func TestProcessorIdempotentReruns(t *testing.T) {
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, "icons")
	inputPath := writeSourcePNG(t, tmp)

	processor, err := NewLocalProcessor(testLogger(), outputDir, zipBundlerStub{}, 1)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	req := domain.Request{
		InputPath: inputPath,
		OutputDir: outputDir,
		Mode:      domain.ModeContain,
		Sizes:     []int{16, 32},
		Round:     true,
		Archive:   false,
	}

	if _, err := processor.Process(context.Background(), req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(outputDir, "icon16.png"))
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}

	if _, err := processor.Process(context.Background(), req); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(outputDir, "icon16.png"))
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("expected byte-identical output across reruns")
	}
}

func TestProcessorMissingInputFailsWithDecodeError(t *testing.T) {
	tmp := t.TempDir()
	outputDir := filepath.Join(tmp, "icons")

	processor, err := NewLocalProcessor(testLogger(), outputDir, zipBundlerStub{}, 1)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	_, err = processor.Process(context.Background(), domain.Request{
		InputPath: filepath.Join(tmp, "does-not-exist.png"),
		OutputDir: outputDir,
		Mode:      domain.ModeContain,
		Sizes:     []int{16},
		Archive:   true,
	})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	// Fail-fast: nothing was written.
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, stat err=%v", err)
	}
}

func TestProcessorRejectsInvalidRequest(t *testing.T) {
	processor, err := NewLocalProcessor(testLogger(), t.TempDir(), zipBundlerStub{}, 1)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}

	_, err = processor.Process(context.Background(), domain.Request{
		InputPath: "source.png",
		OutputDir: "out",
		Mode:      "stretch",
		Sizes:     []int{16},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
