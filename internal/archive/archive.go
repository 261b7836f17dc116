// Package archive bundles emitted icon files into a zip next to them.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"github.com/dunamismax/iconforge/internal/domain"
)

const BundleName = "icons_bundle.zip"

// ZipBundler writes BundleName into the output directory. The bundled files
// stay on disk; archiving is additive.
type ZipBundler struct{}

func (ZipBundler) Bundle(ctx context.Context, dir string, files []domain.OutputFile) (string, error) {
	bundlePath := filepath.Join(dir, BundleName)

	out, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for _, file := range files {
		select {
		case <-ctx.Done():
			zw.Close()
			return "", ctx.Err()
		default:
		}

		if err := addFile(zw, file.Path); err != nil {
			zw.Close()
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("flush archive: %w", err)
	}
	return bundlePath, nil
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for archiving: %w", path, err)
	}
	defer src.Close()

	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", path, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("compress %s: %w", path, err)
	}
	return nil
}
