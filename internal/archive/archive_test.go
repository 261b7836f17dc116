package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dunamismax/iconforge/internal/domain"
)

func TestZipBundlerRoundTrip(t *testing.T) {
	dir := t.TempDir()

	contents := map[string][]byte{
		"icon16.png":  bytes.Repeat([]byte{0x16}, 400),
		"icon128.png": bytes.Repeat([]byte{0x28}, 4000),
	}
	var files []domain.OutputFile
	for name, data := range contents {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
		files = append(files, domain.OutputFile{Path: path, Bytes: len(data)})
	}

	bundlePath, err := ZipBundler{}.Bundle(context.Background(), dir, files)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if bundlePath != filepath.Join(dir, BundleName) {
		t.Fatalf("unexpected bundle path %s", bundlePath)
	}

	zr, err := zip.OpenReader(bundlePath)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != len(contents) {
		t.Fatalf("expected %d entries, got %d", len(contents), len(zr.File))
	}
	for _, entry := range zr.File {
		want, ok := contents[entry.Name]
		if !ok {
			t.Fatalf("unexpected archive entry %s", entry.Name)
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", entry.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", entry.Name, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("entry %s content mismatch", entry.Name)
		}
	}
}

func TestZipBundlerMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ZipBundler{}.Bundle(context.Background(), dir, []domain.OutputFile{
		{Path: filepath.Join(dir, "missing.png")},
	})
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}
