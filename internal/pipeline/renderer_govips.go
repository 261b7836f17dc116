//go:build govips && cgo

package pipeline

import (
	"context"
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/dunamismax/iconforge/internal/domain"
)

type govipsRenderer struct{}

func (govipsRenderer) Squarify(ctx context.Context, source []byte, opts SquareOptions) ([]byte, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	img, err := vips.NewImageFromBuffer(source)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer img.Close()

	w := img.Width()
	h := img.Height()
	if w <= 0 || h <= 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrInvalidImage, w, h)
	}

	var side int
	if opts.Mode == domain.ModeCover {
		side = w
		if h < side {
			side = h
		}
		if err := img.ExtractArea((w-side)/2, (h-side)/2, side, side); err != nil {
			return nil, 0, fmt.Errorf("center-crop source: %w", err)
		}
	} else {
		side = w
		if h > side {
			side = h
		}
		if !img.HasAlpha() {
			if err := img.AddAlpha(); err != nil {
				return nil, 0, fmt.Errorf("add alpha band: %w", err)
			}
		}
		bg := &vips.ColorRGBA{}
		if opts.Background != nil {
			bg = &vips.ColorRGBA{
				R: opts.Background.R,
				G: opts.Background.G,
				B: opts.Background.B,
				A: opts.Background.A,
			}
		}
		if err := img.EmbedBackgroundRGBA((side-w)/2, (side-h)/2, side, side, bg); err != nil {
			return nil, 0, fmt.Errorf("pad source to square: %w", err)
		}
	}

	data, _, err := img.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, 0, fmt.Errorf("encode png: %w", err)
	}
	return data, side, nil
}

func (govipsRenderer) RenderIcon(ctx context.Context, master []byte, spec domain.OutputSpec) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if spec.Size <= 0 {
		return nil, fmt.Errorf("icon size must be positive, got %d", spec.Size)
	}

	// The master is already square, so forcing both dimensions cannot distort.
	img, err := vips.NewThumbnailWithSizeFromBuffer(master, spec.Size, spec.Size, vips.InterestingNone, vips.SizeForce)
	if err != nil {
		return nil, fmt.Errorf("resize master: %w", err)
	}
	defer img.Close()

	data, _, err := img.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	if !spec.Round {
		return data, nil
	}

	// Corner masking runs on the exported pixels so both renderers clip
	// identically.
	decoded, err := decodeNRGBA(data)
	if err != nil {
		return nil, err
	}
	roundCorners(decoded)
	return encodePNG(decoded)
}
