package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/dunamismax/iconforge/internal/domain"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// stdRenderer is the pure-Go renderer. Decodable inputs are png, jpeg, gif,
// webp, bmp and tiff; output is always PNG.
type stdRenderer struct{}

func (stdRenderer) Squarify(ctx context.Context, source []byte, opts SquareOptions) ([]byte, int, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	src, err := decodeNRGBA(source)
	if err != nil {
		return nil, 0, err
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrInvalidImage, w, h)
	}

	var square *image.NRGBA
	if opts.Mode == domain.ModeCover {
		square = squareCover(src, w, h)
	} else {
		square = squareContain(src, w, h, opts.Background)
	}

	data, err := encodePNG(square)
	if err != nil {
		return nil, 0, err
	}
	return data, square.Bounds().Dx(), nil
}

func (stdRenderer) RenderIcon(ctx context.Context, master []byte, spec domain.OutputSpec) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if spec.Size <= 0 {
		return nil, fmt.Errorf("icon size must be positive, got %d", spec.Size)
	}

	src, err := decodeNRGBA(master)
	if err != nil {
		return nil, err
	}

	dst := image.NewNRGBA(image.Rect(0, 0, spec.Size, spec.Size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if spec.Round {
		roundCorners(dst)
	}
	return encodePNG(dst)
}

// squareContain centers the source on a max(w,h) canvas. The background, when
// given, fills the whole canvas first; the source is then copied with Src so
// its own alpha survives and the background shows only in the padding.
func squareContain(src *image.NRGBA, w, h int, bg *color.NRGBA) *image.NRGBA {
	side := w
	if h > side {
		side = h
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, side, side))
	if bg != nil {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(*bg), image.Point{}, draw.Src)
	}

	offset := image.Pt((side-w)/2, (side-h)/2)
	draw.Draw(canvas, src.Bounds().Add(offset), src, src.Bounds().Min, draw.Src)
	return canvas
}

// squareCover keeps the largest centered min(w,h) crop.
func squareCover(src *image.NRGBA, w, h int) *image.NRGBA {
	side := w
	if h < side {
		side = h
	}

	out := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.Draw(out, out.Bounds(), src, image.Pt((w-side)/2, (h-side)/2), draw.Src)
	return out
}

func decodeNRGBA(data []byte) (*image.NRGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
