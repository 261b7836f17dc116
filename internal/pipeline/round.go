package pipeline

import "image"

// cornerRadiusFraction is the corner radius as a share of the side length.
// Fixed across sizes so the whole icon set keeps the same proportions.
const cornerRadiusFraction = 0.2

// roundCorners zeroes the alpha of every pixel whose center lies outside the
// rounded rectangle inscribed in the image. Pixels exactly on the arc stay
// opaque; the same rule holds at every size.
func roundCorners(img *image.NRGBA) {
	b := img.Bounds()
	side := b.Dx()
	if side <= 0 || b.Dy() != side {
		return
	}

	radius := cornerRadiusFraction * float64(side)
	fside := float64(side)

	for y := 0; y < side; y++ {
		py := float64(y) + 0.5
		for x := 0; x < side; x++ {
			px := float64(x) + 0.5

			var cx, cy float64
			switch {
			case px < radius && py < radius:
				cx, cy = radius, radius
			case px > fside-radius && py < radius:
				cx, cy = fside-radius, radius
			case px < radius && py > fside-radius:
				cx, cy = radius, fside-radius
			case px > fside-radius && py > fside-radius:
				cx, cy = fside-radius, fside-radius
			default:
				continue
			}

			dx := px - cx
			dy := py - cy
			if dx*dx+dy*dy > radius*radius {
				img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] = 0
			}
		}
	}
}
