package main

import (
	"image"
	"image/color"

	"github.com/furui/fastnoiselite-go"
)

// noiseImage renders fractal simplex noise into a grayscale image.
func noiseImage(size int) *image.RGBA {
	noise := fastnoiselite.NewNoise()
	noise.SetNoiseType(fastnoiselite.NoiseTypeOpenSimplex2)
	noise.FractalType = fastnoiselite.FractalTypeFBm
	noise.Frequency = 0.02
	noise.SetFractalOctaves(3)

	img := image.NewRGBA(image.Rect(0, 0, size, size))

	for y := range size {
		for x := range size {
			value := float64(noise.GetNoise2D(fastnoiselite.FNLfloat(x), fastnoiselite.FNLfloat(y)))

			// noise is in [-1, 1]
			gray := uint8(min(max((value+1)/2, 0), 1) * 255)
			img.SetRGBA(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
		}
	}

	return img
}
