package graphics

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"viz-engine/internal/math3d"
)

func TestMatrixKeepsTranslationColumn(t *testing.T) {
	m := matrix(math3d.Translate(math3d.V3(1, 2, 3)))
	assert.Equal(t, float32(1), m.M12)
	assert.Equal(t, float32(2), m.M13)
	assert.Equal(t, float32(3), m.M14)
	assert.Equal(t, float32(1), m.M0)
	assert.Equal(t, float32(1), m.M15)
	assert.Zero(t, m.M3)
}

func TestPixelsSubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 1, color.RGBA{1, 2, 3, 255})
	img.SetRGBA(2, 2, color.RGBA{4, 5, 6, 255})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	px := pixels(sub)
	assert.Len(t, px, 4)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, px[0])
	assert.Equal(t, color.RGBA{4, 5, 6, 255}, px[3])
}

func TestRequestFrameCancel(t *testing.T) {
	w := New(Options{})
	ran := 0
	cancel := w.RequestFrame(func() { ran++ })
	cancel()
	assert.Nil(t, w.pending)

	cancelOld := w.RequestFrame(func() { ran++ })
	w.RequestFrame(func() { ran += 10 })
	cancelOld()
	if assert.NotNil(t, w.pending) {
		w.pending()
	}
	assert.Equal(t, 10, ran)
	assert.Equal(t, image.Point{}, w.Size())
}
