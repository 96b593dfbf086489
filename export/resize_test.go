package export_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai_blog_writer/export"
)

func TestFitWithin(t *testing.T) {
	t.Parallel()

	t.Run("downsizes a wide image preserving aspect ratio", func(t *testing.T) {
		t.Parallel()

		src := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
		dst := export.FitWithin(src, 1024, 1024)
		assert.Equal(t, 1024, dst.Bounds().Dx())
		assert.Equal(t, 512, dst.Bounds().Dy())
	})

	t.Run("downsizes a tall image preserving aspect ratio", func(t *testing.T) {
		t.Parallel()

		src := image.NewRGBA(image.Rect(0, 0, 500, 2000))
		dst := export.FitWithin(src, 1024, 1024)
		assert.Equal(t, 256, dst.Bounds().Dx())
		assert.Equal(t, 1024, dst.Bounds().Dy())
	})

	t.Run("leaves a small image untouched", func(t *testing.T) {
		t.Parallel()

		src := image.NewRGBA(image.Rect(0, 0, 640, 480))
		dst := export.FitWithin(src, 1024, 1024)
		assert.Same(t, src, dst)
	})

	t.Run("image exactly at the bound is untouched", func(t *testing.T) {
		t.Parallel()

		src := image.NewRGBA(image.Rect(0, 0, 1024, 1024))
		assert.Same(t, src, export.FitWithin(src, 1024, 1024))
	})
}
