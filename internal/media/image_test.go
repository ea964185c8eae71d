package media

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logx "autopost/pkg/logx"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeImageKeepsSmallPNG(t *testing.T) {
	r := testResolver(t, Config{MaxDimension: 64})
	sc := &Scratch{}

	in := writePNG(t, 10, 10)
	if got := r.NormalizeImage(in, sc); got != in {
		t.Fatalf("small png rewritten to %q", got)
	}
	if len(sc.paths) != 0 {
		t.Fatalf("nothing should be tracked: %v", sc.paths)
	}
}

func TestNormalizeImageDownscalesOversized(t *testing.T) {
	r := testResolver(t, Config{MaxDimension: 64})
	sc := &Scratch{}
	defer sc.Cleanup(logx.Nop())

	in := writePNG(t, 100, 50)
	out := r.NormalizeImage(in, sc)
	if out == in {
		t.Fatal("oversized image not rewritten")
	}
	if !strings.HasSuffix(out, "_conv.jpg") {
		t.Fatalf("converted path = %q, want *_conv.jpg", out)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode converted: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("converted format = %q, want jpeg", format)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("converted size = %dx%d, want 64x32", cfg.Width, cfg.Height)
	}
}

func TestNormalizeImageUndecodablePassthrough(t *testing.T) {
	r := testResolver(t, Config{})

	path := filepath.Join(t.TempDir(), "photo.heic")
	if err := os.WriteFile(path, []byte("not an image at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := r.NormalizeImage(path, &Scratch{}); got != path {
		t.Fatalf("undecodable file rewritten to %q", got)
	}
}

func TestNormalizeImageMissingFile(t *testing.T) {
	r := testResolver(t, Config{})
	path := filepath.Join(t.TempDir(), "gone.jpg")
	if got := r.NormalizeImage(path, &Scratch{}); got != path {
		t.Fatalf("missing file rewritten to %q", got)
	}
}

func TestNormalizeVideoWithoutFFmpeg(t *testing.T) {
	r := testResolver(t, Config{}) // Capabilities{} means no ffmpeg
	path := filepath.Join(t.TempDir(), "clip.mov")
	if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := r.NormalizeVideo(context.Background(), path, &Scratch{}); got != path {
		t.Fatalf("video rewritten without ffmpeg: %q", got)
	}
}

func TestDownscalePreservesAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4000, 1000))
	out := downscale(img, 2000)
	b := out.Bounds()
	if b.Dx() != 2000 || b.Dy() != 500 {
		t.Fatalf("downscaled to %dx%d, want 2000x500", b.Dx(), b.Dy())
	}

	// Already small enough: same image back.
	if got := downscale(img, 4000); got != image.Image(img) {
		t.Fatal("image within bounds was rescaled")
	}
}
