package media

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	// Register the decoders we can normalize from. WebP decoding comes from
	// x/image; HEIC/HEIF/AVIF have no decoder wired, so those files fail to
	// decode and pass through unchanged (graceful degradation, matching the
	// optional-decoder capability model).
	_ "image/gif"
	_ "image/png"
	_ "golang.org/x/image/webp"

	logx "autopost/pkg/logx"
)

// hardToRender lists encodings Telegram clients frequently fail to display
// inline; these are transcoded to JPEG whenever a decoder is available.
var hardToRender = map[string]bool{
	"webp": true,
	"heic": true,
	"heif": true,
	"avif": true,
}

// NormalizeImage rewrites path into a universally renderable JPEG when
// needed: hard-to-render encodings are transcoded, and anything whose larger
// side exceeds the configured maximum is downscaled. The returned path is the
// input when no work is needed or possible; converted files are tracked in sc.
func (r *Resolver) NormalizeImage(path string, sc *Scratch) string {
	f, err := os.Open(path)
	if err != nil {
		r.log.Warn("image normalize: open failed", logx.String("path", path), logx.Err(err))
		return path
	}
	img, format, err := image.Decode(f)
	_ = f.Close()
	if err != nil {
		// Unknown or unsupported encoding (e.g. HEIC without a decoder):
		// send the original and let the client cope.
		r.log.Debug("image normalize skipped", logx.String("path", path), logx.Err(err))
		return path
	}

	bounds := img.Bounds()
	oversized := bounds.Dx() > r.maxDim || bounds.Dy() > r.maxDim
	if !hardToRender[format] && !oversized {
		return path
	}

	if oversized {
		img = downscale(img, r.maxDim)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_conv.jpg"
	of, err := os.Create(out)
	if err != nil {
		r.log.Warn("image normalize: create failed", logx.String("path", out), logx.Err(err))
		return path
	}
	sc.Track(out)
	err = jpeg.Encode(of, img, &jpeg.Options{Quality: 90})
	if cerr := of.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		r.log.Warn("image normalize: encode failed", logx.String("path", out), logx.Err(err))
		return path
	}
	r.log.Debug("image normalized",
		logx.String("from", format), logx.String("path", out), logx.Bool("downscaled", oversized))
	return out
}

// downscale scales img so neither dimension exceeds maxDim, preserving
// aspect ratio.
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
