package media

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	logx "autopost/pkg/logx"
)

// Config tunes fetching and normalization. Zero values use the defaults.
type Config struct {
	FetchTimeout time.Duration // default 2m
	MinBytes     int64         // default 1 KiB; smaller bodies are treated as error pages
	MaxDimension int           // default 4096 px per side
	TempDir      string        // default os.TempDir()
}

const (
	defaultFetchTimeout = 2 * time.Minute
	defaultMinBytes     = 1024
	defaultMaxDimension = 4096
)

// Resolver turns media references into sendable local files.
type Resolver struct {
	http *http.Client
	caps Capabilities
	log  logx.Logger

	minBytes int64
	maxDim   int
	tmpDir   string
}

func NewResolver(cfg Config, caps Capabilities, log logx.Logger) *Resolver {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	minBytes := cfg.MinBytes
	if minBytes <= 0 {
		minBytes = defaultMinBytes
	}
	maxDim := cfg.MaxDimension
	if maxDim <= 0 {
		maxDim = defaultMaxDimension
	}
	return &Resolver{
		http:     &http.Client{Timeout: timeout},
		caps:     caps,
		log:      log,
		minBytes: minBytes,
		maxDim:   maxDim,
		tmpDir:   cfg.TempDir,
	}
}

// extByContentType maps the media types we expect to a file extension for
// the temp file; telebot sniffs content anyway, the extension just helps
// debugging leftover files.
var extByContentType = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/heic":      ".heic",
	"image/heif":      ".heif",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"audio/ogg":       ".ogg",
	"audio/mpeg":      ".mp3",
}

func guessExt(contentType, fallback string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ext, ok := extByContentType[ct]; ok {
		return ext
	}
	return fallback
}

// Fetch makes ref available as a local file.
//
// Local paths are returned as-is. Remote URLs are downloaded into a temp
// file tracked by sc. Any failure (transport error, timeout, body smaller
// than the error-page threshold) logs a warning and reports ok=false; Fetch
// never returns an error to the caller.
func (r *Resolver) Fetch(ctx context.Context, ref string, sc *Scratch) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		r.log.Warn("media fetch: bad url", logx.String("url", ref), logx.Err(err))
		return "", false
	}
	// Some CDNs refuse requests without a browser-like identity.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/124 Safari/537.36")
	req.Header.Set("Accept", "image/*,video/*;q=0.9,*/*;q=0.8")

	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Warn("media fetch failed", logx.String("url", ref), logx.Err(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		r.log.Warn("media fetch: unexpected status", logx.String("url", ref), logx.Int("status", resp.StatusCode))
		return "", false
	}

	ext := guessExt(resp.Header.Get("Content-Type"), path.Ext(req.URL.Path))
	f, err := os.CreateTemp(r.tmpDir, "ap_dl_*"+ext)
	if err != nil {
		r.log.Warn("media fetch: temp file", logx.Err(err))
		return "", false
	}
	sc.Track(f.Name())

	n, err := io.Copy(f, resp.Body)
	cerr := f.Close()
	if err != nil || cerr != nil {
		r.log.Warn("media fetch: write failed", logx.String("url", ref), logx.Err(err))
		return "", false
	}
	if n < r.minBytes {
		// Tiny bodies are almost always HTML error pages, not media.
		r.log.Warn("media fetch: body too small, likely an error page",
			logx.String("url", ref), logx.Int64("bytes", n))
		return "", false
	}
	return f.Name(), true
}
