package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	logx "autopost/pkg/logx"
)

// NormalizeVideo re-encodes path to H.264+AAC MP4 with the moov atom up
// front so playback can start while the file streams. If ffmpeg is missing
// or the encode fails, the original path is returned unchanged; converted
// output is tracked in sc.
func (r *Resolver) NormalizeVideo(ctx context.Context, path string, sc *Scratch) string {
	if !r.caps.FFmpeg {
		return path
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_conv.mp4"
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", path,
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart",
		out,
	)
	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		r.log.Warn("video normalize: ffmpeg failed", logx.String("path", path), logx.Err(err))
		return path
	}
	sc.Track(out)
	r.log.Debug("video normalized", logx.String("path", out))
	return out
}
