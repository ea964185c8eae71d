package media

import (
	"os/exec"

	logx "autopost/pkg/logx"
)

// Capabilities records which optional tools are usable. Resolved once at
// startup and threaded into the Resolver instead of probing per delivery.
type Capabilities struct {
	// FFmpeg is true when an ffmpeg binary is on PATH; without it video
	// normalization is skipped and files are sent as fetched.
	FFmpeg bool
}

// Detect probes the environment for optional tooling.
func Detect(log logx.Logger) Capabilities {
	caps := Capabilities{}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		caps.FFmpeg = true
		if !log.IsZero() {
			log.Info("ffmpeg found; video normalization enabled", logx.String("path", path))
		}
	} else if !log.IsZero() {
		log.Warn("ffmpeg not found; videos will be sent without re-encoding")
	}
	return caps
}
