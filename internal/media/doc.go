// Package media fetches and normalizes post attachments.
//
// Remote references are downloaded to temp files; photos in formats Telegram
// clients render poorly are transcoded to JPEG and clamped to a maximum
// dimension; videos are re-encoded through ffmpeg (when present) to
// H.264+AAC with a leading moov atom for fast-start streaming. Every
// temporary artifact of one delivery attempt is tracked in a Scratch and
// removed when the attempt ends, success or not.
package media
