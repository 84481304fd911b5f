package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// SnapshotSource produces one encoded JPEG frame per call. The call manager
// polls it on a ticker while video streaming is enabled.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// Camera grabs single frames from a local video device via ffmpeg. Each
// Snapshot spawns a short-lived capture process, which keeps the device free
// between frames and needs no long-running pipe management.
type Camera struct {
	// Device is the ffmpeg input, e.g. "/dev/video0" or "0".
	Device string
	// InputFormat is the ffmpeg demuxer, e.g. "v4l2" or "avfoundation".
	InputFormat string
}

// NewCamera returns a camera bound to the platform's default video device.
func NewCamera() *Camera {
	if runtime.GOOS == "darwin" {
		return &Camera{Device: "0", InputFormat: "avfoundation"}
	}
	return &Camera{Device: "/dev/video0", InputFormat: "v4l2"}
}

// Snapshot captures one frame and returns it downscaled and JPEG-encoded,
// ready for SnapshotBlob.
func (c *Camera) Snapshot(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", c.InputFormat,
		"-video_size", "640x480",
		"-i", c.Device,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 200 {
			detail = detail[len(detail)-200:]
		}
		return nil, fmt.Errorf("camera capture: %w: %s", err, detail)
	}

	return DownscaleJPEG(out.Bytes(), SnapshotMaxWidth, SnapshotQuality)
}
