package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/niramoy/niramoy-go/pkg/audio"
)

// Snapshot encoding limits. Video frames ride the same websocket as the
// audio stream, so they are kept small.
const (
	SnapshotMaxWidth = 320
	SnapshotQuality  = 50
)

// DownscaleJPEG decodes an image, scales it down to at most maxWidth wide
// preserving aspect ratio, and re-encodes it as JPEG at the given quality.
// Images already narrow enough are re-encoded without scaling.
func DownscaleJPEG(data []byte, maxWidth, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		ratio := float64(maxWidth) / float64(bounds.Dx())
		height := int(float64(bounds.Dy()) * ratio)
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// SnapshotBlob wraps an encoded JPEG as a base64 media blob for the live
// session.
func SnapshotBlob(jpegData []byte) audio.Blob {
	return audio.Blob{
		MIMEType: audio.JPEGMIMEType,
		Data:     base64.StdEncoding.EncodeToString(jpegData),
	}
}
