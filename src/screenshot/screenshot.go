package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/kbinani/screenshot"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
)

// Capturer grabs rectangles of the virtual desktop.
type Capturer struct{}

// Capture grabs r, given in screen positions. The returned image is indexed
// from (0, 0) at r's top-left corner.
func (Capturer) Capture(r geometry.Rect) (*image.RGBA, error) {
	if r.Width() <= 0 || r.Height() <= 0 {
		return nil, fmt.Errorf("invalid capture size %dx%d", r.Width(), r.Height())
	}
	img, err := screenshot.CaptureRect(image.Rect(r.Left, r.Top, r.Right, r.Bottom))
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %v", r, err)
	}
	return img, nil
}

// Monitors lists the active displays. The primary display is the one whose
// bounds contain the desktop origin.
func Monitors() ([]desktop.Monitor, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	monitors := make([]desktop.Monitor, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		monitors = append(monitors, desktop.Monitor{
			Rect:    geometry.NewRect(b.Min.Y, b.Max.X, b.Max.Y, b.Min.X),
			Primary: image.Pt(0, 0).In(b),
			Name:    fmt.Sprintf("DISPLAY%d", i+1),
		})
	}
	return monitors, nil
}

// EncodePNG converts a capture to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %v", err)
	}
	return buf.Bytes(), nil
}

// SavePNG writes a capture to path.
func SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
