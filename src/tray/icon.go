package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 16

// Icon returns the tray icon in the format the platform's tray expects:
// ICO on Windows, PNG elsewhere.
func Icon() []byte {
	p := pngIcon()
	if runtime.GOOS == "windows" {
		return wrapICO(p, iconSize)
	}
	return p
}

// pngIcon draws a key cap with a cursor arrow in its corner.
func pngIcon() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	body := color.RGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF}
	edge := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	for y := 1; y < iconSize-1; y++ {
		for x := 1; x < iconSize-1; x++ {
			c := body
			if x == 1 || y == 1 || x == iconSize-2 || y == iconSize-2 {
				c = edge
			}
			img.SetRGBA(x, y, c)
		}
	}
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	for i := 0; i < 6; i++ {
		for x := 8; x <= 8+i; x++ {
			img.SetRGBA(x, 7+i, white)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// wrapICO embeds a PNG image in a single-entry ICO container.
func wrapICO(p []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, one image
	buf.Write([]byte{byte(size), byte(size), 0, 0})
	binary.Write(&buf, le, [2]uint16{1, 32}) // planes, bits per pixel
	binary.Write(&buf, le, [2]uint32{uint32(len(p)), 6 + 16})
	buf.Write(p)
	return buf.Bytes()
}
