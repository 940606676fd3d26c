package catalog

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	// Cover images in the wild come in more formats than the standard
	// library registers.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	thumbWidth  = 330
	thumbHeight = 470

	defaultSVGSize = 2048
	maxRasterDim   = 8192
)

const defaultCoverSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 600 800">
  <rect width="600" height="800" fill="#2f4858"/>
  <rect x="40" y="40" width="520" height="720" fill="none" stroke="#f6f1e7" stroke-width="6"/>
  <rect x="70" y="340" width="460" height="8" fill="#f6f1e7"/>
  <rect x="70" y="452" width="460" height="8" fill="#f6f1e7"/>
  <circle cx="300" cy="400" r="26" fill="#f6f1e7"/>
</svg>`

// Thumbnail renders cover image data into a catalog thumbnail encoded as
// JPEG, preserving the aspect ratio.
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unable to decode cover image: %w", err)
	}
	return encodeThumb(imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos))
}

// DefaultThumbnail rasterizes the built-in cover used for containers
// that carry no cover image.
func DefaultThumbnail() ([]byte, error) {
	img, err := rasterizeSVG([]byte(defaultCoverSVG), thumbWidth, thumbHeight)
	if err != nil {
		return nil, fmt.Errorf("unable to rasterize default cover: %w", err)
	}
	return encodeThumb(img)
}

func encodeThumb(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("unable to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterizeSVG renders SVG data scaled to fit the target box while
// preserving the intrinsic aspect ratio. Oversized view boxes are
// clamped so a malformed SVG cannot force a huge allocation.
func rasterizeSVG(svgData []byte, targetW, targetH int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	intrW := int(math.Ceil(icon.ViewBox.W))
	intrH := int(math.Ceil(icon.ViewBox.H))
	if intrW <= 0 {
		intrW = defaultSVGSize
	}
	if intrH <= 0 {
		intrH = defaultSVGSize
	}

	w, h := intrW, intrH
	if targetW > 0 || targetH > 0 {
		scaleW, scaleH := math.Inf(1), math.Inf(1)
		if targetW > 0 {
			scaleW = float64(targetW) / float64(intrW)
		}
		if targetH > 0 {
			scaleH = float64(targetH) / float64(intrH)
		}
		scale := math.Min(scaleW, scaleH)
		w = max(int(math.Round(float64(intrW)*scale)), 1)
		h = max(int(math.Round(float64(intrH)*scale)), 1)
	}

	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}
