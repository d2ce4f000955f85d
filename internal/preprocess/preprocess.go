// Package preprocess prepares rendered page images for OCR. Scanned
// invoices arrive with low contrast and color noise; recognition quality
// improves markedly on a stretched grayscale or binarized input.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"

	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// Options controls the preprocessing passes.
type Options struct {
	// MaxWidth downscales wider images before OCR. Zero disables scaling.
	MaxWidth int `mapstructure:"max_width" yaml:"max_width"`

	// ContrastStretch remaps the 2nd..98th luminance percentiles to full range.
	ContrastStretch bool `mapstructure:"contrast_stretch" yaml:"contrast_stretch"`

	// Binarize applies Otsu thresholding after the stretch.
	Binarize bool `mapstructure:"binarize" yaml:"binarize"`
}

// DefaultOptions returns the production preprocessing settings.
func DefaultOptions() Options {
	return Options{
		MaxWidth:        2500,
		ContrastStretch: true,
		Binarize:        true,
	}
}

// Result carries the processed image and what was done to it.
type Result struct {
	Image        []byte
	Width        int
	Height       int
	Quality      float64
	Enhancements []string
}

// Preprocessor applies the configured passes. Stateless.
type Preprocessor struct {
	opts   Options
	logger *slog.Logger
}

// New creates a preprocessor.
func New(opts Options, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{opts: opts, logger: logger}
}

// Process runs the pipeline on an encoded PNG or JPEG and returns a PNG.
func (p *Preprocessor) Process(data []byte) (*Result, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var enhancements []string

	gray := toGray(src)
	enhancements = append(enhancements, "grayscale")

	if p.opts.MaxWidth > 0 && gray.Bounds().Dx() > p.opts.MaxWidth {
		gray = downscale(gray, p.opts.MaxWidth)
		enhancements = append(enhancements, "downscale")
	}

	if p.opts.ContrastStretch {
		if stretchContrast(gray) {
			enhancements = append(enhancements, "contrast_stretch")
		}
	}

	quality := qualityScore(gray)

	if p.opts.Binarize {
		binarize(gray, otsuThreshold(gray))
		enhancements = append(enhancements, "binarize")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := gray.Bounds()
	p.logger.Debug("image preprocessed",
		"format", format,
		"width", b.Dx(),
		"height", b.Dy(),
		"quality", quality,
		"enhancements", enhancements,
	)

	return &Result{
		Image:        buf.Bytes(),
		Width:        b.Dx(),
		Height:       b.Dy(),
		Quality:      quality,
		Enhancements: enhancements,
	}, nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)
		return out
	}
	b := src.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, src, b.Min, draw.Src)
	return gray
}

func downscale(src *image.Gray, maxWidth int) *image.Gray {
	b := src.Bounds()
	scale := float64(maxWidth) / float64(b.Dx())
	dst := image.NewGray(image.Rect(0, 0, maxWidth, int(math.Round(float64(b.Dy())*scale))))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// stretchContrast remaps the 2nd..98th percentile range onto [0, 255] in
// place. Returns false when the image is too flat to stretch.
func stretchContrast(img *image.Gray) bool {
	hist := histogram(img)
	total := len(img.Pix)
	if total == 0 {
		return false
	}

	lo := percentile(hist, total, 0.02)
	hi := percentile(hist, total, 0.98)
	if hi-lo < 10 {
		return false
	}

	scale := 255.0 / float64(hi-lo)
	var lut [256]uint8
	for i := range lut {
		v := float64(i-lo) * scale
		lut[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
	return true
}

func histogram(img *image.Gray) [256]int {
	var hist [256]int
	for _, v := range img.Pix {
		hist[v]++
	}
	return hist
}

// percentile returns the smallest luminance whose cumulative count reaches
// the given fraction of pixels.
func percentile(hist [256]int, total int, frac float64) int {
	target := int(frac * float64(total))
	cum := 0
	for v, n := range hist {
		cum += n
		if cum >= target {
			return v
		}
	}
	return 255
}

// otsuThreshold picks the binarization threshold maximizing between-class
// variance over the luminance histogram.
func otsuThreshold(img *image.Gray) uint8 {
	hist := histogram(img)
	total := len(img.Pix)
	if total == 0 {
		return 128
	}

	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var sumB, wB float64
	var best float64
	threshold := uint8(128)
	for v := 0; v < 256; v++ {
		wB += float64(hist[v])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(v) * float64(hist[v])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(v)
		}
	}
	return threshold
}

func binarize(img *image.Gray, threshold uint8) {
	for i, v := range img.Pix {
		if v > threshold {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}

// qualityScore estimates OCR suitability in [0,1] from luminance spread.
// A crisp black-on-white scan has high standard deviation; a washed-out or
// blank page scores low.
func qualityScore(img *image.Gray) float64 {
	total := len(img.Pix)
	if total == 0 {
		return 0
	}

	var sum float64
	for _, v := range img.Pix {
		sum += float64(v)
	}
	mean := sum / float64(total)

	var varSum float64
	for _, v := range img.Pix {
		d := float64(v) - mean
		varSum += d * d
	}
	stddev := math.Sqrt(varSum / float64(total))

	// 127.5 is the maximum possible stddev for 8-bit luminance.
	return math.Min(1.0, stddev/127.5*2)
}
