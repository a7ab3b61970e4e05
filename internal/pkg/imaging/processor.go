package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ProcessedImage holds the display and thumbnail variants of a catalog image
type ProcessedImage struct {
	Display     []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth    int // display variant bound (default 1200)
	MaxHeight   int
	ThumbWidth  int // square-ish thumbnail for the store grid (default 256)
	ThumbHeight int
	Quality     int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:    1200,
		MaxHeight:   1200,
		ThumbWidth:  256,
		ThumbHeight: 256,
		Quality:     85,
	}
}

// Processor resizes uploaded images
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes data, bounds the display variant and center-crops a thumbnail.
// PNG input stays PNG (item art usually has transparency); everything else becomes JPEG.
func (p *Processor) Process(data []byte) (*ProcessedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image format: %w", err)
	}

	outFormat := imaging.JPEG
	contentType := "image/jpeg"
	if format == "png" {
		outFormat = imaging.PNG
		contentType = "image/png"
	}

	display := img
	bounds := img.Bounds()
	if bounds.Dx() > p.config.MaxWidth || bounds.Dy() > p.config.MaxHeight {
		display = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	result := &ProcessedImage{
		ContentType: contentType,
		Width:       display.Bounds().Dx(),
		Height:      display.Bounds().Dy(),
	}

	if result.Display, err = p.encode(display, outFormat); err != nil {
		return nil, fmt.Errorf("failed to encode display image: %w", err)
	}

	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	if result.Thumbnail, err = p.encode(thumb, outFormat); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return result, nil
}

func (p *Processor) encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(p.config.Quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
