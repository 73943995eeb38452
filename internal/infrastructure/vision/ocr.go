// Package vision wraps the OCR and face-recognition capabilities consumed by
// the KYC pipeline. Detection misses are negative signals here, not errors.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"regexp"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
	"peerlend.backend/pkg/cpf"
	"peerlend.backend/pkg/logger"
)

// binarizeThreshold is the fixed grayscale cutoff applied before OCR to
// sharpen document contrast.
const binarizeThreshold = 150

// Identifier patterns searched in OCR output, in priority order: punctuated
// CPF, bare 11-digit run, alternate document-number form.
var identifierPattern = regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}|\d{11}|\d{9}/\d{2}`)

// TesseractConfig holds the OCR engine settings resolved at process startup.
type TesseractConfig struct {
	Language       string // e.g. "por"
	TessdataPrefix string // optional tessdata directory
}

// Validate checks the configuration once, at startup, so the extractor never
// reads ambient global state later.
func (c TesseractConfig) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("ocr language must be set")
	}
	if c.TessdataPrefix != "" {
		if _, err := os.Stat(c.TessdataPrefix); err != nil {
			return fmt.Errorf("tessdata prefix %q not readable: %w", c.TessdataPrefix, err)
		}
	}
	return nil
}

// TesseractExtractor extracts candidate identifiers from document images.
type TesseractExtractor struct {
	cfg TesseractConfig
}

// NewTesseractExtractor creates an extractor with validated configuration
func NewTesseractExtractor(cfg TesseractConfig) (*TesseractExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TesseractExtractor{cfg: cfg}, nil
}

// ExtractIdentifier runs OCR over the image at path and returns the first
// 11-digit identifier found. A miss returns ("", false); it is an expected
// outcome, not a fault.
func (e *TesseractExtractor) ExtractIdentifier(ctx context.Context, path string) (string, bool) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Language); err != nil {
		logger.Warn(ctx, "OCR language setup failed", zap.Error(err))
		return "", false
	}
	if e.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataPrefix); err != nil {
			logger.Warn(ctx, "OCR tessdata setup failed", zap.Error(err))
			return "", false
		}
	}

	if preprocessed, err := preprocessForOCR(path); err == nil {
		if err := client.SetImageFromBytes(preprocessed); err != nil {
			logger.Warn(ctx, "OCR preprocessed image rejected, using raw image", zap.Error(err))
			if err := client.SetImage(path); err != nil {
				return "", false
			}
		}
	} else {
		// preprocessing failure falls back to the raw image
		logger.Warn(ctx, "OCR preprocessing failed, using raw image", zap.String("path", path), zap.Error(err))
		if err := client.SetImage(path); err != nil {
			return "", false
		}
	}

	text, err := client.Text()
	if err != nil {
		logger.Warn(ctx, "OCR failed", zap.String("path", path), zap.Error(err))
		return "", false
	}

	return ScanIdentifier(text)
}

// ScanIdentifier searches OCR text for an identifier-shaped match and returns
// its digits-only form when it is exactly 11 digits long.
func ScanIdentifier(text string) (string, bool) {
	match := identifierPattern.FindString(text)
	if match == "" {
		return "", false
	}
	digits := cpf.Normalize(match)
	if len(digits) != 11 {
		return "", false
	}
	return digits, true
}

// preprocessForOCR converts the image to grayscale and applies fixed-threshold
// binarization, returning PNG bytes ready for the OCR engine.
func preprocessForOCR(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	gray := imaging.Grayscale(img)
	binary := imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		if c.R > binarizeThreshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{R: 0, G: 0, B: 0, A: c.A}
	})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, binary, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}
