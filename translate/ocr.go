package translate

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// upscale floor: snapshots narrower than this are doubled before OCR so
// small glyphs survive binarization.
const minOCRWidth = 600

// OCRDetector gates translation on a Tesseract pass over the editor canvas
// snapshot, in simplified-Chinese mode. The attribute fast path runs first;
// OCR is only spent when attributes are inconclusive.
type OCRDetector struct {
	cfg     *types.Config
	logger  types.Logger
	timeout time.Duration
}

// NewOCRDetector builds the detector.
func NewOCRDetector(cfg *types.Config, logger types.Logger) *OCRDetector {
	return &OCRDetector{cfg: cfg, logger: logger, timeout: 15 * time.Second}
}

// HasChinese implements Detector. Error policy per kind: image decode
// failures and OCR timeouts fall back to attribute-only detection; any
// other OCR error conservatively returns true so no Chinese image is
// silently skipped.
func (d *OCRDetector) HasChinese(ctx context.Context, img ImageInfo) (bool, error) {
	if TooSmall(img) {
		return false, nil
	}
	if AttributesHaveChinese(img) {
		d.logger.Debugf("Image %d flagged Chinese by attributes", img.Position)
		return true, nil
	}
	if len(img.PNG) == 0 {
		return false, nil
	}

	prepared, err := Preprocess(img.PNG)
	if err != nil {
		d.logger.Debugf("Image %d snapshot unreadable (%v), attribute result stands", img.Position, err)
		return false, nil
	}

	type ocrResult struct {
		has bool
		err error
	}
	done := make(chan ocrResult, 1)
	go func() {
		has, err := d.runOCR(prepared)
		done <- ocrResult{has: has, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			// Conservative: unknown OCR failures translate rather than skip.
			d.logger.Warnf("OCR failed for image %d (%v), translating conservatively", img.Position, r.err)
			return true, nil
		}
		return r.has, nil
	case <-time.After(d.timeout):
		d.logger.Warnf("OCR timed out for image %d, falling back to attributes", img.Position)
		return AttributesHaveChinese(img), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (d *OCRDetector) runOCR(png []byte) (bool, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("chi_sim"); err != nil {
		return false, fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return false, fmt.Errorf("failed to load OCR image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return false, fmt.Errorf("OCR pass failed: %w", err)
	}
	for _, box := range boxes {
		if box.Confidence < d.cfg.MinOCRConfident {
			continue
		}
		if ContainsChinese(box.Word) {
			d.logger.Debugf("OCR hit (conf %.1f): %s", box.Confidence, box.Word)
			return true, nil
		}
	}
	return false, nil
}

// Preprocess decodes a canvas snapshot and prepares it for OCR: grayscale,
// then a 2x upscale when the image is small.
func Preprocess(png []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	gray := imaging.Grayscale(img)
	if bounds := gray.Bounds(); bounds.Dx() < minOCRWidth {
		gray = imaging.Resize(gray, bounds.Dx()*2, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to re-encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
