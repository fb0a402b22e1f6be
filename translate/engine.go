package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Gallery abstracts the bulk-edit drawer and the image editor inside it.
// The chromedp implementation lives in gallery.go; tests substitute fakes.
type Gallery interface {
	// OpenDrawer opens the product's bulk-edit drawer.
	OpenDrawer(ctx context.Context) error
	// Cards enumerates the drawer's CDN-source image cards, deduplicated.
	Cards(ctx context.Context) ([]Card, error)
	// OpenEditor clicks the card's 편집하기 affordance.
	OpenEditor(ctx context.Context, position int) error
	// Advance moves the editor to the next image (Tab).
	Advance(ctx context.Context) error
	// GoTo navigates the editor to the given position.
	GoTo(ctx context.Context, position int) error
	// CurrentImage reads attributes and a canvas snapshot of the image
	// currently shown.
	CurrentImage(ctx context.Context, position int) (ImageInfo, error)
	// TriggerTranslate sends T and waits for the one-click translation to
	// settle idle.
	TriggerTranslate(ctx context.Context) error
	// Save commits the edits. Dispatched once per drawer, not per image.
	Save(ctx context.Context) error
	// CloseEditor closes the editor (Esc).
	CloseEditor(ctx context.Context) error
	// CloseDrawer closes the drawer.
	CloseDrawer(ctx context.Context) error
}

// Card is one image card in the drawer.
type Card struct {
	Position int
	Src      string
}

// FilterCards keeps only source-CDN cards, deduplicated by src, and
// renumbers them 1-based. Virtualization shadows the same card twice in
// the DOM under the same src, so the src is the dedupe key.
func FilterCards(cards []Card, cdnPrefix string) []Card {
	seenSrc := make(map[string]bool)
	var out []Card
	for _, c := range cards {
		if !strings.HasPrefix(c.Src, cdnPrefix) {
			continue
		}
		if seenSrc[c.Src] {
			continue
		}
		seenSrc[c.Src] = true
		c.Position = len(out) + 1
		out = append(out, c)
	}
	return out
}

// Report summarizes one engine invocation.
type Report struct {
	Scanned    int
	Candidates []int
	Translated []int
	Saved      bool
}

// Engine runs the scan-then-translate pipeline over a product's image
// gallery, spending translation only on images the detector flags.
type Engine struct {
	gallery  Gallery
	detector Detector
	logger   types.Logger
}

// NewEngine wires a gallery and a detector.
func NewEngine(gallery Gallery, detector Detector, logger types.Logger) *Engine {
	return &Engine{gallery: gallery, detector: detector, logger: logger}
}

// Run executes the action value against the current product. A gallery with
// zero source-CDN images reports nothing to do and closes the drawer
// cleanly.
func (e *Engine) Run(ctx context.Context, actionValue string) (*Report, error) {
	actions, err := ParseActionValue(actionValue)
	if err != nil {
		return nil, err
	}

	if err := e.gallery.OpenDrawer(ctx); err != nil {
		return nil, fmt.Errorf("failed to open bulk-edit drawer: %w", err)
	}
	defer func() {
		if err := e.gallery.CloseDrawer(ctx); err != nil {
			e.logger.Warnf("Drawer close failed: %v", err)
		}
	}()

	cards, err := e.gallery.Cards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate image cards: %w", err)
	}
	if len(cards) == 0 {
		e.logger.Info("No source-CDN images in gallery, nothing to do")
		return &Report{}, nil
	}

	if SequentialAll(actions) {
		return e.runSequential(ctx, len(cards))
	}
	return e.runSpecific(ctx, Positions(actions, len(cards)))
}

// runSequential is the scan pass followed by the translate pass. The
// positions sent to the translator are exactly the scanner's candidates
// unless a navigation error interrupts the second pass.
func (e *Engine) runSequential(ctx context.Context, total int) (*Report, error) {
	report := &Report{Scanned: total}

	if err := e.gallery.OpenEditor(ctx, 1); err != nil {
		return report, fmt.Errorf("failed to open editor: %w", err)
	}
	defer func() {
		if err := e.gallery.CloseEditor(ctx); err != nil {
			e.logger.Warnf("Editor close failed: %v", err)
		}
	}()

	// Scan pass.
	for pos := 1; pos <= total; pos++ {
		img, err := e.gallery.CurrentImage(ctx, pos)
		if err != nil {
			e.logger.Warnf("Image %d unreadable, skipping: %v", pos, err)
		} else {
			has, err := e.detector.HasChinese(ctx, img)
			if err != nil {
				return report, err
			}
			if has {
				report.Candidates = append(report.Candidates, pos)
			}
		}
		if pos < total {
			if err := e.gallery.Advance(ctx); err != nil {
				return report, fmt.Errorf("advance from image %d failed: %w", pos, err)
			}
		}
	}
	e.logger.Infof("Scan pass: %d of %d image(s) flagged Chinese %v", len(report.Candidates), total, report.Candidates)

	// Translate pass.
	for _, pos := range report.Candidates {
		if err := e.gallery.GoTo(ctx, pos); err != nil {
			e.logger.Warnf("Navigation to image %d failed, remaining candidates skipped: %v", pos, err)
			break
		}
		if err := e.gallery.TriggerTranslate(ctx); err != nil {
			e.logger.Warnf("Translation of image %d failed: %v", pos, err)
			continue
		}
		report.Translated = append(report.Translated, pos)
	}

	if len(report.Translated) > 0 {
		if err := e.gallery.Save(ctx); err != nil {
			return report, fmt.Errorf("save failed: %w", err)
		}
		report.Saved = true
	}
	return report, nil
}

// runSpecific processes each listed position in its own editor visit.
func (e *Engine) runSpecific(ctx context.Context, positions []int) (*Report, error) {
	report := &Report{Scanned: len(positions)}
	for _, pos := range positions {
		if err := e.processOne(ctx, pos, report); err != nil {
			if errors.Is(err, types.ErrTimeout) {
				e.logger.Warnf("Image %d timed out: %v", pos, err)
				continue
			}
			return report, err
		}
	}
	if len(report.Translated) > 0 {
		if err := e.gallery.Save(ctx); err != nil {
			return report, fmt.Errorf("save failed: %w", err)
		}
		report.Saved = true
	}
	return report, nil
}

func (e *Engine) processOne(ctx context.Context, pos int, report *Report) error {
	if err := e.gallery.OpenEditor(ctx, pos); err != nil {
		return fmt.Errorf("failed to open editor at %d: %w", pos, err)
	}
	defer func() {
		if err := e.gallery.CloseEditor(ctx); err != nil {
			e.logger.Warnf("Editor close at %d failed: %v", pos, err)
		}
	}()

	img, err := e.gallery.CurrentImage(ctx, pos)
	if err != nil {
		return fmt.Errorf("image %d unreadable: %w", pos, err)
	}
	has, err := e.detector.HasChinese(ctx, img)
	if err != nil {
		return err
	}
	if !has {
		e.logger.Debugf("Image %d has no Chinese, skipping", pos)
		return nil
	}
	report.Candidates = append(report.Candidates, pos)
	if err := e.gallery.TriggerTranslate(ctx); err != nil {
		return fmt.Errorf("translation at %d failed: %w", pos, err)
	}
	report.Translated = append(report.Translated, pos)
	return nil
}
