package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/onepick2019/percenty-workbench/internal/types"
)

// Found is the result of a chain lookup: which selector matched and the
// nodes it matched.
type Found struct {
	Selector types.Selector
	Nodes    []*cdp.Node
}

// First returns the first matched node.
func (f *Found) First() *cdp.Node {
	if f == nil || len(f.Nodes) == 0 {
		return nil
	}
	return f.Nodes[0]
}

func byOption(sel types.Selector) chromedp.QueryOption {
	if sel.Kind == types.SelXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQueryAll
}

// Find evaluates a selector chain, trying each selector in order and
// returning on the first that matches at least one node. After exhaustion it
// returns ErrSelectorExhausted carrying every query tried.
func (s *Session) Find(ctx context.Context, chain types.Chain, timeout time.Duration) (*Found, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("empty selector chain")
	}
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range chain {
			var nodes []*cdp.Node
			err := s.RunWithTimeout(ctx, s.cfg.PollInterval*4,
				chromedp.Nodes(sel.Query, &nodes, byOption(sel), chromedp.AtLeast(0)))
			if err != nil {
				s.logger.Debugf("Selector probe failed for %q: %v", sel.Query, err)
				continue
			}
			if len(nodes) > 0 {
				return &Found{Selector: sel, Nodes: nodes}, nil
			}
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-time.After(s.cfg.PollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("no selector matched (tried %s): %w",
		strings.Join(chain.Queries(), " | "), types.ErrSelectorExhausted)
}

// Exists reports whether any selector in the chain currently matches,
// without waiting.
func (s *Session) Exists(ctx context.Context, chain types.Chain) bool {
	for _, sel := range chain {
		var nodes []*cdp.Node
		err := s.RunWithTimeout(ctx, s.cfg.PollInterval*4,
			chromedp.Nodes(sel.Query, &nodes, byOption(sel), chromedp.AtLeast(0)))
		if err == nil && len(nodes) > 0 {
			return true
		}
	}
	return false
}

// Text returns the trimmed text content of the first chain match.
func (s *Session) Text(ctx context.Context, chain types.Chain, timeout time.Duration) (string, error) {
	found, err := s.Find(ctx, chain, timeout)
	if err != nil {
		return "", err
	}
	var text string
	err = s.Run(ctx, chromedp.Text(found.Selector.Query, &text, byOption(found.Selector), chromedp.NodeVisible))
	if err != nil {
		return "", fmt.Errorf("failed to read text of %q: %w", found.Selector.Query, err)
	}
	return strings.TrimSpace(text), nil
}

// OuterHTML snapshots the first chain match's subtree, for goquery parsing.
func (s *Session) OuterHTML(ctx context.Context, chain types.Chain, timeout time.Duration) (string, error) {
	found, err := s.Find(ctx, chain, timeout)
	if err != nil {
		return "", err
	}
	var html string
	err = s.Run(ctx, chromedp.OuterHTML(found.Selector.Query, &html, byOption(found.Selector)))
	if err != nil {
		return "", fmt.Errorf("failed to snapshot %q: %w", found.Selector.Query, err)
	}
	return html, nil
}
