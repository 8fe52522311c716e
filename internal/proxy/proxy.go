// Package proxy runs the full print pipeline: resolve every requested card,
// lay the results out on pages and write the PDF.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/imaging"
	"github.com/arcanaland/proxymancer/internal/logging"
	"github.com/arcanaland/proxymancer/internal/pdfwriter"
	"github.com/arcanaland/proxymancer/internal/sheet"
)

var (
	// ErrNoCards is returned when the request list is empty.
	ErrNoCards = errors.New("no cards given")
	// ErrNothingResolved is returned when every request failed.
	ErrNothingResolved = errors.New("no cards could be resolved")
)

// Resolver looks up card images.
type Resolver interface {
	Resolve(ctx context.Context, req card.Request) (card.Resolved, error)
}

// Options configures a run.
type Options struct {
	Output string
	PDF    pdfwriter.Options

	// OnResolved, when set, is called once per request after its lookup
	// finishes. err is nil on success.
	OnResolved func(req card.Request, err error)
}

// Printed is a card that made it into the document.
type Printed struct {
	Name   string
	Copies int
	Source card.Source
}

// Skipped is a card that could not be resolved.
type Skipped struct {
	Name     string
	Quantity int
	Reason   string
	Err      error
}

// Summary reports the outcome of a run.
type Summary struct {
	Output  string
	Printed []Printed
	Skipped []Skipped
	Slots   int
	Pages   int
	Images  int
}

// Run resolves requests in order and writes the proxies to opts.Output.
// Cards that cannot be resolved are recorded in the summary and skipped; the
// document is still written as long as at least one card resolved.
func Run(ctx context.Context, requests []card.Request, resolver Resolver, opts Options, logger *slog.Logger) (*Summary, error) {
	logger = logging.NewComponentLogger(logger, "proxy")

	if len(requests) == 0 {
		return nil, ErrNoCards
	}

	summary := &Summary{Output: opts.Output}
	items := make([]sheet.Item, 0, len(requests))

	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resolved, err := resolver.Resolve(ctx, req)
		if err == nil {
			err = imaging.Check(resolved.Image)
		}
		if opts.OnResolved != nil {
			opts.OnResolved(req, err)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("skipping card", slog.String("card", req.Name), logging.Error(err))
			summary.Skipped = append(summary.Skipped, Skipped{
				Name:     req.Name,
				Quantity: req.Quantity,
				Reason:   err.Error(),
				Err:      err,
			})
			continue
		}

		logger.Debug("resolved card",
			slog.String("card", resolved.Name),
			slog.String("source", string(resolved.Source)),
			slog.Int("copies", req.Quantity))

		items = append(items, sheet.Item{Card: resolved, Quantity: req.Quantity})
		summary.Printed = append(summary.Printed, Printed{
			Name:   resolved.Name,
			Copies: req.Quantity,
			Source: resolved.Source,
		})
	}

	if len(items) == 0 {
		return summary, ErrNothingResolved
	}

	slots := sheet.Expand(items)
	pages := sheet.Compose(slots)
	summary.Slots = len(slots)

	result, err := pdfwriter.Write(opts.Output, pages, opts.PDF)
	if err != nil {
		return summary, fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	summary.Pages = result.Pages
	summary.Images = result.Images

	logger.Info("wrote proxies",
		slog.String("output", opts.Output),
		slog.Int("cards", summary.Slots),
		slog.Int("pages", summary.Pages),
		slog.Int("skipped", len(summary.Skipped)))

	return summary, nil
}
