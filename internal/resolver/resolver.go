package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/imaging"
	"github.com/arcanaland/proxymancer/internal/logging"
	"github.com/arcanaland/proxymancer/internal/scryfall"
)

// Fetcher is the subset of the Scryfall client used for resolution.
type Fetcher interface {
	Named(ctx context.Context, name string, fuzzy bool) (*scryfall.Card, error)
	Printing(ctx context.Context, setCode, collectorNumber string) (*scryfall.Card, error)
	Download(ctx context.Context, imageURL string) ([]byte, error)
}

// Store is the image cache consulted before the network.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
}

var (
	_ Fetcher = (*scryfall.Client)(nil)
	_ Store   = (*cache.Cache)(nil)
)

// Options tunes lookups.
type Options struct {
	Fuzzy      bool
	ImageSizes []string
}

// Resolver turns card requests into image bytes.
type Resolver struct {
	fetcher Fetcher
	store   Store
	opts    Options
	logger  *slog.Logger
}

// New creates a Resolver. A nil store disables caching entirely: nothing is
// read from or written to disk.
func New(fetcher Fetcher, store Store, opts Options, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve returns the image for req, from the cache when possible.
func (r *Resolver) Resolve(ctx context.Context, req card.Request) (card.Resolved, error) {
	key := cache.Key(req.Name, req.SetCode, req.CollectorNumber)

	if r.store != nil {
		data, ok, err := r.store.Get(key)
		if err != nil {
			r.logger.Warn("cache read failed", slog.String("card", req.Name), logging.Error(err))
		} else if ok {
			return card.Resolved{
				Name:    req.Name,
				Key:     key,
				SetCode: req.SetCode,
				Image:   data,
				Source:  card.SourceCache,
			}, nil
		}
	}

	if r.fetcher == nil {
		return card.Resolved{}, fmt.Errorf("%s: not cached and no network client configured", req.Name)
	}

	var (
		info *scryfall.Card
		err  error
	)
	if req.HasPrinting() {
		info, err = r.fetcher.Printing(ctx, req.SetCode, req.CollectorNumber)
	} else {
		info, err = r.fetcher.Named(ctx, req.Name, r.opts.Fuzzy)
	}
	if err != nil {
		return card.Resolved{}, err
	}

	imageURL, err := info.ImageURL(r.opts.ImageSizes...)
	if err != nil {
		return card.Resolved{}, fmt.Errorf("%s: %w", info.Name, err)
	}

	data, err := r.fetcher.Download(ctx, imageURL)
	if err != nil {
		return card.Resolved{}, err
	}
	if err := imaging.Check(data); err != nil {
		return card.Resolved{}, fmt.Errorf("%s: %w", info.Name, err)
	}

	if r.store != nil {
		if err := r.store.Put(key, data); err != nil {
			r.logger.Warn("cache write failed", slog.String("card", req.Name), logging.Error(err))
		}
	}

	name := info.Name
	if name == "" {
		name = req.Name
	}
	setCode := info.Set
	if setCode == "" {
		setCode = req.SetCode
	}

	r.logger.Debug("fetched card image",
		slog.String("card", name),
		slog.String("set", setCode),
		slog.Int("bytes", len(data)))

	return card.Resolved{
		Name:    name,
		Key:     key,
		SetCode: setCode,
		Image:   data,
		Source:  card.SourceNetwork,
	}, nil
}
