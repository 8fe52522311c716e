package resolver

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/scryfall"
)

var (
	boltPNG    = tinyPNG(color.RGBA{200, 0, 0, 255})
	bolt2x2PNG = tinyPNG(color.RGBA{0, 0, 200, 255})
)

func tinyPNG(c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type fakeFetcher struct {
	cards     map[string]*scryfall.Card
	images    map[string][]byte
	calls     int
	lastFuzzy bool
}

func (f *fakeFetcher) Named(_ context.Context, name string, fuzzy bool) (*scryfall.Card, error) {
	f.calls++
	f.lastFuzzy = fuzzy
	if c, ok := f.cards[name]; ok {
		return c, nil
	}
	return nil, &scryfall.NotFoundError{Query: name}
}

func (f *fakeFetcher) Printing(_ context.Context, setCode, number string) (*scryfall.Card, error) {
	f.calls++
	if c, ok := f.cards[setCode+"/"+number]; ok {
		return c, nil
	}
	return nil, &scryfall.NotFoundError{Query: setCode + "/" + number}
}

func (f *fakeFetcher) Download(_ context.Context, url string) ([]byte, error) {
	f.calls++
	if data, ok := f.images[url]; ok {
		return data, nil
	}
	return nil, &scryfall.NetworkError{URL: url, Status: 500}
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		cards: map[string]*scryfall.Card{
			"Lightning Bolt": {Name: "Lightning Bolt", Set: "m10", ImageURIs: &scryfall.ImageURIs{PNG: "https://img/bolt.png"}},
			"2x2/117":        {Name: "Lightning Bolt", Set: "2x2", ImageURIs: &scryfall.ImageURIs{PNG: "https://img/bolt-2x2.png"}},
			"Broken":         {Name: "Broken", ImageURIs: &scryfall.ImageURIs{PNG: "https://img/missing.png"}},
			"Imageless":      {Name: "Imageless"},
			"Garbled":        {Name: "Garbled", ImageURIs: &scryfall.ImageURIs{PNG: "https://img/error.html"}},
		},
		images: map[string][]byte{
			"https://img/bolt.png":     boltPNG,
			"https://img/bolt-2x2.png": bolt2x2PNG,
			"https://img/error.html":   []byte("<html>rate limited</html>"),
		},
	}
}

func newStore(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.New(filepath.Join(t.TempDir(), "images"), nil)
	require.NoError(t, err)
	return c
}

func TestResolveFetchesAndCaches(t *testing.T) {
	fetcher := newFetcher()
	store := newStore(t)
	r := New(fetcher, store, Options{}, nil)

	got, err := r.Resolve(context.Background(), card.Request{Name: "Lightning Bolt", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, card.SourceNetwork, got.Source)
	assert.Equal(t, boltPNG, got.Image)
	assert.Equal(t, "m10", got.SetCode)
	assert.Equal(t, 2, fetcher.calls)

	cached, ok, err := store.Get(cache.Key("lightning bolt", "", ""))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, boltPNG, cached)
}

func TestResolveCacheHitMakesNoNetworkCalls(t *testing.T) {
	fetcher := newFetcher()
	store := newStore(t)
	require.NoError(t, store.Put(cache.Key("lightning bolt", "", ""), []byte("cached-bolt")))

	r := New(fetcher, store, Options{}, nil)
	got, err := r.Resolve(context.Background(), card.Request{Name: "  LIGHTNING  Bolt", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, card.SourceCache, got.Source)
	assert.Equal(t, []byte("cached-bolt"), got.Image)
	assert.Zero(t, fetcher.calls)
}

func TestResolveWithoutStoreAlwaysFetches(t *testing.T) {
	fetcher := newFetcher()
	r := New(fetcher, nil, Options{Fuzzy: true}, nil)

	for i := 0; i < 2; i++ {
		got, err := r.Resolve(context.Background(), card.Request{Name: "Lightning Bolt", Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, card.SourceNetwork, got.Source)
	}
	assert.Equal(t, 4, fetcher.calls)
	assert.True(t, fetcher.lastFuzzy)
}

func TestResolvePrinting(t *testing.T) {
	fetcher := newFetcher()
	store := newStore(t)
	r := New(fetcher, store, Options{}, nil)

	got, err := r.Resolve(context.Background(), card.Request{Name: "Lightning Bolt", Quantity: 1, SetCode: "2x2", CollectorNumber: "117"})
	require.NoError(t, err)
	assert.Equal(t, bolt2x2PNG, got.Image)
	assert.Equal(t, cache.Key("Lightning Bolt", "2x2", "117"), got.Key)

	_, ok, err := store.Get(cache.Key("Lightning Bolt", "", ""))
	require.NoError(t, err)
	assert.False(t, ok, "a pinned printing must not populate the plain name entry")
}

func TestResolveErrors(t *testing.T) {
	fetcher := newFetcher()
	store := newStore(t)
	r := New(fetcher, store, Options{}, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, card.Request{Name: "Lightning Boltt", Quantity: 1})
	var nf *scryfall.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = r.Resolve(ctx, card.Request{Name: "Broken", Quantity: 1})
	var ne *scryfall.NetworkError
	assert.True(t, errors.As(err, &ne))

	_, err = r.Resolve(ctx, card.Request{Name: "Imageless", Quantity: 1})
	assert.ErrorIs(t, err, scryfall.ErrNoImage)

	_, err = r.Resolve(ctx, card.Request{Name: "Garbled", Quantity: 1})
	assert.Error(t, err)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries, "failures must not create cache entries")
}
