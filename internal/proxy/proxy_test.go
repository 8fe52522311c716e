package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanaland/proxymancer/internal/cache"
	"github.com/arcanaland/proxymancer/internal/card"
	"github.com/arcanaland/proxymancer/internal/logging"
	"github.com/arcanaland/proxymancer/internal/pdfwriter"
	"github.com/arcanaland/proxymancer/internal/proxy"
	"github.com/arcanaland/proxymancer/internal/resolver"
	"github.com/arcanaland/proxymancer/internal/scryfall"
)

var (
	pageObject  = regexp.MustCompile(`/Type /Page[^s]`)
	imageObject = regexp.MustCompile(`/Subtype /Image`)
)

type env struct {
	cache    *cache.Cache
	resolver *resolver.Resolver
	requests *atomic.Int64
	output   string
}

func cardPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 63, 88))
	for y := 0; y < 88; y++ {
		for x := 0; x < 63; x++ {
			img.Set(x, y, color.RGBA{180, 40, 20, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newEnv wires the real cache, resolver and Scryfall client against a fake
// API that only knows "Shock".
func newEnv(t *testing.T) *env {
	t.Helper()

	art := cardPNG(t)
	requests := &atomic.Int64{}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch {
		case r.URL.Path == "/cards/named" && r.URL.Query().Get("exact") == "Shock":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"object":     "card",
				"name":       "Shock",
				"set":        "m19",
				"image_uris": map[string]string{"png": server.URL + "/img/shock.png"},
			})
		case r.URL.Path == "/img/shock.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(art)
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"object":  "error",
				"code":    "not_found",
				"status":  404,
				"details": "No cards found matching the query",
			})
		}
	}))
	t.Cleanup(server.Close)

	client, err := scryfall.New(server.URL, scryfall.WithRequestInterval(0))
	require.NoError(t, err)

	store, err := cache.New(t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Put(cache.Key("lightning bolt", "", ""), art))

	return &env{
		cache:    store,
		resolver: resolver.New(client, store, resolver.Options{}, logging.NewNop()),
		requests: requests,
		output:   filepath.Join(t.TempDir(), "proxies.pdf"),
	}
}

func (e *env) options() proxy.Options {
	return proxy.Options{Output: e.output, PDF: pdfwriter.Options{DPI: 72}}
}

func TestRunFromCacheMakesNoRequests(t *testing.T) {
	e := newEnv(t)

	reqs := []card.Request{{Name: "Lightning Bolt", Quantity: 2}}
	summary, err := proxy.Run(context.Background(), reqs, e.resolver, e.options(), logging.NewNop())
	require.NoError(t, err)

	assert.Zero(t, e.requests.Load())
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 2, summary.Slots)
	assert.Equal(t, 1, summary.Images)
	assert.Equal(t, []proxy.Printed{{Name: "Lightning Bolt", Copies: 2, Source: card.SourceCache}}, summary.Printed)
	assert.Empty(t, summary.Skipped)

	data, err := os.ReadFile(e.output)
	require.NoError(t, err)
	assert.Len(t, pageObject.FindAll(data, -1), 1)
	assert.Len(t, imageObject.FindAll(data, -1), 1)
}

func TestRunSkipsUnresolvableCards(t *testing.T) {
	e := newEnv(t)

	var progress []string
	opts := e.options()
	opts.OnResolved = func(req card.Request, err error) {
		progress = append(progress, req.Name)
	}

	reqs := []card.Request{
		{Name: "Lightning Bolt", Quantity: 1},
		{Name: "Definitely Not A Card", Quantity: 3},
		{Name: "Shock", Quantity: 1},
	}
	summary, err := proxy.Run(context.Background(), reqs, e.resolver, opts, logging.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"Lightning Bolt", "Definitely Not A Card", "Shock"}, progress)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "Definitely Not A Card", summary.Skipped[0].Name)
	var nf *scryfall.NotFoundError
	assert.True(t, errors.As(summary.Skipped[0].Err, &nf))

	require.Len(t, summary.Printed, 2)
	assert.Equal(t, card.SourceNetwork, summary.Printed[1].Source)
	assert.Equal(t, 2, summary.Slots)
	assert.FileExists(t, e.output)

	// the downloaded card is cached for next time
	_, ok, err := e.cache.Get(cache.Key("Shock", "", ""))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunFailsWhenNothingResolves(t *testing.T) {
	e := newEnv(t)

	reqs := []card.Request{{Name: "Nope", Quantity: 1}}
	summary, err := proxy.Run(context.Background(), reqs, e.resolver, e.options(), logging.NewNop())
	require.ErrorIs(t, err, proxy.ErrNothingResolved)
	require.NotNil(t, summary)
	assert.Len(t, summary.Skipped, 1)
	assert.NoFileExists(t, e.output)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	e := newEnv(t)
	_, err := proxy.Run(context.Background(), nil, e.resolver, e.options(), logging.NewNop())
	assert.ErrorIs(t, err, proxy.ErrNoCards)
}

func TestRunSkipsUndecodableCachedImage(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.cache.Put(cache.Key("Corrupt", "", ""), []byte("<html>")))

	reqs := []card.Request{{Name: "Corrupt", Quantity: 1}, {Name: "Lightning Bolt", Quantity: 1}}
	summary, err := proxy.Run(context.Background(), reqs, e.resolver, e.options(), logging.NewNop())
	require.NoError(t, err)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "Corrupt", summary.Skipped[0].Name)
}

func TestRunReportsUnwritableOutput(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Output = filepath.Join(t.TempDir(), "no", "such", "dir", "out.pdf")

	_, err := proxy.Run(context.Background(), []card.Request{{Name: "Lightning Bolt", Quantity: 1}}, e.resolver, opts, logging.NewNop())
	var ioErr *pdfwriter.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := proxy.Run(ctx, []card.Request{{Name: "Lightning Bolt", Quantity: 1}}, e.resolver, e.options(), logging.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}
