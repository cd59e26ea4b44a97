package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/promocanvas/pkg/catalog"
	"github.com/matzehuels/promocanvas/pkg/errors"
)

// newTestRunner serves a catalog where every identifier in sizes has a
// product page pointing at a generated PNG of that size.
func newTestRunner(t *testing.T, sizes map[string][2]int) *Runner {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/dp/"):
			id := strings.TrimPrefix(r.URL.Path, "/dp/")
			if _, ok := sizes[id]; !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, `<html><img id="landingImage" src="/img/%s.png"></html>`, id)
		case strings.HasPrefix(r.URL.Path, "/img/"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/img/"), ".png")
			size, ok := sizes[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			img := image.NewNRGBA(image.Rect(0, 0, size[0], size[1]))
			for i := range img.Pix {
				img.Pix[i] = 0x40
			}
			png.Encode(w, img)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	fetcher := catalog.NewFetcher(catalog.Config{
		DetailURL:  server.URL + "/dp/%s",
		Attempts:   1,
		RetryDelay: -1,
		HTTPClient: server.Client(),
	}, nil, nil)
	return NewRunner(fetcher, discard())
}

func TestComposeExampleScenario(t *testing.T) {
	r := newTestRunner(t, map[string][2]int{"A1": {500, 500}, "A2": {500, 500}})

	result, err := r.Compose(context.Background(), Options{
		Identifiers: []string{"A1", "A2"},
		Fractions:   []float64{0.25, 0.25},
		Background:  "#ffffff",
	})
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	if len(result.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(result.Placements))
	}
	for _, p := range result.Placements {
		if p.Rect().Dx() != 158 {
			t.Errorf("width = %d, want 158", p.Rect().Dx())
		}
		if p.Y < 30 || p.Bottom() > 270 {
			t.Errorf("placement leaves y band [30, 270]: %v..%v", p.Y, p.Bottom())
		}
	}
	left := result.Placements[0].X
	right := 634 - result.Placements[1].Right()
	if d := left - right; d > 1 || d < -1 {
		t.Errorf("not symmetric: left %v right %v", left, right)
	}
	if result.Artifact.Width != 634 || result.Artifact.Height != 300 {
		t.Errorf("artifact size = %dx%d", result.Artifact.Width, result.Artifact.Height)
	}
}

func TestComposeAllFailedIsBlank(t *testing.T) {
	r := newTestRunner(t, nil)

	result, err := r.Compose(context.Background(), Options{
		Identifiers: []string{"X1", "X2", "X3"},
		Background:  "#336699",
	})
	if err != nil {
		t.Fatalf("Compose() should not fail, got %v", err)
	}
	if len(result.Placements) != 0 {
		t.Errorf("placements = %d, want 0", len(result.Placements))
	}
	if !reflect.DeepEqual(result.Missing, []string{"X1", "X2", "X3"}) {
		t.Errorf("Missing = %v", result.Missing)
	}

	img, err := jpeg.Decode(bytes.NewReader(result.Artifact.Data))
	if err != nil {
		t.Fatal(err)
	}
	want := color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 255}
	for _, pt := range []image.Point{{0, 0}, {317, 150}, {633, 299}} {
		r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
		if diff(r>>8, want.R) > 4 || diff(g>>8, want.G) > 4 || diff(b>>8, want.B) > 4 {
			t.Errorf("pixel %v = %d,%d,%d; want background", pt, r>>8, g>>8, b>>8)
		}
	}
}

func TestComposePartialUsesOwnFractions(t *testing.T) {
	r := newTestRunner(t, map[string][2]int{"A1": {400, 400}, "A3": {400, 400}})

	result, err := r.Compose(context.Background(), Options{
		Identifiers: []string{"A1", "A2", "A3"},
		Fractions:   []float64{0.2, 0.4, 0.3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(result.Missing, []string{"A2"}) {
		t.Errorf("Missing = %v, want [A2]", result.Missing)
	}
	if len(result.Placements) != 2 {
		t.Fatalf("placements = %d, want 2", len(result.Placements))
	}
	// floor(0.2*634)=126, floor(0.3*634)=190
	if result.Placements[0].Width != 126 || result.Placements[1].Width != 190 {
		t.Errorf("widths = %v, %v", result.Placements[0].Width, result.Placements[1].Width)
	}
	if result.Resolved[1].ID != "A3" {
		t.Errorf("second resolved = %s, want A3", result.Resolved[1].ID)
	}
}

func TestComposeCanvasConstant(t *testing.T) {
	r := newTestRunner(t, map[string][2]int{"A": {300, 200}, "B": {200, 300}, "C": {500, 500}})
	ids := []string{"A", "B", "C"}

	for n := 1; n <= 3; n++ {
		result, err := r.Compose(context.Background(), Options{Identifiers: ids[:n], Width: 800, Height: 400})
		if err != nil {
			t.Fatal(err)
		}
		img, err := jpeg.Decode(bytes.NewReader(result.Artifact.Data))
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
			t.Errorf("n=%d canvas = %v, want 800x400", n, b)
		}
		if result.Stats.Resolved != n {
			t.Errorf("n=%d resolved = %d", n, result.Stats.Resolved)
		}
	}
}

func TestComposeInvalidOptions(t *testing.T) {
	r := newTestRunner(t, nil)
	_, err := r.Compose(context.Background(), Options{Identifiers: []string{"A"}, Fractions: []float64{0.9}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func diff(a uint32, b uint8) uint32 {
	if a > uint32(b) {
		return a - uint32(b)
	}
	return uint32(b) - a
}
