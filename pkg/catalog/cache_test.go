package catalog

import (
	"context"
	"image"
	"testing"

	"github.com/matzehuels/promocanvas/pkg/cache"
)

func TestImageCacheMemory(t *testing.T) {
	c := NewImageCache(CacheOptions{})
	ctx := context.Background()

	if _, ok := c.Get(ctx, "B01"); ok {
		t.Fatal("empty cache reported a hit")
	}

	img := &ResolvedImage{ID: "B01", Image: image.NewNRGBA(image.Rect(0, 0, 10, 10))}
	if got := c.Put(ctx, img, nil); got != img {
		t.Error("Put() should return the stored image")
	}

	got, ok := c.Get(ctx, "B01")
	if !ok || got != img {
		t.Fatalf("Get() = %v, %v", got, ok)
	}
}

func TestImageCacheFirstWriterWins(t *testing.T) {
	c := NewImageCache(CacheOptions{})
	ctx := context.Background()

	first := &ResolvedImage{ID: "B01", Image: image.NewNRGBA(image.Rect(0, 0, 1, 1))}
	second := &ResolvedImage{ID: "B01", Image: image.NewNRGBA(image.Rect(0, 0, 2, 2))}
	c.Put(ctx, first, nil)

	if got := c.Put(ctx, second, nil); got != first {
		t.Error("existing entry should win")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestImageCacheCorruptStoreEntry(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	keyer := cache.NewDefaultKeyer()
	if err := store.Set(ctx, keyer.ImageKey("shop.example", "B01"), []byte("{garbage"), 0); err != nil {
		t.Fatal(err)
	}

	c := NewImageCache(CacheOptions{Store: store, Catalog: "shop.example"})
	if _, ok := c.Get(ctx, "B01"); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestImageCacheStoreRoundTrip(t *testing.T) {
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	data := pngBytes(t, 150, 120)
	decoded, err := decodeImage(data)
	if err != nil {
		t.Fatal(err)
	}

	opts := CacheOptions{Store: store, Catalog: "shop.example"}
	NewImageCache(opts).Put(ctx, &ResolvedImage{ID: "B01", SourceURL: "https://img.example/a.png", Image: decoded}, data)

	got, ok := NewImageCache(opts).Get(ctx, "B01")
	if !ok {
		t.Fatal("expected store hit")
	}
	if got.SourceURL != "https://img.example/a.png" || got.Width() != 150 || got.Height() != 120 {
		t.Errorf("unexpected image %s %dx%d", got.SourceURL, got.Width(), got.Height())
	}
}
