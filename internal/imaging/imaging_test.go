package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestThumbnailJPEG(t *testing.T) {
	data := createTestJPEG(100, 100)
	out, err := Thumbnail(bytes.NewReader(data), ThumbnailSize)
	if err != nil {
		t.Fatalf("Thumbnail JPEG: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestThumbnailPNGBecomesJPEG(t *testing.T) {
	data := createTestPNG(100, 100)
	out, err := Thumbnail(bytes.NewReader(data), ThumbnailSize)
	if err != nil {
		t.Fatalf("Thumbnail PNG: %v", err)
	}
	_, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
}

func TestThumbnailDownscale(t *testing.T) {
	data := createTestJPEG(400, 200)
	out, err := Thumbnail(bytes.NewReader(data), ThumbnailSize)
	if err != nil {
		t.Fatalf("Thumbnail large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != ThumbnailSize || bounds.Dy() != ThumbnailSize/2 {
		t.Errorf("expected %dx%d, got %dx%d", ThumbnailSize, ThumbnailSize/2, bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailSmallImageNotUpscaled(t *testing.T) {
	data := createTestJPEG(50, 50)
	out, err := Thumbnail(bytes.NewReader(data), ThumbnailSize)
	if err != nil {
		t.Fatalf("Thumbnail small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small image should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailInvalidFormat(t *testing.T) {
	_, err := Thumbnail(bytes.NewReader([]byte("not an image")), ThumbnailSize)
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestThumbnailGIFRejected(t *testing.T) {
	_, err := Thumbnail(bytes.NewReader([]byte("GIF89a...")), ThumbnailSize)
	if err == nil {
		t.Error("expected error for GIF")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCacheHitSkipsFetch(t *testing.T) {
	c := NewCache(2)
	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("thumb"), nil
	}

	for range 3 {
		data, err := c.Get("1", fetch)
		require.NoError(t, err)
		assert.Equal(t, []byte("thumb"), data)
	}
	assert.Equal(t, 1, calls)
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewCache(2)
	value := func(s string) func() ([]byte, error) {
		return func() ([]byte, error) { return []byte(s), nil }
	}

	c.Get("a", value("a"))
	c.Get("b", value("b"))
	c.Get("c", value("c"))
	assert.Equal(t, 2, c.Len())

	refetched := false
	c.Get("a", func() ([]byte, error) {
		refetched = true
		return []byte("a"), nil
	})
	assert.True(t, refetched, "oldest entry should have been evicted")
}

func TestCacheErrorsNotCached(t *testing.T) {
	c := NewCache(2)
	_, err := c.Get("1", func() ([]byte, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	data, err := c.Get("1", func() ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestCacheSharesConcurrentFetch(t *testing.T) {
	c := NewCache(4)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func() ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("x"), nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get("k", fetch)
		}()
	}
	// Waiters either join the in-flight call or find the stored result.
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestCacheReset(t *testing.T) {
	c := NewCache(2)
	c.Get("a", func() ([]byte, error) { return []byte("a"), nil })
	c.Reset()
	assert.Equal(t, 0, c.Len())
}
