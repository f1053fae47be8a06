package poster

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

func writePoster(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		t.Fatal(err)
	}
}

func decodedSize(t *testing.T, img *Image) (int, int) {
	t.Helper()
	if img.Path == "" {
		t.Fatal("image has no path")
	}
	decoded, err := imaging.Open(img.Path)
	if err != nil {
		t.Fatal(err)
	}
	return decoded.Bounds().Dx(), decoded.Bounds().Dy()
}

func TestOpenOriginal(t *testing.T) {
	dir := t.TempDir()
	writePoster(t, dir, "alien.png", 100, 50)
	r := New(Options{Dir: dir, Logger: zerolog.Nop()})

	img, err := r.Open("alien.png", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Path != filepath.Join(dir, "alien.png") || img.ContentType != "image/png" {
		t.Errorf("Open() = %+v", img)
	}
}

func TestOpenResizesAndCaches(t *testing.T) {
	dir, cache := t.TempDir(), filepath.Join(t.TempDir(), "cache")
	writePoster(t, dir, "alien.jpg", 100, 50)
	r := New(Options{Dir: dir, CacheDir: cache, Quality: 80, Logger: zerolog.Nop()})

	img, err := r.Open("alien.jpg", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %s", img.ContentType)
	}
	if filepath.Dir(img.Path) != cache {
		t.Errorf("resized poster not cached: %s", img.Path)
	}
	if w, h := decodedSize(t, img); w != 50 || h != 25 {
		t.Errorf("resized to %dx%d, want 50x25", w, h)
	}

	again, err := r.Open("alien.jpg", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if again.Path != img.Path {
		t.Errorf("second Open() = %s, want cached %s", again.Path, img.Path)
	}

	// replacing the source invalidates the cached copy
	writePoster(t, dir, "alien.jpg", 200, 200)
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "alien.jpg"), later, later); err != nil {
		t.Fatal(err)
	}
	replaced, err := r.Open("alien.jpg", 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := decodedSize(t, replaced); w != 50 || h != 50 {
		t.Errorf("replaced poster resized to %dx%d, want 50x50", w, h)
	}
}

func TestOpenWithoutCache(t *testing.T) {
	dir := t.TempDir()
	writePoster(t, dir, "alien.png", 100, 50)
	r := New(Options{Dir: dir, Logger: zerolog.Nop()})

	img, err := r.Open("alien.png", 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if img.Path != "" || len(img.Data) == 0 {
		t.Errorf("Open() without cache = path %q, %d bytes", img.Path, len(img.Data))
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New(Options{Dir: dir, Logger: zerolog.Nop()})

	tests := []struct {
		name string
		want error
	}{
		{"missing.jpg", ErrNotFound},
		{"../etc/passwd", ErrNotFound},
		{"", ErrNotFound},
		{"notes.txt", ErrUnsupportedType},
	}
	for _, tt := range tests {
		if _, err := r.Open(tt.name, 10, 10); !errors.Is(err, tt.want) {
			t.Errorf("Open(%q) error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 300: 300, 5000: maxDimension} {
		if got := clamp(in); got != want {
			t.Errorf("clamp(%d) = %d, want %d", in, got, want)
		}
	}
}
