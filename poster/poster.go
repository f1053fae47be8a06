// Package poster serves movie poster images, resized on request and cached on disk.
package poster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/djherbis/times"
	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/idhash"
)

// maxDimension caps requested width and height.
const maxDimension = 2000

var (
	ErrNotFound        = errors.New("poster not found")
	ErrUnsupportedType = errors.New("unsupported image type")
)

type Options struct {
	// Dir holds the original poster images.
	Dir string
	// CacheDir holds resized images, resizing results are not cached if empty.
	CacheDir string
	// Quality is the JPEG encoding quality.
	Quality int
	Logger  zerolog.Logger
}

type Resizer struct {
	dir      string
	cachedir string
	quality  int
	tmpExt   string
	log      zerolog.Logger

	resizeMutexMap     map[string]*sync.Mutex
	resizeMutexMapLock sync.Mutex
}

func New(o Options) *Resizer {
	r := &Resizer{
		dir:            o.Dir,
		cachedir:       o.CacheDir,
		quality:        o.Quality,
		tmpExt:         fmt.Sprintf(".%d", os.Getpid()),
		log:            o.Logger.With().Str("component", "poster").Logger(),
		resizeMutexMap: make(map[string]*sync.Mutex),
	}
	if r.quality <= 0 || r.quality > 100 {
		r.quality = 85
	}
	return r
}

// Image is a poster ready to be served.
type Image struct {
	// Path of the file to serve.
	Path        string
	ContentType string
	// Data holds the resized image if it could not be cached.
	Data []byte
}

// Open returns the poster name, resized to width w and height h. If only one of w
// and h is set the aspect ratio is kept, if both are 0 the original is returned.
func (r *Resizer) Open(name string, w, h int) (*Image, error) {
	if name == "" || !filepath.IsLocal(name) {
		return nil, ErrNotFound
	}
	src := filepath.Join(r.dir, name)
	ts, err := times.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	format, err := imaging.FormatFromFilename(name)
	if err != nil || (format != imaging.JPEG && format != imaging.PNG) {
		return nil, ErrUnsupportedType
	}
	img := &Image{
		Path:        src,
		ContentType: "image/" + strings.ToLower(format.String()),
	}

	w, h = clamp(w), clamp(h)
	if w == 0 && h == 0 {
		return img, nil
	}

	cacheFile := r.cacheName(name, ts, w, h, format)
	if cacheFile != "" {
		if _, err := os.Stat(cacheFile); err == nil {
			img.Path = cacheFile
			return img, nil
		}
	}

	// one resize per source image at a time
	r.resizeMutexMapLock.Lock()
	m, ok := r.resizeMutexMap[src]
	if !ok {
		m = &sync.Mutex{}
		r.resizeMutexMap[src] = m
	}
	r.resizeMutexMapLock.Unlock()
	m.Lock()
	defer m.Unlock()

	// a concurrent request might have written it
	if cacheFile != "" {
		if _, err := os.Stat(cacheFile); err == nil {
			img.Path = cacheFile
			return img, nil
		}
	}

	orig, err := imaging.Open(src)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", name, err)
	}
	resized := imaging.Resize(orig, w, h, imaging.Lanczos)

	data, err := r.encode(resized, format)
	if err != nil {
		return nil, err
	}
	if cacheFile != "" && r.cacheWrite(cacheFile, data) == nil {
		img.Path = cacheFile
		return img, nil
	}
	img.Path = ""
	img.Data = data
	return img, nil
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return min(v, maxDimension)
}

// cacheName returns the cache path of a resized poster. The change and modification
// times of the source are part of the name so replaced posters are resized again.
func (r *Resizer) cacheName(name string, ts times.Timespec, w, h int, format imaging.Format) string {
	if r.cachedir == "" {
		return ""
	}
	changed := ts.ModTime()
	if ts.HasChangeTime() && ts.ChangeTime().After(changed) {
		changed = ts.ChangeTime()
	}
	ext := strings.ToLower(filepath.Ext(name))
	if format == imaging.JPEG {
		ext = ".jpg"
	}
	return filepath.Join(r.cachedir, fmt.Sprintf("%s.%x_%dx%dq%d%s",
		idhash.Hash(name), changed.UnixNano(), w, h, r.quality, ext))
}
