package poster

import (
	"bytes"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

func (r *Resizer) encode(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cacheWrite stores a resized poster via a temporary file and rename.
func (r *Resizer) cacheWrite(path string, blob []byte) error {
	if err := os.MkdirAll(r.cachedir, 0o755); err != nil {
		r.log.Warn().Err(err).Str("dir", r.cachedir).Msg("cannot create cache dir")
		return err
	}
	tmp := path + r.tmpExt
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		r.log.Warn().Err(err).Str("file", tmp).Msg("cannot write cache file")
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
