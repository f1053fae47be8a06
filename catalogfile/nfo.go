package catalogfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// nfo holds the fields of a Kodi style .nfo movie file the catalog uses.
type nfo struct {
	Title     string   `xml:"title"`
	Plot      string   `xml:"plot"`
	Runtime   string   `xml:"runtime"`
	Year      string   `xml:"year"`
	Premiered string   `xml:"premiered"`
	Genre     []string `xml:"genre"`
	Thumb     string   `xml:"thumb"`
	FileInfo  struct {
		StreamDetails struct {
			Video struct {
				DurationInSeconds string `xml:"durationinseconds"`
			} `xml:"video"`
		} `xml:"streamdetails"`
	} `xml:"fileinfo"`
}

// decodeNfo parses a Kodi .nfo file. Numeric fields are kept as strings
// as they are often malformed.
func decodeNfo(r io.Reader) (*nfo, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	txt := strings.ToValidUTF8(string(buf), "�")

	data := &nfo{}
	d := xml.NewDecoder(strings.NewReader(txt))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	if err := d.Decode(data); err != nil {
		return nil, err
	}
	data.Genre = splitGenres(data.Genre)
	return data, nil
}

// duration returns the runtime in seconds, 0 if unknown.
func (n *nfo) duration() int {
	// runtime is in minutes
	if minutes := parseInt(n.Runtime); minutes > 0 {
		return minutes * 60
	}
	return parseInt(n.FileInfo.StreamDetails.Video.DurationInSeconds)
}

// year returns the release year, taken from the premiere date if year is not set.
func (n *nfo) year() int {
	if y := parseInt(n.Year); y > 0 {
		return y
	}
	if len(n.Premiered) >= 4 {
		return parseInt(n.Premiered[:4])
	}
	return 0
}

func parseInt(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

// mergeNfo fills fields of e that are not set from the .nfo file referenced by e.
// Relative paths are resolved against dir.
func (e *Entry) mergeNfo(dir string) error {
	path := e.Nfo
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := decodeNfo(file)
	if err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if e.Title == "" {
		e.Title = strings.TrimSpace(n.Title)
	}
	if e.Description == "" {
		e.Description = strings.TrimSpace(n.Plot)
	}
	if e.Duration == 0 {
		e.Duration = n.duration()
	}
	if e.Year == 0 {
		e.Year = n.year()
	}
	if thumb := strings.TrimSpace(n.Thumb); e.Poster == "" && thumb != "" && filepath.IsLocal(thumb) {
		e.Poster = thumb
	}
	if len(e.Genres) == 0 {
		e.Genres = n.Genre
	}
	return nil
}
