package file

import (
	"context"
	"errors"
	"figview/internal/core/domain"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
)

// Info is what the viewer needs to know about an image before drawing it.
type Info struct {
	Size  domain.Size
	Bytes int64
	EXIF  map[string]string
}

// ImageInfo reads the natural size from the image header and a few EXIF fields when present.
func ImageInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	config, _, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("decoding image config: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("getting file stats: %w", err)
	}

	info := Info{
		Size:  domain.Size{W: float64(config.Width), H: float64(config.Height)},
		Bytes: stat.Size(),
		EXIF:  make(map[string]string),
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seeking file for exif: %w", err)
	}

	// Most generated images carry no EXIF at all.
	x, err := exif.Decode(f)
	if err != nil {
		return info, nil
	}

	if model, err := x.Get(exif.Model); err == nil {
		if s, err := model.StringVal(); err == nil {
			info.EXIF["Camera Model"] = s
		}
	}
	if fNum, err := x.Get(exif.FNumber); err == nil {
		if numer, denom, err := fNum.Rat2(0); err == nil && denom != 0 {
			info.EXIF["F-Number"] = fmt.Sprintf("f/%.1f", float64(numer)/float64(denom))
		}
	}
	if exp, err := x.Get(exif.ExposureTime); err == nil {
		if numer, denom, err := exp.Rat2(0); err == nil {
			info.EXIF["Exposure Time"] = fmt.Sprintf("%d/%d s", numer, denom)
		}
	}
	if taken, err := x.DateTime(); err == nil {
		info.EXIF["Taken"] = taken.Format("2006-01-02 15:04:05")
	}

	return info, nil
}

// Saver copies viewed images into the download directory.
type Saver struct {
	dir string
}

func NewSaver(dir string) *Saver {
	return &Saver{dir: dir}
}

func (s *Saver) SaveAs(ctx context.Context, source string, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating download directory: %w", err)
	}

	src, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("error opening source: %w", err)
	}
	defer src.Close()

	dst, dest, err := createUnique(s.dir, filepath.Base(filename))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dest)
		return "", fmt.Errorf("error copying image: %w", err)
	}

	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("error closing %s: %w", dest, err)
	}

	log.Info().Str("source", source).Str("path", dest).Msg("saved image")

	return dest, nil
}

// maxNameSuffix bounds how many "_N" variants createUnique tries.
const maxNameSuffix = 1000

// createUnique creates filename in dir, or the first free "<stem>_N<ext>" when it is taken.
// Existing files are never overwritten.
func createUnique(dir, filename string) (*os.File, string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for n := 1; n <= maxNameSuffix; n++ {
		name := filename
		if n > 1 {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}

		dest := filepath.Join(dir, name)
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("error creating %s: %w", dest, err)
		}

		return f, dest, nil
	}

	return nil, "", fmt.Errorf("no free name for %s in %s", filename, dir)
}
