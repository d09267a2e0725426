package file

import (
	"context"
	"figview/internal/core/domain"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// DownloadFile returns the byte content of a file on a provided URL.
func DownloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code on download: %d", res.StatusCode)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response %w", err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	return buf, nil
}

// ReadUpload loads an image to submit from a local path or an http(s) URL and sniffs its
// content type from the bytes.
func ReadUpload(ctx context.Context, location, prompt, userID string) (domain.Submission, error) {
	var (
		data     []byte
		err      error
		filename string
	)

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		data, err = DownloadFile(ctx, location)
		filename = path.Base(strings.SplitN(location, "?", 2)[0])
	} else {
		data, err = os.ReadFile(location)
		filename = filepath.Base(location)
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("error reading upload: %w", err)
	}

	contentType := http.DetectContentType(data)

	log.Debug().
		Str("location", location).
		Str("contentType", contentType).
		Int("bytes", len(data)).
		Msg("read upload")

	return domain.Submission{
		Filename:    filename,
		ContentType: contentType,
		Image:       data,
		Prompt:      prompt,
		UserID:      userID,
	}, nil
}

// SaveTempFile saves bytes to a temp location and returns the path.
func SaveTempFile(data []byte, extension string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	log.Debug().Int("bytes", len(data)).Str("extension", extension).Msg("creating temp file")

	path := filepath.Join(os.TempDir(), fmt.Sprintf("%s%s", id.String(), extension))

	f, err := os.Create(path)
	if err != nil {
		err = fmt.Errorf("error creating temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	defer f.Close()

	if _, err := f.Write(data); err != nil {
		err = fmt.Errorf("error writing temp file %w", err)
		log.Error().Err(err).Send()
		return "", err
	}

	log.Debug().Str("path", f.Name()).Msg("created file")

	return f.Name(), nil
}

// RemoveTempFile removes a specified temporary file at the given path and logs success or failure.
func RemoveTempFile(path string) {
	err := os.Remove(path)
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not clean up temp file")
		return
	}
	log.Debug().Str("path", path).Msg("cleaned up temp file")
}
