package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"figview/internal/core/domain"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const apiKeyHeader = "X-API-Key"

// Endpoint is a client for the image-processing service.
type Endpoint struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewEndpoint(baseURL, apiKey string, timeout time.Duration) *Endpoint {
	return &Endpoint{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Submit uploads the image and prompt. The service either streams back the generated image
// or answers with a JSON envelope.
func (e *Endpoint) Submit(ctx context.Context, submission domain.Submission) (domain.GeneratedImage, error) {
	payload, contentType, err := encodeSubmission(submission)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("error encoding submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/process-image", payload)
	if err != nil {
		log.Error().Err(err).Msg("error creating POST request for endpoint")
		return domain.GeneratedImage{}, err
	}

	req.Header.Set("Content-Type", contentType)
	key := submission.UserID
	if key == "" {
		key = e.apiKey
	}
	if key != "" {
		req.Header.Set(apiKeyHeader, key)
	}

	res, err := e.client.Do(req)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("error executing endpoint request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("error reading endpoint response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.GeneratedImage{}, responseError(res.StatusCode, body)
	}

	mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "image/") {
		log.Debug().Str("contentType", mediaType).Int("bytes", len(body)).Msg("endpoint returned image")
		return domain.GeneratedImage{Data: body, ContentType: mediaType}, nil
	}

	var result envelope
	if err := json.Unmarshal(body, &result); err != nil {
		return domain.GeneratedImage{}, fmt.Errorf("error unmarshalling endpoint response: %w", err)
	}

	if !result.Success {
		if result.Error == "" {
			return domain.GeneratedImage{}, errors.New("processing failed")
		}
		return domain.GeneratedImage{}, errors.New(result.Error)
	}

	log.Debug().Str("message", result.Message).Msg("endpoint returned envelope")

	return domain.GeneratedImage{Text: string(result.Result), ContentType: mediaType}, nil
}

func encodeSubmission(submission domain.Submission) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	filename := submission.Filename
	if filename == "" {
		filename = "upload"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data",
		map[string]string{"name": "file", "filename": filename}))
	header.Set("Content-Type", submission.ContentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(submission.Image); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("prompt", submission.Prompt); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func responseError(status int, body []byte) error {
	var detail errorResponse
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return errors.New(detail.Detail)
	}

	return fmt.Errorf("request failed: %d", status)
}

type healthResponse struct {
	Status string `json:"status"`
}

func (e *Endpoint) Health(ctx context.Context) error {
	body, err := e.get(ctx, "/health")
	if err != nil {
		return err
	}

	var health healthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("error unmarshalling health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("endpoint unhealthy: %q", health.Status)
	}

	return nil
}

func (e *Endpoint) Models(ctx context.Context) (domain.ModelInfo, error) {
	body, err := e.get(ctx, "/models")
	if err != nil {
		return domain.ModelInfo{}, err
	}

	var info domain.ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return domain.ModelInfo{}, fmt.Errorf("error unmarshalling models response: %w", err)
	}

	return info, nil
}

func (e *Endpoint) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing endpoint request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading endpoint response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, responseError(res.StatusCode, body)
	}

	return body, nil
}
