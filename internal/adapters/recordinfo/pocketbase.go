package recordinfo

import (
	"context"
	"encoding/json"
	"figview/internal/core/domain"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Layouts the record service is known to use for exp_time.
var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	"2006-01-02 15:04:05",
}

// PocketBase reads user records from a PocketBase collection.
type PocketBase struct {
	baseURL    string
	collection string
	client     *http.Client
}

func NewPocketBase(baseURL, collection string, timeout time.Duration) *PocketBase {
	return &PocketBase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

type record struct {
	ID      string `json:"id"`
	Count   int    `json:"count"`
	ExpTime string `json:"exp_time"`
}

func (p *PocketBase) RecordInfo(ctx context.Context, id string) (domain.RecordInfo, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/records/%s",
		p.baseURL, url.PathEscape(p.collection), url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RecordInfo{}, err
	}

	res, err := p.client.Do(req)
	if err != nil {
		return domain.RecordInfo{}, fmt.Errorf("error executing record request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return domain.RecordInfo{}, domain.ErrRecordNotFound
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return domain.RecordInfo{}, fmt.Errorf("error reading record response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.RecordInfo{}, fmt.Errorf("record request failed: %d", res.StatusCode)
	}

	var r record
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.RecordInfo{}, fmt.Errorf("error unmarshalling record: %w", err)
	}

	info := domain.RecordInfo{ID: r.ID, Limit: r.Count}
	if r.ExpTime != "" {
		expires, err := parseExpiry(r.ExpTime)
		if err != nil {
			return domain.RecordInfo{}, err
		}
		info.Expires = expires
	}

	log.Debug().Str("record", r.ID).Int("limit", info.Limit).Time("expires", info.Expires).Msg("record fetched")

	return info, nil
}

// parseExpiry treats timestamps without a zone as UTC.
func parseExpiry(value string) (time.Time, error) {
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid expiration time format: %q", value)
}
