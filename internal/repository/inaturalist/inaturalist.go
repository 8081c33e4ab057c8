package inaturalist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

// Repo queries the iNaturalist taxa search for reference photos.
type Repo struct {
	Path   string
	Client *http.Client
}

func NewRepo(config *configs.Config) *Repo {
	return &Repo{
		Path: config.INat.Path,
		Client: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// FindPhotoURL returns the first matching taxon's medium photo URL.
func (repo *Repo) FindPhotoURL(ctx context.Context, commonName string) (string, error) {
	encodedQuery := url.QueryEscape(commonName)
	req := fmt.Sprintf("taxa?q=%s&per_page=1", encodedQuery)

	resp, err := repo.doRequest(ctx, req)
	if err != nil {
		prometheus.APIFailures.WithLabelValues("taxa_search").Inc()
		return "", err
	}

	var search struct {
		Results []struct {
			DefaultPhoto struct {
				MediumURL string `json:"medium_url"`
			} `json:"default_photo"`
		} `json:"results"`
	}
	if err = json.Unmarshal(resp, &search); err != nil {
		return "", err
	}

	if len(search.Results) == 0 || search.Results[0].DefaultPhoto.MediumURL == "" {
		return "", domain.ErrRecordNotFound
	}
	return search.Results[0].DefaultPhoto.MediumURL, nil
}

func (repo *Repo) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	const op = "Repo.doRequest"
	req, err := http.NewRequestWithContext(ctx, "GET", repo.Path+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request:%w", op, err)
	}
	req.Header.Add("accept", "application/json")

	resp, err := repo.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: bad status %d, response: %s", op, resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
