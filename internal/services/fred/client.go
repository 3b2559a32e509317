package fred

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"CorrScope/internal/domain/models"
	"CorrScope/internal/services/ratelimit"
	httpclient "CorrScope/pkg/http"
	applogger "CorrScope/pkg/logger"
	"CorrScope/pkg/util"
)

const limiterKey = "fred-api"

// Client fetches macro series observations from the FRED HTTP API. It
// implements the series source contract and is normally stacked behind the
// local FRED-MD dataset as a fallback for ids the snapshot lacks.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.Limiter
	rps     float64
	l       *applogger.Logger
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

func NewClient(cfg Config, l *applogger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 2
	}
	return &Client{
		http:    httpclient.NewClient(httpclient.WithTimeout(cfg.Timeout)),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: ratelimit.New(),
		rps:     cfg.RPS,
		l:       l,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func (c *Client) Load(ctx context.Context, symbol string) (models.Series, error) {
	if c.apiKey == "" {
		return models.Series{}, fmt.Errorf("fred api key not configured: %w", models.ErrSeriesNotFound)
	}
	id := strings.ToUpper(strings.TrimSpace(symbol))

	if err := c.limiter.Wait(ctx, limiterKey, c.rps, c.rps); err != nil {
		return models.Series{}, fmt.Errorf("fred rate limit: %w", err)
	}

	var resp observationsResponse
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/series/observations",
		QueryParams: map[string]string{
			"series_id": id,
			"api_key":   c.apiKey,
			"file_type": "json",
		},
	}, &resp)
	if err != nil {
		// the API answers 400 for unknown series ids
		if strings.Contains(err.Error(), "status 400") {
			return models.Series{}, fmt.Errorf("fred %s: %w", id, models.ErrSeriesNotFound)
		}
		return models.Series{}, fmt.Errorf("fred %s: %w", id, err)
	}

	points := make([]models.Point, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		if obs.Value == "." || obs.Value == "" {
			continue // FRED marks missing observations with a dot
		}
		date, ok := util.ParseDate(obs.Date)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, models.Point{Date: date, Value: v})
	}
	if len(points) == 0 {
		return models.Series{}, fmt.Errorf("fred %s: no observations: %w", id, models.ErrSeriesNotFound)
	}
	if c.l != nil {
		c.l.Debug("fred series fetched",
			applogger.String("series_id", id),
			applogger.Int("points", len(points)),
		)
	}
	return models.Series{Symbol: id, Points: points}, nil
}
