package naver

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
)

// Client scrapes Naver Finance as the fallback feed when the brokerage API
// has no data for a ticker.
// ⭐ SSOT: 네이버 금융 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.NaverConfig
}

// NewClient creates a Naver Finance scraper client.
// limiter 는 선택적 — Redis 분산 리밋 또는 nil.
func NewClient(cfg config.NaverConfig, httpClient *httputil.Client, limiter httputil.RateWaiter, log *logger.Logger) *Client {
	if limiter != nil {
		httpClient = httpClient.WithLimiter(limiter)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// fetch retrieves a page with browser-like headers. 스크래핑 차단 우회용.
func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    fmt.Sprintf("%s/", c.cfg.BaseURL),
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, url, headers)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body failed: %w", err)
	}

	return string(body), nil
}
