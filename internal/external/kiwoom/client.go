package kiwoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/scout/pkg/config"
	"github.com/wonny/scout/pkg/httputil"
	"github.com/wonny/scout/pkg/logger"
)

// Client handles communication with the Kiwoom REST API (키움증권)
// ⭐ SSOT: 키움 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	cfg        config.KiwoomConfig

	// Token management
	accessToken string
	tokenExpiry time.Time
	tokenMu     sync.RWMutex
}

// NewClient creates a new Kiwoom API client.
// 키움 REST 는 초당 5건 제한 — 토큰 버킷으로 선제 준수한다.
func NewClient(cfg config.KiwoomConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     log,
		cfg:        cfg,
	}
}

// TokenResponse represents the OAuth token response
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresDt string `json:"expires_dt"` // yyyyMMddHHmmss
}

// getToken gets a valid access token, refreshing if necessary
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token := c.accessToken
		c.tokenMu.RUnlock()
		return token, nil
	}
	c.tokenMu.RUnlock()

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Double-check after acquiring write lock
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	url := fmt.Sprintf("%s/oauth2/token", c.cfg.BaseURL)
	body := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.cfg.AppKey,
		"secretkey":  c.cfg.AppSecret,
	}

	resp, err := c.httpClient.PostJSON(ctx, url, body, nil)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	var tokenResp TokenResponse
	if err := httputil.DecodeJSON(resp, &tokenResp); err != nil {
		return "", fmt.Errorf("token response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", fmt.Errorf("empty token in response")
	}

	c.accessToken = tokenResp.Token

	// 만료시각 파싱 실패 시 23시간 뒤로 가정 (토큰 유효기간 24시간)
	expiry := time.Now().Add(23 * time.Hour)
	if t, err := time.ParseInLocation("20060102150405", tokenResp.ExpiresDt, time.Local); err == nil {
		expiry = t.Add(-1 * time.Minute) // 1분 여유
	}
	c.tokenExpiry = expiry

	c.logger.WithFields(map[string]interface{}{
		"expires_at": c.tokenExpiry.Format(time.RFC3339),
	}).Info("Kiwoom access token refreshed")

	return c.accessToken, nil
}

// request makes an authenticated request to the Kiwoom API.
// apiID 는 키움의 TR 식별자 (api-id 헤더).
func (c *Client) request(ctx context.Context, path, apiID string, payload interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.cfg.BaseURL, path)
	headers := map[string]string{
		"authorization": fmt.Sprintf("Bearer %s", token),
		"api-id":        apiID,
	}

	return c.httpClient.PostJSON(ctx, url, payload, headers)
}

// decode checks the Kiwoom envelope return code before handing back output.
func decode(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API error status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		ReturnCode int    `json:"return_code"`
		ReturnMsg  string `json:"return_msg"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.ReturnCode != 0 {
		return fmt.Errorf("API error %d: %s", envelope.ReturnCode, envelope.ReturnMsg)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseInt64 parses Kiwoom's numeric strings, which may carry a sign prefix
// or comma separators ("+1,234", "-567").
func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}

	var v int64
	_, _ = fmt.Sscanf(s, "%d", &v)
	return v
}

// parseFloat parses Kiwoom's float strings with the same quirks.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}

	var v float64
	_, _ = fmt.Sscanf(s, "%f", &v)
	return v
}
