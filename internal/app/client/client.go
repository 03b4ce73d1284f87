// Package client - HTTP клиент API tgsync: позволяет отправить батч на удаленный
// сервер вместо локальных хранилищ.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"tgsync/internal/app/collector"
	"tgsync/internal/domain/record"
	"tgsync/internal/domain/sync"
)

const (
	defaultTimeout = 5 * time.Minute
	userAgent      = "tgsync-client/1.0"
)

var ErrServer = errors.New("server error")

// HealthStatus ответ GET /api/v1/health
type HealthStatus struct {
	Status    string `json:"status"`
	Providers []struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
		Error     string `json:"error,omitempty"`
	} `json:"providers"`
}

// TableStatus ответ GET /api/v1/status
type TableStatus struct {
	Provider string                 `json:"provider"`
	Rows     int                    `json:"rows"`
	Messages collector.StatusReport `json:"messages"`
	Groups   collector.StatusReport `json:"common_groups"`
}

type Client struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
}

// New создает клиент; address - "host:port" или полный URL.
func New(address string, log *slog.Logger) *Client {
	baseURL := strings.TrimRight(address, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		client: &http.Client{
			// сверка большой таблицы в Sheets идет долго
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		log:     log.With("component", "api_client", "server", baseURL),
		baseURL: baseURL,
	}
}

// HealthCheck проверяет доступность сервера и его хранилищ
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.call(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sync отправляет батч; ответ со статусом Error возвращается вместе с отчетом.
func (c *Client) Sync(ctx context.Context, batch []record.Record) (*sync.Report, error) {
	req := sync.SyncRequest{Records: make([]map[string]string, 0, len(batch))}
	for _, r := range batch {
		req.Records = append(req.Records, r)
	}

	var out sync.SyncResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/sync", req, &out); err != nil {
		return nil, err
	}
	if out.Status == "Error" {
		return out.Report, fmt.Errorf("%w: %s", ErrServer, out.Error)
	}
	return out.Report, nil
}

func (c *Client) Stats(ctx context.Context) (*sync.StatsResponse, error) {
	var out sync.StatsResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/sync/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetStats(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/sync/stats", nil, nil)
}

// Status возвращает состояние загрузчиков для хранилища provider (пусто - первое).
func (c *Client) Status(ctx context.Context, provider string) (*TableStatus, error) {
	path := "/api/v1/status"
	if provider != "" {
		path += "?" + url.Values{"provider": {provider}}.Encode()
	}

	var out TableStatus
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, result)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("sending request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("сервер недоступен: %w", err)
	}
	return resp, nil
}

func (c *Client) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	c.log.Debug("response received", "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode >= http.StatusBadRequest {
		// ошибки huma приходят как application/problem+json
		var problem struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
			return fmt.Errorf("%w: %d %s", ErrServer, resp.StatusCode, problem.Detail)
		}
		return fmt.Errorf("%w: статус %d", ErrServer, resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}
