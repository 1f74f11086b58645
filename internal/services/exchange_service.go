// internal/services/exchange_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/construmax/construmax-backend/internal/config"
)

// ErrRateUnavailable means no rate was ever fetched successfully; callers
// render an unavailable state instead of guessing a number.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ExchangeRate is the cached USD to UYU quote used for display pricing.
type ExchangeRate struct {
	USDToUYU  float64   `json:"usd_to_uyu"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ExchangeService fetches the rate on a fixed interval and caches the last
// success forever: stale is better than absent for display-only data.
// Concurrent refreshes race benignly; last writer wins under the mutex.
type ExchangeService struct {
	config *config.ExchangeConfig
	client *http.Client

	mtx    sync.RWMutex
	cached *ExchangeRate
}

func NewExchangeService(cfg *config.ExchangeConfig) *ExchangeService {
	return &ExchangeService{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetRate returns the cached rate, fetching first if the cache is empty.
func (s *ExchangeService) GetRate(ctx context.Context) (*ExchangeRate, error) {
	s.mtx.RLock()
	cached := s.cached
	s.mtx.RUnlock()

	if cached != nil {
		return cached, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, ErrRateUnavailable
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.cached, nil
}

// Refresh fetches a fresh rate. On failure the previous cache survives.
func (s *ExchangeService) Refresh(ctx context.Context) error {
	rate, err := s.fetch(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Exchange rate fetch failed, keeping cached value")
		return err
	}

	s.mtx.Lock()
	s.cached = rate
	s.mtx.Unlock()

	logrus.WithFields(logrus.Fields{
		"usd_to_uyu": rate.USDToUYU,
		"source":     rate.Source,
	}).Info("Exchange rate refreshed")
	return nil
}

// StartRefreshLoop refreshes immediately and then on the configured
// interval until the context is cancelled.
func (s *ExchangeService) StartRefreshLoop(ctx context.Context) {
	interval := time.Duration(s.config.RefreshInterval) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		s.Refresh(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Refresh(ctx)
			}
		}
	}()
}

// rateResponse tolerates both the nested {"rates":{"UYU":x}} shape and a
// flat {"usd_to_uyu":x} / {"uyu":x} one, so the provider can be swapped by
// configuration alone.
type rateResponse struct {
	Rates    map[string]float64 `json:"rates"`
	USDToUYU float64            `json:"usd_to_uyu"`
	UYU      float64            `json:"uyu"`
}

func (s *ExchangeService) fetch(ctx context.Context) (*ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIURL, nil)
	if err != nil {
		return nil, err
	}
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rate := body.USDToUYU
	if rate == 0 {
		rate = body.UYU
	}
	if rate == 0 {
		rate = body.Rates["UYU"]
	}
	if rate <= 0 {
		return nil, errors.New("rate response carried no UYU quote")
	}

	return &ExchangeRate{
		USDToUYU:  rate,
		Source:    s.config.APIURL,
		FetchedAt: time.Now(),
	}, nil
}
