package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"syncwatch/internal/logger"
	"syncwatch/internal/model"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultRetryDelay            = time.Second
	DefaultMaxConnectionFailures = 20
	DefaultStaleWindow           = 60 * time.Second
)

type Config struct {
	BaseURL               string
	APIKey                string
	EventTypes            []string
	MaxRetries            int
	RetryDelay            time.Duration
	MaxConnectionFailures int
	StaleWindow           time.Duration
	RequestTimeout        time.Duration

	// A zero StaleWindow or MaxConnectionFailures takes the package default and
	// MaxRetries below 1 allows a single attempt; config validation rejects
	// such values before they get here.

	// Transport, Now and Sleep default to the real network and clock.
	Transport http.RoundTripper
	Now       func() time.Time
	Sleep     func(ctx context.Context, d time.Duration) error
}

// Poller fetches events from the remote events endpoint. It owns the
// watermark: the highest event id the server has shown it so far.
type Poller struct {
	cfg    Config
	base   *url.URL
	client *http.Client
	retry  *retryState

	mu           sync.RWMutex
	watermark    int64
	hasWatermark bool
}

func New(cfg Config) (*Poller, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxConnectionFailures <= 0 {
		cfg.MaxConnectionFailures = DefaultMaxConnectionFailures
	}
	if cfg.StaleWindow <= 0 {
		cfg.StaleWindow = DefaultStaleWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if cfg.APIKey != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey}),
			Base:   transport,
		}
	}

	return &Poller{
		cfg:  cfg,
		base: base,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		retry: newRetryState(cfg.MaxRetries, cfg.MaxConnectionFailures),
	}, nil
}

// ParseBaseURL accepts absolute http and https URLs only.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", raw)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}

	return u, nil
}

func (p *Poller) Watermark() (int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.watermark, p.hasWatermark
}

// Poll returns the events newer than the watermark. Transient failures are
// retried internally; the returned error is fatal when IsFatal reports so.
func (p *Poller) Poll(ctx context.Context) ([]model.Event, error) {
	since, hasWatermark := p.Watermark()

	reqURL := p.requestURL(since, hasWatermark)

	for {
		body, err := p.fetch(ctx, reqURL)
		if err == nil {
			p.retry.reset()
			return p.accept(body, !hasWatermark)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		class := classify(err)
		action, fatal := p.retry.next(class, err)

		switch action {
		case giveUp:
			p.retry.reset()
			return nil, fatal

		case retryNow:
			logger.Log.Debug("connection dropped, retrying",
				zap.Int("failures", p.retry.connFailures),
				zap.Error(err))

		case retryAfterDelay:
			logger.Log.Debug("event poll failed, retrying",
				zap.Int("attempt", p.retry.retries),
				zap.Int("max_retries", p.retry.maxRetries),
				zap.Duration("delay", p.cfg.RetryDelay),
				zap.Error(err))

			if err := p.cfg.Sleep(ctx, p.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
}

func (p *Poller) requestURL(since int64, hasWatermark bool) string {
	u := p.base.JoinPath("rest", "events")

	q := u.Query()
	if len(p.cfg.EventTypes) > 0 {
		q.Set("events", strings.Join(p.cfg.EventTypes, ","))
	}
	if hasWatermark {
		q.Set("since", strconv.FormatInt(since, 10))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (p *Poller) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read events response: %w", err)
	}

	return body, nil
}

// accept decodes a response body. Every decoded event advances the watermark,
// including events the first-poll staleness filter then drops.
func (p *Poller) accept(body []byte, firstPoll bool) ([]model.Event, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}

	cutoff := p.cfg.Now().Add(-p.cfg.StaleWindow)
	events := make([]model.Event, 0, len(items))
	stale := 0

	for _, item := range items {
		event, err := model.ParseEvent(item)
		if err != nil {
			logger.Log.Warn("skipping malformed event",
				zap.ByteString("item", item),
				zap.Error(err))
			continue
		}

		p.advance(event.ID)

		if firstPoll && isStale(event, cutoff) {
			stale++
			continue
		}

		events = append(events, event)
	}

	if stale > 0 {
		logger.Log.Info("ignored events older than the startup window",
			zap.Int("count", stale),
			zap.Duration("window", p.cfg.StaleWindow))
	}

	return events, nil
}

func (p *Poller) advance(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.hasWatermark || id > p.watermark {
		p.watermark = id
		p.hasWatermark = true
	}
}

func isStale(event model.Event, cutoff time.Time) bool {
	t, err := event.Time()
	if err != nil {
		logger.Log.Debug("event has unparseable time, treating as stale",
			zap.Int64("id", event.ID),
			zap.String("time", event.Timestamp))
		return true
	}

	return t.Before(cutoff)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
