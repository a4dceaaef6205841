package backend

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

	"github.com/Lumos-Labs-HQ/farmseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/farmseed/internal/principal"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 1 << 20

type Options struct {
	Endpoint       string
	CanisterID     string
	LedgerCanister string
	APIKey         string
	Timeout        time.Duration
	RetryAttempts  int           // extra attempts after the first, transport errors only
	RetryBackoff   time.Duration // base delay; attempt n waits n*n*RetryBackoff
	CallsPerSecond float64       // 0 disables pacing
	HTTPClient     *http.Client
	Logger         zerolog.Logger
	Metrics        *metrics.Recorder
}

// HTTPClient reaches the canisters through an HTTP gateway:
//
//	POST {endpoint}/api/canister/{canisterId}/call/{method}
//	{"args": [...positional arguments...]}
//
// and expects a result envelope back.
type HTTPClient struct {
	endpoint string
	canister string
	ledger   string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	retries  int
	backoff  time.Duration
	log      zerolog.Logger
	metrics  *metrics.Recorder
	newKey   func() string
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", opts.Endpoint)
	}
	if _, err := principal.Parse(opts.CanisterID); err != nil {
		return nil, fmt.Errorf("backend canister: %w", err)
	}
	if _, err := principal.Parse(opts.LedgerCanister); err != nil {
		return nil, fmt.Errorf("ledger canister: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	c := &HTTPClient{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		canister: opts.CanisterID,
		ledger:   opts.LedgerCanister,
		apiKey:   opts.APIKey,
		http:     httpClient,
		retries:  opts.RetryAttempts,
		backoff:  backoff,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		newKey:   uuid.NewString,
	}
	if opts.CallsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.CallsPerSecond), 1)
	}
	return c, nil
}

func (c *HTTPClient) CreateFarm(ctx context.Context, spec types.FarmSpec) (*types.Farm, error) {
	var farm types.Farm
	if err := c.call(ctx, c.canister, MethodCreateFarm, createFarmArgs(spec), &farm); err != nil {
		return nil, err
	}
	return &farm, nil
}

func (c *HTTPClient) InvestInFarm(ctx context.Context, farmID types.FarmID, amount types.E8s) (*types.InvestmentReceipt, error) {
	var receipt types.InvestmentReceipt
	if err := c.call(ctx, c.canister, MethodInvestInFarm, []any{farmID, amount}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *HTTPClient) CreateMarketOrder(ctx context.Context, order types.MarketOrder) (types.OrderID, error) {
	var id types.OrderID
	args := []any{order.FarmID, order.Side, order.Quantity, order.LimitPrice}
	if err := c.call(ctx, c.canister, MethodCreateMarketOrder, args, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *HTTPClient) CreateProfile(ctx context.Context, investor types.InvestorSpec) (*types.Profile, error) {
	var profile types.Profile
	if err := c.call(ctx, c.canister, MethodCreateProfile, createProfileArgs(investor), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) Transfer(ctx context.Context, args types.TransferArgs) (types.BlockIndex, error) {
	var block types.BlockIndex
	if err := c.call(ctx, c.ledger, MethodTransfer, []any{args}, &block); err != nil {
		return 0, err
	}
	return block, nil
}

func (c *HTTPClient) call(ctx context.Context, canister, method string, args []any, out any) error {
	body, err := json.Marshal(map[string]any{"args": args})
	if err != nil {
		return fmt.Errorf("%s: failed to encode arguments: %w", method, err)
	}

	// One key per logical call so the gateway can drop duplicate retries.
	key := c.newKey()
	log := c.log.With().Str("method", method).Str("canister", canister).Str("idempotency_key", key).Logger()

	var attemptErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt*attempt) * c.backoff
			log.Warn().Err(attemptErr).Int("attempt", attempt+1).Dur("backoff", delay).Msg("retrying backend call")
			select {
			case <-ctx.Done():
				return &TransportError{Method: method, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		start := time.Now()
		attemptErr = c.do(ctx, canister, method, key, body, out)
		elapsed := time.Since(start)
		c.metrics.ObserveCall(method, Outcome(attemptErr), elapsed)

		if attemptErr == nil {
			log.Debug().Dur("elapsed", elapsed).Msg("backend call ok")
			return nil
		}

		var transport *TransportError
		if !errors.As(attemptErr, &transport) || !transport.Retryable() || ctx.Err() != nil {
			break
		}
	}

	log.Debug().Err(attemptErr).Str("outcome", Outcome(attemptErr)).Msg("backend call failed")
	return attemptErr
}

func (c *HTTPClient) do(ctx context.Context, canister, method, key string, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Err: err}
		}
	}

	endpoint := fmt.Sprintf("%s/api/canister/%s/call/%s", c.endpoint, url.PathEscape(canister), url.PathEscape(method))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", key)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Method: method, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(data))),
		}
	}

	return decodeResult(method, data, out)
}
