// Package backend implements the diagnosis-server client: batch retrieval,
// exposure configuration, one-time-code claims, and encrypted key reporting.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"shield/internal/exposure/models"
	"shield/internal/exposure/ports"
	"shield/internal/period"
	"shield/pkg/platform/circuit"
	"shield/pkg/platform/sentinel"
)

const maxResponseBytes = 32 << 20

// Client talks to the diagnosis server over HTTPS. A circuit breaker sheds
// calls while the server keeps failing so a backfill burst cannot hammer a
// dead backend.
type Client struct {
	baseURL string
	region  string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithBreaker(breaker *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = breaker }
}

func New(baseURL, region string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		region:  region,
		http:    &http.Client{Timeout: 30 * time.Second},
		breaker: circuit.New("backend"),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RetrieveDiagnosisKeys downloads the key export for one period. A 404 means
// the backend published nothing for it.
func (c *Client) RetrieveDiagnosisKeys(ctx context.Context, p period.Period) (*ports.KeyBatch, error) {
	url := fmt.Sprintf("%s/retrieve/%s/%d", c.baseURL, c.region, int64(p))
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("retrieve period %d: %w: status %d", p, sentinel.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read key export: %w", err)
	}
	return &ports.KeyBatch{Period: p, Files: [][]byte{body}}, nil
}

// GetExposureConfiguration fetches the region's matching parameters.
func (c *Client) GetExposureConfiguration(ctx context.Context) (ports.ExposureConfiguration, error) {
	url := fmt.Sprintf("%s/exposure-configuration/%s.json", c.baseURL, c.region)
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch exposure configuration: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read exposure configuration: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("exposure configuration is not valid JSON")
	}
	return ports.ExposureConfiguration(body), nil
}

type claimRequest struct {
	OneTimeCode     string `json:"oneTimeCode"`
	ClientPublicKey string `json:"clientPublicKey"`
}

type claimResponse struct {
	ServerPublicKey string `json:"serverPublicKey"`
}

// ClaimOneTimeCode exchanges a code for submission credentials. The client
// generates its keypair locally; only the public half leaves the device.
func (c *Client) ClaimOneTimeCode(ctx context.Context, code string) (*models.SubmissionAuthKeys, error) {
	pub, priv, err := generateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate claim keypair: %w", err)
	}

	reqBody, err := json.Marshal(claimRequest{OneTimeCode: code, ClientPublicKey: pub})
	if err != nil {
		return nil, fmt.Errorf("encode claim request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/claim-key", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil, fmt.Errorf("claim one-time code: %w: status %d", ports.ErrClaimRejected, resp.StatusCode)
	default:
		return nil, fmt.Errorf("claim one-time code: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var claimed claimResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&claimed); err != nil {
		return nil, fmt.Errorf("decode claim response: %w", err)
	}
	if claimed.ServerPublicKey == "" {
		return nil, fmt.Errorf("claim response missing server public key")
	}

	return &models.SubmissionAuthKeys{
		ServerPublicKey:  claimed.ServerPublicKey,
		ClientPrivateKey: priv,
		ClientPublicKey:  pub,
	}, nil
}

type reportRequest struct {
	ServerPublicKey string `json:"serverPublicKey"`
	ClientPublicKey string `json:"clientPublicKey"`
	Nonce           string `json:"nonce"`
	Payload         string `json:"payload"`
}

// ReportDiagnosisKeys seals the key history to the server's public key and
// uploads it.
func (c *Client) ReportDiagnosisKeys(ctx context.Context, auth models.SubmissionAuthKeys, keys []ports.TemporaryExposureKey) error {
	plaintext, err := json.Marshal(struct {
		Keys []ports.TemporaryExposureKey `json:"temporaryExposureKeys"`
	}{Keys: keys})
	if err != nil {
		return fmt.Errorf("encode key history: %w", err)
	}

	nonce, sealed, err := sealPayload(plaintext, auth)
	if err != nil {
		return fmt.Errorf("seal key history: %w", err)
	}

	reqBody, err := json.Marshal(reportRequest{
		ServerPublicKey: auth.ServerPublicKey,
		ClientPublicKey: auth.ClientPublicKey,
		Nonce:           nonce,
		Payload:         sealed,
	})
	if err != nil {
		return fmt.Errorf("encode report request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/report", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report diagnosis keys: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// do issues one request through the breaker. Network failures and 5xx
// responses count against the circuit; everything else counts as success.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	if c.breaker.IsOpen() {
		return nil, fmt.Errorf("backend %w: circuit open", sentinel.ErrUnavailable)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx, url)
		return nil, fmt.Errorf("backend %w: %v", sentinel.ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		c.recordFailure(ctx, url)
	} else if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "backend circuit closed")
	}
	return resp, nil
}

func (c *Client) recordFailure(ctx context.Context, url string) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "backend circuit opened", "url", url)
	}
}
