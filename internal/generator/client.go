package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/zbirka/internal/model"
)

// DefaultTimeout bounds a single generate call.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps the response body; images arrive inline as base64.
const maxResponseSize = 32 << 20

// Client calls the remote Pokemon generator.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRand sets the source used to synthesize gameplay stats.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) { c.rnd = r }
}

// New creates a generator client for the service at baseURL, authenticating
// with token as a bearer credential.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: DefaultTimeout,
		http:    &http.Client{},
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateResponse is the success body of GET /v1/generate.
type generateResponse struct {
	ImageBase64 string `json:"imageBase64"`
	Metadata    *struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Rarity string `json:"rarity"`
	} `json:"metadata"`
	GeneratedAt string `json:"generatedAt"`
}

// errorResponse is the failure body of GET /v1/generate.
type errorResponse struct {
	Error *struct {
		Code      json.RawMessage `json:"code"`
		Message   string          `json:"message"`
		Timestamp string          `json:"timestamp"`
	} `json:"error"`
}

// Generate asks the generator for a new Pokemon. The returned Pokemon is
// OWNED and carries locally rolled gameplay stats.
func (c *Client) Generate(ctx context.Context) (*model.Pokemon, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/generate", nil)
	if err != nil {
		return nil, fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body)
	}

	return c.decode(body)
}

// classify maps a transport failure to ErrTimeout or ErrNetworkUnavailable.
func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("generate request canceled: %w", err)
	}
	return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
}

// decodeError reads a failure body. Bodies without a message are treated as
// undecodable.
func decodeError(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == nil || strings.TrimSpace(er.Error.Message) == "" {
		return &UnknownError{Status: status}
	}
	return &RemoteError{
		Code:      strings.Trim(string(er.Error.Code), `"`),
		Message:   er.Error.Message,
		Timestamp: er.Error.Timestamp,
	}
}

func (c *Client) decode(body []byte) (*model.Pokemon, error) {
	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if gr.ImageBase64 == "" {
		return nil, fmt.Errorf("%w: missing imageBase64", ErrMalformedResponse)
	}
	if gr.Metadata == nil {
		return nil, fmt.Errorf("%w: missing metadata", ErrMalformedResponse)
	}

	p := &model.Pokemon{
		ID:          gr.Metadata.ID,
		Name:        gr.Metadata.Name,
		Rarity:      model.Rarity(gr.Metadata.Rarity),
		ImageBase64: gr.ImageBase64,
		Status:      model.StatusOwned,
	}
	if p.ID == "" || p.Name == "" || p.Rarity == "" {
		return nil, fmt.Errorf("%w: metadata requires id, name and rarity", ErrMalformedResponse)
	}
	if !p.Rarity.Valid() {
		return nil, fmt.Errorf("%w: unknown rarity %q", ErrMalformedResponse, gr.Metadata.Rarity)
	}

	// The generator only draws the creature; stats are rolled here.
	c.rollStats(p)

	if gr.GeneratedAt == "" {
		return nil, fmt.Errorf("%w: missing generatedAt", ErrMalformedResponse)
	}
	generatedAt, err := parseTimestamp(gr.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	p.GeneratedAt = generatedAt

	if err := validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) rollStats(p *model.Pokemon) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p.Type = model.ElementTypes[c.rnd.IntN(len(model.ElementTypes))]
	p.Attack = model.MinAttack + c.rnd.IntN(model.MaxAttack-model.MinAttack+1)
	p.AttackName = model.MoveNames[c.rnd.IntN(len(model.MoveNames))]
	p.PV = model.MinPV + c.rnd.IntN(model.MaxPV-model.MinPV+1)
}

// validate checks that every required field of a generated Pokemon is set.
func validate(p *model.Pokemon) error {
	var missing []string
	if p.ID == "" {
		missing = append(missing, "id")
	}
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if !p.Rarity.Valid() {
		missing = append(missing, "rarity")
	}
	if p.Type == "" {
		missing = append(missing, "type")
	}
	if p.Attack < model.MinAttack || p.Attack > model.MaxAttack {
		missing = append(missing, "attack")
	}
	if p.AttackName == "" {
		missing = append(missing, "attackName")
	}
	if p.PV < model.MinPV || p.PV > model.MaxPV {
		missing = append(missing, "pv")
	}
	if p.ImageBase64 == "" {
		missing = append(missing, "imageBase64")
	}
	if p.GeneratedAt.IsZero() {
		missing = append(missing, "generatedAt")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: invalid %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable generatedAt %q", s)
}
