// Package synth talks to the remote image-synthesis service that paints
// cover backgrounds.
//
// synth.go — Synthesizer interface and the OpenAI-compatible images client.
package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

// Request describes one image to synthesize.
type Request struct {
	Prompt  string
	Width   int
	Height  int
	Quality string // "hd" or "standard"
}

// Size formats the requested size as "WxH".
func (r Request) Size() string { return paint.FormatSize(r.Width, r.Height) }

// Synthesizer produces an image from a prompt.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (image.Image, error)
}

// Config configures a Client.
type Config struct {
	BaseURL string // e.g. https://ark.cn-beijing.volces.com/api/v3
	APIKey  string
	Model   string
	Timeout time.Duration // whole-request bound including download, defaults to 60s
}

// Client calls POST {BaseURL}/images/generations. Each call is a single
// attempt; failures are returned for the caller to recover from.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client. The API key is only checked when a request is made.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.config.Model }

// Synthesize implements Synthesizer.
func (c *Client) Synthesize(ctx context.Context, req Request) (image.Image, error) {
	if c.config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image API key is not configured")
	}
	if req.Prompt == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty prompt")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	payload, err := json.Marshal(generationRequest{
		Model:   c.config.Model,
		Prompt:  req.Prompt,
		Size:    req.Size(),
		Quality: req.Quality,
		N:       1,
	})
	if err != nil {
		return nil, fmt.Errorf("synth marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("synth request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result generationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "malformed synthesis response")
	}
	if result.Error != nil && result.Error.Message != "" {
		return nil, errors.New(errors.ErrCodeNetwork, "synthesis failed: %s", result.Error.Message)
	}
	if len(result.Data) == 0 {
		return nil, errors.New(errors.ErrCodeNetwork, "synthesis returned no images")
	}

	d := result.Data[0]
	var raw []byte
	switch {
	case d.B64JSON != "":
		raw, err = base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "malformed b64_json")
		}
	case d.URL != "":
		raw, err = c.download(ctx, d.URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New(errors.ErrCodeNetwork, "synthesis response has neither url nor b64_json")
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "undecodable synthesized image")
	}
	return img, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("synth download request: %w", err)
	}
	return c.do(req)
}

// do executes req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err, req.URL.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrCodeNetwork, "%s %s: status %d: %s",
			req.Method, req.URL.Path, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func classify(err error, path string) error {
	var ne net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &ne) && ne.Timeout()) {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s timed out", path)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "%s failed", path)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ── wire types ──

type generationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
