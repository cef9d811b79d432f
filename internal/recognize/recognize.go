// Package recognize submits audio clips to third-party song-recognition
// services and normalizes their answers.
package recognize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/audiolibrelab/shaq/internal/config"
)

// Result is the part of a service response shaq cares about.
type Result struct {
	Title    string
	Subtitle string // the artist line
	Matched  bool
	CoverArt string

	// Raw is the service response body, untouched.
	Raw json.RawMessage
}

// Recognizer identifies the song in a WAV clip.
type Recognizer interface {
	Name() string
	// Requires lists the external binaries the recognizer runs.
	Requires() []string
	Recognize(ctx context.Context, wav []byte) (*Result, error)
}

var ErrUnknownRecognizer = errors.New("unknown recognizer")

// New builds the recognizer named in cfg.
func New(cfg config.RecognizerConfig, logWriter io.Writer) (Recognizer, error) {
	if logWriter == nil {
		logWriter = io.Discard
	}

	switch cfg.Name {
	case "songrec":
		if cfg.Proxy != "" {
			if _, err := parseProxy(cfg.Proxy); err != nil {
				return nil, err
			}
		}
		return NewSongrec(cfg.Songrec.Binary, cfg.Proxy, logWriter), nil
	case "http":
		client, err := newHTTPClient(cfg.Proxy, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return NewBridge(cfg.HTTP.URL, cfg.Language, cfg.Country, client), nil
	case "audd":
		client, err := newHTTPClient(cfg.Proxy, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return NewAudD(cfg.AudD.Endpoint, cfg.AudD.APIToken, client), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRecognizer, cfg.Name)
}

// HighResCover rewrites a Shazam cover URL to request the 1000px PNG
// rendition. Other URLs are returned unchanged.
func HighResCover(cover string) string {
	const lowRes = "/400x400cc.jpg"
	if strings.HasSuffix(cover, lowRes) {
		return strings.TrimSuffix(cover, lowRes) + "/1000x1000cc.png"
	}
	return cover
}

func parseProxy(proxy string) (*url.URL, error) {
	u, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: expected scheme://host[:port]", proxy)
	}
	return u, nil
}

func newHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		u, err := parseProxy(proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// readResponse returns the body of a 200 response, or an error carrying a
// short excerpt of anything else.
func readResponse(resp *http.Response, service string) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", service, err)
	}
	if resp.StatusCode != http.StatusOK {
		excerpt := strings.TrimSpace(string(body))
		if len(excerpt) > 200 {
			excerpt = excerpt[:200] + "..."
		}
		return nil, fmt.Errorf("%s: service returned status %d: %s", service, resp.StatusCode, excerpt)
	}
	return body, nil
}
