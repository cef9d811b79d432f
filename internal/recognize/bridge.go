package recognize

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Bridge posts the clip to a local or remote HTTP service that answers with
// a Shazam-format response.
type Bridge struct {
	endpoint string
	language string
	country  string
	client   *http.Client
}

func NewBridge(endpoint, language, country string, client *http.Client) *Bridge {
	if client == nil {
		client = http.DefaultClient
	}
	return &Bridge{endpoint: endpoint, language: language, country: country, client: client}
}

func (b *Bridge) Name() string { return "http" }

func (b *Bridge) Requires() []string { return nil }

func (b *Bridge) Recognize(ctx context.Context, wav []byte) (*Result, error) {
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge url %q: %w", b.endpoint, err)
	}
	q := u.Query()
	if b.language != "" {
		q.Set("language", b.language)
	}
	if b.country != "" {
		q.Set("country", b.country)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(wav))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "audio/wav")
	req.Header.Set("Accept", "application/json")

	slog.Debug("Posting clip to recognition bridge", "url", u.String(), "bytes", len(wav))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call recognition service: %w", err)
	}

	body, err := readResponse(resp, "bridge")
	if err != nil {
		return nil, err
	}
	return ParseShazam(body)
}
