package recognize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
)

// AudD calls the AudD recognition API (https://docs.audd.io/).
type AudD struct {
	endpoint string
	token    string
	client   *http.Client
}

type auddResponse struct {
	Status string `json:"status"`
	Error  *struct {
		Code    int    `json:"error_code"`
		Message string `json:"error_message"`
	} `json:"error"`
	Result *struct {
		Title      string `json:"title"`
		Artist     string `json:"artist"`
		AppleMusic *struct {
			Artwork *struct {
				URL string `json:"url"`
			} `json:"artwork"`
		} `json:"apple_music"`
		Spotify *struct {
			Album *struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"spotify"`
	} `json:"result"`
}

func NewAudD(endpoint, token string, client *http.Client) *AudD {
	if endpoint == "" {
		endpoint = "https://api.audd.io/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AudD{endpoint: endpoint, token: token, client: client}
}

func (a *AudD) Name() string { return "audd" }

func (a *AudD) Requires() []string { return nil }

func (a *AudD) Recognize(ctx context.Context, wav []byte) (*Result, error) {
	if a.token == "" {
		return nil, errors.New("audd: api token is required (recognizer.audd.api_token or SHAQ_AUDD_API_TOKEN)")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "shaq.wav")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(wav); err != nil {
		return nil, err
	}
	for _, field := range [][2]string{{"api_token", a.token}, {"return", "apple_music,spotify"}} {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	slog.Debug("Posting clip to AudD", "endpoint", a.endpoint, "bytes", len(wav))

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call AudD: %w", err)
	}

	raw, err := readResponse(resp, "audd")
	if err != nil {
		return nil, err
	}
	return parseAudD(raw)
}

func parseAudD(raw []byte) (*Result, error) {
	var resp auddResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("audd: failed to decode JSON: %w", err)
	}

	if resp.Status != "success" {
		if resp.Error != nil {
			return nil, fmt.Errorf("audd: error %d: %s", resp.Error.Code, resp.Error.Message)
		}
		return nil, fmt.Errorf("audd: unexpected status %q", resp.Status)
	}

	result := &Result{Raw: json.RawMessage(raw)}
	if resp.Result == nil {
		return result, nil
	}

	result.Matched = true
	result.Title = resp.Result.Title
	result.Subtitle = resp.Result.Artist

	if am := resp.Result.AppleMusic; am != nil && am.Artwork != nil && am.Artwork.URL != "" {
		result.CoverArt = strings.NewReplacer("{w}", "1000", "{h}", "1000").Replace(am.Artwork.URL)
	} else if sp := resp.Result.Spotify; sp != nil && sp.Album != nil && len(sp.Album.Images) > 0 {
		result.CoverArt = sp.Album.Images[0].URL
	}
	return result, nil
}
