package recognize

import (
	"encoding/json"
	"fmt"
)

// shazamResponse is the subset of the Shazam discovery response shaq reads.
type shazamResponse struct {
	Matches []json.RawMessage `json:"matches"`
	Track   *struct {
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Images   *struct {
			CoverArt string `json:"coverart"`
		} `json:"images"`
	} `json:"track"`
}

// ParseShazam normalizes a Shazam-format response.
func ParseShazam(raw []byte) (*Result, error) {
	var resp shazamResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse Shazam response: %w", err)
	}

	result := &Result{
		Matched: len(resp.Matches) > 0 && resp.Track != nil,
		Raw:     json.RawMessage(raw),
	}
	if resp.Track != nil {
		result.Title = resp.Track.Title
		result.Subtitle = resp.Track.Subtitle
		if resp.Track.Images != nil {
			result.CoverArt = resp.Track.Images.CoverArt
		}
	}
	return result, nil
}
