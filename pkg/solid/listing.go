package solid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/tensor-horizon/evidence-exchange/pkg/app/errors"
)

// modifiedLayout is the timestamp format the platform emits on dc:modified.
const modifiedLayout = "2006-01-02T15:04:05.000Z"

// Listing is the JSON-LD container listing returned by the resource API.
type Listing struct {
	Graph []GraphEntry `json:"@graph"`
}

// GraphEntry is one resource in a container listing.
type GraphEntry struct {
	ID       string        `json:"@id"`
	Modified *ModifiedTime `json:"dc:modified"`
}

// ModifiedTime wraps the typed JSON-LD timestamp literal.
type ModifiedTime struct {
	Value string `json:"@value"`
}

// ListContainer fetches the JSON-LD listing of a container path.
func (c *Client) ListContainer(ctx context.Context, baseURL, containerPath, token string) (*Listing, error) {
	endpoint := baseURL + "/api/resources/" + containerPath + "?toJSONld=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", token)

	resp, err := c.do(req)
	if err != nil {
		return nil, apperrors.UpstreamError(err, "pod storage unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.UpstreamError(
			fmt.Errorf("listing returned status %d", resp.StatusCode),
			"container listing unavailable")
	}

	var listing Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, apperrors.UpstreamError(err, "container listing unreadable")
	}
	return &listing, nil
}

// LatestByModified selects, among entries whose id ends in the ciphertext
// suffix, the one with the greatest parsed dc:modified timestamp. Entries
// with missing or unparsable timestamps are ignored. Strictly-after
// comparison: on equal timestamps the first qualifying entry wins.
func LatestByModified(listing *Listing) (string, bool) {
	if listing == nil {
		return "", false
	}

	var latestID string
	var latest time.Time
	found := false

	for _, entry := range listing.Graph {
		if !strings.HasSuffix(entry.ID, CiphertextSuffix) {
			continue
		}
		if entry.Modified == nil {
			continue
		}
		ts, err := time.Parse(modifiedLayout, entry.Modified.Value)
		if err != nil {
			continue
		}
		if !found || ts.After(latest) {
			latestID = entry.ID
			latest = ts
			found = true
		}
	}
	return latestID, found
}
