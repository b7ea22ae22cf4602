package levels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/keyquest/game/engine"
)

// HTTPSource fetches level data from a remote level server exposing
// GET {base}/level/{id}
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource creates a source for the given base URL
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchLevel requests and decodes one level definition
func (s *HTTPSource) FetchLevel(ctx context.Context, id string) (*engine.LevelDefinition, error) {
	endpoint := fmt.Sprintf("%s/level/%s", s.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("level request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("level server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var def engine.LevelDefinition
	if err := json.NewDecoder(resp.Body).Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to decode level %s: %w", id, err)
	}
	if def.ID == "" {
		def.ID = id
	}

	log.WithFields(log.Fields{"level": id, "url": endpoint}).Debug("Fetched level")
	return &def, nil
}
