package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

// HTTPAuthority talks to the questforge API as the remote authority. A
// 200-family response is acceptance; a 400 with a validation body is a
// rejection whose field errors are forwarded to the session untouched.
type HTTPAuthority struct {
	client  *http.Client
	baseURL string
}

// Ensure HTTPAuthority implements Authority
var _ Authority = (*HTTPAuthority)(nil)

func NewHTTPAuthority(client *http.Client, baseURL string) *HTTPAuthority {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAuthority{client: client, baseURL: baseURL}
}

func (a *HTTPAuthority) CreateNode(ctx context.Context, gameID uuid.UUID, req CreateNodeRequest) ([]game.FieldError, error) {
	url := fmt.Sprintf("%s/v1/games/%s/nodes", a.baseURL, gameID)
	return a.sendNodeRequest(ctx, http.MethodPost, url, req)
}

func (a *HTTPAuthority) UpdateNode(ctx context.Context, gameID uuid.UUID, nodeID string, req UpdateNodeRequest) ([]game.FieldError, error) {
	url := fmt.Sprintf("%s/v1/games/%s/nodes/%s", a.baseURL, gameID, nodeID)
	return a.sendNodeRequest(ctx, http.MethodPut, url, req)
}

func (a *HTTPAuthority) DeleteNode(ctx context.Context, gameID uuid.UUID, nodeID string) (bool, error) {
	url := fmt.Sprintf("%s/v1/games/%s/nodes/%s", a.baseURL, gameID, nodeID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var accepted bool
	if err := json.Unmarshal(body, &accepted); err != nil {
		return false, fmt.Errorf("failed to parse delete response: %w", err)
	}
	return accepted, nil
}

func (a *HTTPAuthority) sendNodeRequest(ctx context.Context, method, url string, payload any) ([]game.FieldError, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil, nil
	case http.StatusBadRequest:
		var vr game.ValidationResponse
		if err := json.Unmarshal(body, &vr); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		if !vr.HasErrors {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return vr.FieldErrors, nil
	default:
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
}
