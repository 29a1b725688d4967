package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/questforge/questforge/pkg/game"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listGames(client *http.Client, baseURL string) ([]*game.Game, error) {
	resp, err := client.Get(baseURL + "/v1/games")
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

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to list games: %s", errorResp.Error)
	}

	var games []*game.Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to parse games response: %w", err)
	}

	// Playable games only: published, with at least a root room.
	playable := games[:0]
	for _, g := range games {
		if g.Published && g.Root != nil {
			playable = append(playable, g)
		}
	}
	sort.Slice(playable, func(i, j int) bool { return playable[i].Name < playable[j].Name })
	return playable, nil
}

func getGame(client *http.Client, baseURL string, id uuid.UUID) (*game.Game, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/games/%s", baseURL, id))
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

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get game: %s", errorResp.Error)
	}

	var g game.Game
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, fmt.Errorf("failed to parse game response: %w", err)
	}
	return &g, nil
}
