package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/questforge/questforge/pkg/game"
	"github.com/questforge/questforge/pkg/play"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\n")
		os.Exit(1)
	}

	games, err := listGames(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list games: %v\n", err)
		os.Exit(1)
	}
	if len(games) == 0 {
		fmt.Fprintf(os.Stderr, "No playable games found\n")
		os.Exit(1)
	}

	fmt.Println("Available Games:")
	for i, g := range games {
		fmt.Printf("  %d - %s (%s)\n", i+1, g.Name, g.Description)
	}
	fmt.Print("\nSelect a game by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(games) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	// Fetch the full tree; the list endpoint already includes it, but a
	// fresh read picks up edits made since.
	g, err := getGame(client, cfg.APIBaseURL, games[choice-1].ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load game: %v\n", err)
		os.Exit(1)
	}
	if err := game.PrepareTree(g.Root); err != nil {
		fmt.Fprintf(os.Stderr, "Game tree is corrupted: %v\n", err)
		os.Exit(1)
	}

	session, err := play.NewSession(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(g, session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
