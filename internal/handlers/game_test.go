package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storedGame saves a small playable game and returns it.
func storedGame(t *testing.T, mock *storage.MockStorage) *game.Game {
	t.Helper()

	g := game.NewGame("Dungeon Escape", "A short escape game.")
	steps := []struct {
		id, parentID, name, desc string
		nodeType                 game.NodeType
		cond                     *game.Condition
	}{
		{"room1", game.RootParentID, "Cell", "A damp stone cell.", game.TypeRoom, nil},
		{"choice1", "room1", "Try the door", "", game.TypeChoice, nil},
		{"flag1", "room1", "Take the key", "", game.TypeFlag, nil},
		{"room2", "choice1", "Corridor", "A dark corridor.", game.TypeRoom, nil},
		{"cond1", "choice1", "", "", game.TypeCondition, &game.Condition{FlagID: "flag1", FlagState: game.FlagActive}},
	}
	for _, s := range steps {
		if _, err := g.AddNode(s.id, s.parentID, s.name, s.desc, s.nodeType, s.cond); err != nil {
			t.Fatalf("AddNode(%s): %v", s.id, err)
		}
	}
	if err := mock.SaveGame(context.Background(), g); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	return g
}

func doRequest(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateGame(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)

	w := doRequest(h, http.MethodPost, "/v1/games", GameRequest{
		Name:        "Dungeon Escape",
		Description: "A short escape game.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var id string
	if err := json.NewDecoder(w.Body).Decode(&id); err != nil {
		t.Fatalf("decode id: %v", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("returned id %q not a uuid: %v", id, err)
	}

	g, err := mock.LoadGame(context.Background(), parsed)
	if err != nil || g == nil {
		t.Fatalf("stored game = %v, err = %v", g, err)
	}
	if g.Name != "Dungeon Escape" {
		t.Errorf("stored name = %q", g.Name)
	}
}

func TestCreateGameValidation(t *testing.T) {
	h := NewGamesHandler(testLogger(), storage.NewMockStorage())

	tests := []struct {
		name       string
		req        GameRequest
		wantFields []string
	}{
		{"name too short", GameRequest{Name: "x", Description: "A short escape game."}, []string{"name"}},
		{"name too long", GameRequest{Name: strings.Repeat("a", 26), Description: "Fine."}, []string{"name"}},
		{"description too long", GameRequest{Name: "Dungeon", Description: strings.Repeat("a", 256)}, []string{"description"}},
		{"both missing", GameRequest{}, []string{"name", "description"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(h, http.MethodPost, "/v1/games", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var vr game.ValidationResponse
			if err := json.NewDecoder(w.Body).Decode(&vr); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !vr.HasErrors || len(vr.FieldErrors) != len(tt.wantFields) {
				t.Fatalf("response = %+v, want fields %v", vr, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if vr.FieldErrors[i].Field != field {
					t.Errorf("field %d = %q, want %q", i, vr.FieldErrors[i].Field, field)
				}
			}
		})
	}
}

func TestListGames(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	storedGame(t, mock)

	w := doRequest(h, http.MethodGet, "/v1/games", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var games []*game.Game
	if err := json.NewDecoder(w.Body).Decode(&games); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != 1 || games[0].Name != "Dungeon Escape" {
		t.Errorf("games = %v", games)
	}
}

func TestReadGame(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodGet, "/v1/games/"+g.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got game.Game
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != g.ID || got.Root == nil || got.Root.ID != "room1" {
		t.Errorf("got game = %+v", got)
	}

	w = doRequest(h, http.MethodGet, "/v1/games/"+uuid.NewString(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing game status = %d, want 404", w.Code)
	}

	w = doRequest(h, http.MethodGet, "/v1/games/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestUpdateGame(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodPut, "/v1/games/"+g.ID.String(), GameRequest{
		Name:        "Dungeon Escape II",
		Description: "Now with more dungeon.",
		Published:   true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var vr game.ValidationResponse
	if err := json.NewDecoder(w.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vr.HasErrors {
		t.Errorf("unexpected field errors: %v", vr.FieldErrors)
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if stored.Name != "Dungeon Escape II" || !stored.Published {
		t.Errorf("stored = %+v", stored)
	}
	if stored.Root == nil {
		t.Error("update dropped the tree")
	}
}

func TestDeleteGame(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodDelete, "/v1/games/"+g.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if stored != nil {
		t.Error("game still present after delete")
	}
}

func TestGamesMethodNotAllowed(t *testing.T) {
	h := NewGamesHandler(testLogger(), storage.NewMockStorage())

	w := doRequest(h, http.MethodPatch, "/v1/games", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("collection PATCH status = %d, want 405", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/v1/games/"+uuid.NewString(), nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("item POST status = %d, want 405", w.Code)
	}

	w = doRequest(h, http.MethodGet, "/v1/games/"+uuid.NewString()+"/bogus", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown subresource status = %d, want 404", w.Code)
	}
}
