package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/questforge/questforge/internal/storage"
	"github.com/questforge/questforge/pkg/editor"
	"github.com/questforge/questforge/pkg/game"
)

func nodesPath(gameID uuid.UUID, nodeID string) string {
	p := "/v1/games/" + gameID.String() + "/nodes"
	if nodeID != "" {
		p += "/" + nodeID
	}
	return p
}

func TestCreateNode(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodPost, nodesPath(g.ID, ""), editor.CreateNodeRequest{
		ID:       "choice2",
		ParentID: "room2",
		Name:     "Open the chest",
		Type:     game.TypeChoice,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var id string
	if err := json.NewDecoder(w.Body).Decode(&id); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id != "choice2" {
		t.Errorf("returned id = %q, want choice2", id)
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.FindNode(stored.Root, "choice2") == nil {
		t.Error("created node not persisted")
	}
}

func TestCreateNodeValidation(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodPost, nodesPath(g.ID, ""), editor.CreateNodeRequest{
		ID:       "roomX",
		ParentID: "cond1",
		Name:     "x",
		Type:     game.TypeRoom,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var vr game.ValidationResponse
	if err := json.NewDecoder(w.Body).Decode(&vr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !vr.HasErrors || len(vr.FieldErrors) != 2 {
		t.Fatalf("response = %+v, want name and description errors", vr)
	}
	if vr.FieldErrors[0].Field != "name" || vr.FieldErrors[1].Field != "description" {
		t.Errorf("fields = %s, %s", vr.FieldErrors[0].Field, vr.FieldErrors[1].Field)
	}

	// A validation failure must not touch the stored tree.
	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.FindNode(stored.Root, "roomX") != nil {
		t.Error("rejected node persisted")
	}
}

func TestCreateNodeTreeConflicts(t *testing.T) {
	tests := []struct {
		name       string
		req        editor.CreateNodeRequest
		wantStatus int
	}{
		{
			"duplicate id",
			editor.CreateNodeRequest{ID: "room2", ParentID: "choice1", Name: "Dupe room", Description: "A copy.", Type: game.TypeRoom},
			http.StatusConflict,
		},
		{
			"missing parent",
			editor.CreateNodeRequest{ID: "roomX", ParentID: "ghost", Name: "Lost room", Description: "Nowhere.", Type: game.TypeRoom},
			http.StatusNotFound,
		},
		{
			"second room under choice",
			editor.CreateNodeRequest{ID: "roomX", ParentID: "choice1", Name: "Extra room", Description: "Too many.", Type: game.TypeRoom},
			http.StatusConflict,
		},
		{
			"condition on missing flag",
			editor.CreateNodeRequest{ID: "condX", ParentID: "choice1", Type: game.TypeCondition, Condition: &game.Condition{FlagID: "ghost", FlagState: game.FlagActive}},
			http.StatusConflict,
		},
		{
			"condition on non-flag node",
			editor.CreateNodeRequest{ID: "condX", ParentID: "choice1", Type: game.TypeCondition, Condition: &game.Condition{FlagID: "room2", FlagState: game.FlagActive}},
			http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := storage.NewMockStorage()
			h := NewGamesHandler(testLogger(), mock)
			g := storedGame(t, mock)

			w := doRequest(h, http.MethodPost, nodesPath(g.ID, ""), tt.req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestCreateNodeGameNotFound(t *testing.T) {
	h := NewGamesHandler(testLogger(), storage.NewMockStorage())

	w := doRequest(h, http.MethodPost, nodesPath(uuid.New(), ""), editor.CreateNodeRequest{
		ID:          "room1",
		ParentID:    game.RootParentID,
		Name:        "Cell",
		Description: "A damp cell.",
		Type:        game.TypeRoom,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateNode(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodPut, nodesPath(g.ID, "room2"), editor.UpdateNodeRequest{
		Name:        "Hallway",
		Description: "A bright hallway.",
		Type:        game.TypeRoom,
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
	room := game.FindNode(stored.Root, "room2")
	if room.Name != "Hallway" || room.Description != "A bright hallway." {
		t.Errorf("stored room = %q / %q", room.Name, room.Description)
	}
}

func TestUpdateNodeRejected(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodPut, nodesPath(g.ID, "room2"), editor.UpdateNodeRequest{
		Name:        "x",
		Description: "A bright hallway.",
		Type:        game.TypeRoom,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.FindNode(stored.Root, "room2").Name != "Corridor" {
		t.Error("rejected rename persisted")
	}
}

func TestDeleteNode(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodDelete, nodesPath(g.ID, "room2"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var accepted bool
	if err := json.NewDecoder(w.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !accepted {
		t.Fatal("delete of existing node returned false")
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.FindNode(stored.Root, "room2") != nil {
		t.Error("deleted node still stored")
	}
}

func TestDeleteNodeRefusals(t *testing.T) {
	// Both the root and an unknown node come back as a bare false.
	for _, nodeID := range []string{"room1", "ghost"} {
		t.Run(nodeID, func(t *testing.T) {
			mock := storage.NewMockStorage()
			h := NewGamesHandler(testLogger(), mock)
			g := storedGame(t, mock)

			w := doRequest(h, http.MethodDelete, nodesPath(g.ID, nodeID), nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var accepted bool
			if err := json.NewDecoder(w.Body).Decode(&accepted); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if accepted {
				t.Error("refused delete returned true")
			}
		})
	}
}

func TestDeleteFlagCascadesStored(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	w := doRequest(h, http.MethodDelete, nodesPath(g.ID, "flag1"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	stored, err := mock.LoadGame(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if game.FindNode(stored.Root, "flag1") != nil {
		t.Error("flag still stored")
	}
	if game.FindNode(stored.Root, "cond1") != nil {
		t.Error("dependent condition survived flag delete")
	}
}

func TestNodesMethodNotAllowed(t *testing.T) {
	mock := storage.NewMockStorage()
	h := NewGamesHandler(testLogger(), mock)
	g := storedGame(t, mock)

	// PUT and DELETE need a node id; POST must not carry one.
	w := doRequest(h, http.MethodPut, nodesPath(g.ID, ""), nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("collection PUT status = %d, want 405", w.Code)
	}
	w = doRequest(h, http.MethodPost, nodesPath(g.ID, "room2"), nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("item POST status = %d, want 405", w.Code)
	}
}
