package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCell_KnownTiles(t *testing.T) {
	tests := []struct {
		id       string
		expected Cell
	}{
		{"floor", FloorDefault},
		{"exit", FloorExit},
		{"key1", Key1},
		{"key5", Key5},
		{"wall", Wall},
		{"door1", Door1},
		{"door5", Door5},
		{"npc", NPC},
		{"player", Player{}},
		{"player2", Player{Skin: "player2"}},
		{"playerDefault", Player{Skin: "playerDefault"}},
	}

	for _, test := range tests {
		t.Run(test.id, func(t *testing.T) {
			cell, err := ParseCell(test.id)
			if err != nil {
				t.Fatalf("ParseCell(%q) failed: %v", test.id, err)
			}
			if cell != test.expected {
				t.Errorf("ParseCell(%q): expected %v, got %v", test.id, test.expected, cell)
			}
			if cell.String() != test.id {
				t.Errorf("String(): expected %q, got %q", test.id, cell.String())
			}
		})
	}
}

func TestParseCell_Unknown(t *testing.T) {
	for _, id := range []string{"", "lava", "key0", "key6", "door9", "doors", "Floor"} {
		if _, err := ParseCell(id); !errors.Is(err, ErrUnknownTile) {
			t.Errorf("ParseCell(%q): expected ErrUnknownTile, got %v", id, err)
		}
	}
}

func TestCategories(t *testing.T) {
	tests := []struct {
		cell     Cell
		expected Category
	}{
		{FloorDefault, CategoryFloor},
		{FloorExit, CategoryFloor},
		{Key3, CategoryItem},
		{Wall, CategoryObstacle},
		{Door2, CategoryObstacle},
		{NPC, CategoryObstacle},
		{Player{Skin: "player1"}, CategoryPlayer},
	}

	for _, test := range tests {
		if got := test.cell.Category(); got != test.expected {
			t.Errorf("%v: expected category %v, got %v", test.cell, test.expected, got)
		}
	}
}

func TestDoorKeyPairing(t *testing.T) {
	doors := []Obstacle{Door1, Door2, Door3, Door4, Door5}
	keys := []Item{Key1, Key2, Key3, Key4, Key5}

	for i, door := range doors {
		key, ok := door.Key()
		if !ok {
			t.Fatalf("%v should have a key", door)
		}
		if key != keys[i] {
			t.Errorf("%v: expected %v, got %v", door, keys[i], key)
		}
		if keys[i].Door() != door {
			t.Errorf("%v.Door(): expected %v, got %v", keys[i], door, keys[i].Door())
		}
	}

	for _, o := range []Obstacle{Wall, NPC} {
		if _, ok := o.Key(); ok {
			t.Errorf("%v should not have a key", o)
		}
	}
}

func TestInventoryJSON(t *testing.T) {
	inv := Inventory{Key1, Key3}

	data, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["key1","key3"]` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var decoded Inventory
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != Key1 || decoded[1] != Key3 {
		t.Errorf("Unexpected inventory: %v", decoded)
	}
}

func TestInventoryConsume(t *testing.T) {
	inv := Inventory{Key2, Key1, Key2}

	out, ok := inv.Consume(Key2)
	if !ok {
		t.Fatal("Expected Key2 to be consumed")
	}
	if len(out) != 2 || out[0] != Key1 || out[1] != Key2 {
		t.Errorf("Expected first Key2 removed, got %v", out)
	}
	if len(inv) != 3 || inv[0] != Key2 {
		t.Errorf("Original inventory was modified: %v", inv)
	}

	if _, ok := out.Consume(Key4); ok {
		t.Error("Key4 should not be consumable")
	}
}

func TestIsSkin(t *testing.T) {
	if !IsSkin(DefaultSkin) {
		t.Error("Default skin should be selectable")
	}
	if IsSkin(PlayerPlaceholder) {
		t.Error("Placeholder should not be selectable")
	}
	if IsSkin("wall") {
		t.Error("wall is not a skin")
	}
}
