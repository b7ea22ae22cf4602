package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTile = errors.New("unknown tile")

// Category is the variant tag of a Cell
type Category int

const (
	CategoryFloor Category = iota + 1
	CategoryItem
	CategoryObstacle
	CategoryPlayer
)

func (c Category) String() string {
	switch c {
	case CategoryFloor:
		return "floor"
	case CategoryItem:
		return "item"
	case CategoryObstacle:
		return "obstacle"
	case CategoryPlayer:
		return "player"
	}
	return "unknown"
}

// Cell is the content of one grid position. The set of implementations is
// closed: Floor, Item, Obstacle and Player.
type Cell interface {
	Category() Category
	String() string
	cell()
}

// Floor is a walkable tile
type Floor int

const (
	FloorDefault Floor = iota + 1
	FloorExit
)

// Item is a collectible key
type Item int

const (
	Key1 Item = iota + 1
	Key2
	Key3
	Key4
	Key5
)

// Obstacle is an impassable tile. Doors open for a matching key.
type Obstacle int

const (
	Wall Obstacle = iota + 1
	Door1
	Door2
	Door3
	Door4
	Door5
	NPC
)

// PlayerPlaceholder is the generic player tile used by level definitions
const PlayerPlaceholder = "player"

// DefaultSkin is used when no profile skin is known
const DefaultSkin = "playerDefault"

// Skins lists the selectable player skins
var Skins = []string{DefaultSkin, "player1", "player2", "player3", "player4"}

// IsSkin reports whether s is a selectable skin
func IsSkin(s string) bool {
	for _, skin := range Skins {
		if skin == s {
			return true
		}
	}
	return false
}

// Player marks the player's cell. Under holds the persistent tile the player
// is standing on (a door or the exit), nil for plain floor.
type Player struct {
	Skin  string
	Under Cell
}

func (Floor) Category() Category    { return CategoryFloor }
func (Item) Category() Category     { return CategoryItem }
func (Obstacle) Category() Category { return CategoryObstacle }
func (Player) Category() Category   { return CategoryPlayer }

func (Floor) cell()    {}
func (Item) cell()     {}
func (Obstacle) cell() {}
func (Player) cell()   {}

func (f Floor) String() string {
	switch f {
	case FloorDefault:
		return "floor"
	case FloorExit:
		return "exit"
	}
	return fmt.Sprintf("floor(%d)", int(f))
}

func (i Item) String() string {
	if i >= Key1 && i <= Key5 {
		return fmt.Sprintf("key%d", int(i))
	}
	return fmt.Sprintf("item(%d)", int(i))
}

func (o Obstacle) String() string {
	switch {
	case o == Wall:
		return "wall"
	case o == NPC:
		return "npc"
	case o.IsDoor():
		return fmt.Sprintf("door%d", int(o-Door1)+1)
	}
	return fmt.Sprintf("obstacle(%d)", int(o))
}

func (p Player) String() string {
	if p.Skin == "" {
		return PlayerPlaceholder
	}
	return p.Skin
}

// IsPlaceholder reports whether the marker is the unthemed level placeholder
func (p Player) IsPlaceholder() bool {
	return p.Skin == "" || p.Skin == PlayerPlaceholder
}

// Tile returns the tile beneath the player, FloorDefault when none is recorded
func (p Player) Tile() Cell {
	if p.Under == nil {
		return FloorDefault
	}
	return p.Under
}

// IsDoor reports whether the obstacle is one of DOOR1..DOOR5
func (o Obstacle) IsDoor() bool {
	return o >= Door1 && o <= Door5
}

// Key returns the item that unlocks a door
func (o Obstacle) Key() (Item, bool) {
	if !o.IsDoor() {
		return 0, false
	}
	return Key1 + Item(o-Door1), true
}

// Door returns the door opened by a key
func (i Item) Door() Obstacle {
	return Door1 + Obstacle(i-Key1)
}

func (f Floor) MarshalText() ([]byte, error)    { return []byte(f.String()), nil }
func (i Item) MarshalText() ([]byte, error)     { return []byte(i.String()), nil }
func (o Obstacle) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (i *Item) UnmarshalText(b []byte) error {
	c, err := ParseCell(string(b))
	if err != nil {
		return err
	}
	item, ok := c.(Item)
	if !ok {
		return fmt.Errorf("%w: %q is not an item", ErrUnknownTile, string(b))
	}
	*i = item
	return nil
}

// ParseCell converts a tile identifier into a Cell. Identifiers beginning
// with "player" are player markers; "player" itself is the placeholder.
func ParseCell(id string) (Cell, error) {
	switch id {
	case "floor":
		return FloorDefault, nil
	case "exit":
		return FloorExit, nil
	case "wall":
		return Wall, nil
	case "npc":
		return NPC, nil
	case PlayerPlaceholder:
		return Player{}, nil
	}

	if n, ok := indexedTile(id, "key"); ok {
		return Key1 + Item(n-1), nil
	}
	if n, ok := indexedTile(id, "door"); ok {
		return Door1 + Obstacle(n-1), nil
	}
	if strings.HasPrefix(id, PlayerPlaceholder) {
		return Player{Skin: id}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTile, id)
}

// indexedTile parses identifiers such as key3 or door5
func indexedTile(id, prefix string) (int, bool) {
	if len(id) != len(prefix)+1 || !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n := int(id[len(prefix)] - '0')
	if n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

// IsPassable reports whether the cell can be entered without a key
func IsPassable(c Cell) bool {
	switch c.Category() {
	case CategoryFloor, CategoryItem:
		return true
	}
	return false
}

// Symbol returns the single-character rendering of a cell
func Symbol(c Cell) rune {
	switch v := c.(type) {
	case Floor:
		if v == FloorExit {
			return 'E'
		}
		return '.'
	case Item:
		return rune('a' + int(v-Key1))
	case Obstacle:
		switch {
		case v == Wall:
			return '#'
		case v == NPC:
			return 'N'
		case v.IsDoor():
			return rune('A' + int(v-Door1))
		}
	case Player:
		return '@'
	}
	return '?'
}
