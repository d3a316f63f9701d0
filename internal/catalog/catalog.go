// Package catalog holds the content tables a dungeon is built from: monster,
// item and room types. Records are validated once when the catalog is built
// and are read-only afterwards.
package catalog

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	// ErrUnknownID is returned by lookups for ids the catalog does not hold.
	ErrUnknownID = errors.New("catalog: unknown id")
	// ErrInvalid wraps every validation failure reported by New.
	ErrInvalid = errors.New("catalog: invalid content")
)

// Well-known type ids the rules depend on.
const (
	PlayerID = "PLAYER"
	GoldID   = "GOLD"
	RockID   = "ROCK"
)

// InFlightSuffix is appended to an item id to name the monster type used
// while that item is thrown.
const InFlightSuffix = "_IN_FLIGHT"

// Difficulty is a difficulty band, 0 (easiest) to MaxDifficulty.
type Difficulty int

// AnyDifficulty matches every band ("*" in content files).
const AnyDifficulty Difficulty = -1

// MaxDifficulty is the hardest band; a level has MaxDifficulty+1 quadrants.
const MaxDifficulty Difficulty = 3

// Matches reports whether a record tagged d may appear in band band.
func (d Difficulty) Matches(band Difficulty) bool {
	return d == AnyDifficulty || d == band
}

func (d Difficulty) String() string {
	if d == AnyDifficulty {
		return "*"
	}
	return fmt.Sprintf("%d", int(d))
}

// Shape selects how a room fills its bounding box.
type Shape uint8

const (
	ShapeBoxRandom Shape = iota // random sub-rectangle, at least 5x5
	ShapeBoxFull                // the whole box
	ShapeCave                   // the whole box with noise-placed pillars
)

var shapeNames = map[Shape]string{
	ShapeBoxRandom: "BOX_RANDOM",
	ShapeBoxFull:   "BOX_FULL",
	ShapeCave:      "CAVE",
}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// ParseShape converts a content-file shape name.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown room shape %q", ErrInvalid, name)
}

// MonsterType describes a kind of actor, the player included.
type MonsterType struct {
	ID         string
	Char       string
	Color      tcell.Color
	Difficulty Difficulty
	Chance     int
	Behaviors  []string
	HPMax      int
	Strength   int
	Items      []string // starting inventory, by item id
	OpensDoors bool
}

// ItemType describes a kind of item.
type ItemType struct {
	ID                 string
	Char               string
	Color              tcell.Color
	ChanceByDifficulty [MaxDifficulty + 1]int
	Score              int // >0: picked up by the player as score, never carried
}

// RoomType describes a kind of room the generator can place.
type RoomType struct {
	ID             string
	Shape          Shape
	Difficulty     Difficulty
	Monsters       []string // nil allows every monster type
	Chance         int
	Color          tcell.Color
	MonsterDensity int // monsters per 100 floor cells
	ItemDensity    int // items per 100 floor cells
}

// AllowsMonster reports whether monsters of type id may spawn in the room.
func (rt *RoomType) AllowsMonster(id string) bool {
	if rt.Monsters == nil {
		return true
	}
	for _, m := range rt.Monsters {
		if m == id {
			return true
		}
	}
	return false
}

// Catalog is an immutable, validated set of content records.
type Catalog struct {
	monsters []*MonsterType
	items    []*ItemType
	rooms    []*RoomType

	monsterByID map[string]*MonsterType
	itemByID    map[string]*ItemType
	roomByID    map[string]*RoomType
}

// New validates the records and builds a catalog. Record order is kept and
// drives every weighted choice made over the catalog.
func New(monsters []MonsterType, items []ItemType, rooms []RoomType) (*Catalog, error) {
	c := &Catalog{
		monsterByID: make(map[string]*MonsterType, len(monsters)),
		itemByID:    make(map[string]*ItemType, len(items)),
		roomByID:    make(map[string]*RoomType, len(rooms)),
	}
	for i := range items {
		it := items[i]
		if err := checkRecord("item", it.ID, it.Char); err != nil {
			return nil, err
		}
		if _, dup := c.itemByID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalid, it.ID)
		}
		for d, w := range it.ChanceByDifficulty {
			if w < 0 {
				return nil, fmt.Errorf("%w: item %q has negative chance at difficulty %d", ErrInvalid, it.ID, d)
			}
		}
		c.items = append(c.items, &it)
		c.itemByID[it.ID] = &it
	}
	for i := range monsters {
		mt := monsters[i]
		mt.Behaviors = append([]string(nil), mt.Behaviors...)
		mt.Items = append([]string(nil), mt.Items...)
		if err := checkRecord("monster", mt.ID, mt.Char); err != nil {
			return nil, err
		}
		if _, dup := c.monsterByID[mt.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate monster %q", ErrInvalid, mt.ID)
		}
		if err := checkDifficulty("monster", mt.ID, mt.Difficulty); err != nil {
			return nil, err
		}
		if mt.Chance < 0 {
			return nil, fmt.Errorf("%w: monster %q has negative chance", ErrInvalid, mt.ID)
		}
		if mt.HPMax <= 0 || mt.Strength < 0 {
			return nil, fmt.Errorf("%w: monster %q needs hp_max > 0 and strength >= 0", ErrInvalid, mt.ID)
		}
		for _, id := range mt.Items {
			if _, ok := c.itemByID[id]; !ok {
				return nil, fmt.Errorf("%w: monster %q carries unknown item %q", ErrInvalid, mt.ID, id)
			}
		}
		c.monsters = append(c.monsters, &mt)
		c.monsterByID[mt.ID] = &mt
	}
	if _, ok := c.monsterByID[PlayerID]; !ok {
		return nil, fmt.Errorf("%w: no %s monster type", ErrInvalid, PlayerID)
	}
	for i := range rooms {
		rt := rooms[i]
		if rt.Monsters != nil {
			rt.Monsters = append([]string{}, rt.Monsters...)
		}
		if rt.ID == "" {
			return nil, fmt.Errorf("%w: room with empty id", ErrInvalid)
		}
		if _, dup := c.roomByID[rt.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate room %q", ErrInvalid, rt.ID)
		}
		if err := checkDifficulty("room", rt.ID, rt.Difficulty); err != nil {
			return nil, err
		}
		if rt.Chance < 0 || rt.MonsterDensity < 0 || rt.ItemDensity < 0 {
			return nil, fmt.Errorf("%w: room %q has a negative weight", ErrInvalid, rt.ID)
		}
		if _, ok := shapeNames[rt.Shape]; !ok {
			return nil, fmt.Errorf("%w: room %q has unknown shape %d", ErrInvalid, rt.ID, rt.Shape)
		}
		for _, id := range rt.Monsters {
			if _, ok := c.monsterByID[id]; !ok {
				return nil, fmt.Errorf("%w: room %q allows unknown monster %q", ErrInvalid, rt.ID, id)
			}
		}
		c.rooms = append(c.rooms, &rt)
		c.roomByID[rt.ID] = &rt
	}
	for d := Difficulty(0); d <= MaxDifficulty; d++ {
		if !c.hasRoomFor(d) {
			return nil, fmt.Errorf("%w: no room type for difficulty %d", ErrInvalid, d)
		}
	}
	return c, nil
}

func checkRecord(kind, id, char string) error {
	if id == "" {
		return fmt.Errorf("%w: %s with empty id", ErrInvalid, kind)
	}
	if w := runewidth.StringWidth(char); w < 1 || w > 2 {
		return fmt.Errorf("%w: %s %q glyph %q is %d columns wide", ErrInvalid, kind, id, char, w)
	}
	return nil
}

func checkDifficulty(kind, id string, d Difficulty) error {
	if d != AnyDifficulty && (d < 0 || d > MaxDifficulty) {
		return fmt.Errorf("%w: %s %q difficulty %d out of range", ErrInvalid, kind, id, d)
	}
	return nil
}

func (c *Catalog) hasRoomFor(d Difficulty) bool {
	for _, rt := range c.rooms {
		if rt.Difficulty.Matches(d) && rt.Chance > 0 {
			return true
		}
	}
	return false
}

// MonsterType returns the monster type with the given id.
func (c *Catalog) MonsterType(id string) (*MonsterType, error) {
	if mt, ok := c.monsterByID[id]; ok {
		return mt, nil
	}
	return nil, fmt.Errorf("monster %q: %w", id, ErrUnknownID)
}

// ItemType returns the item type with the given id.
func (c *Catalog) ItemType(id string) (*ItemType, error) {
	if it, ok := c.itemByID[id]; ok {
		return it, nil
	}
	return nil, fmt.Errorf("item %q: %w", id, ErrUnknownID)
}

// RoomType returns the room type with the given id.
func (c *Catalog) RoomType(id string) (*RoomType, error) {
	if rt, ok := c.roomByID[id]; ok {
		return rt, nil
	}
	return nil, fmt.Errorf("room %q: %w", id, ErrUnknownID)
}

// Player returns the player's monster type.
func (c *Catalog) Player() *MonsterType {
	return c.monsterByID[PlayerID]
}

// Monsters returns every monster type in load order.
func (c *Catalog) Monsters() []*MonsterType { return append([]*MonsterType(nil), c.monsters...) }

// Items returns every item type in load order.
func (c *Catalog) Items() []*ItemType { return append([]*ItemType(nil), c.items...) }

// Rooms returns every room type in load order.
func (c *Catalog) Rooms() []*RoomType { return append([]*RoomType(nil), c.rooms...) }
