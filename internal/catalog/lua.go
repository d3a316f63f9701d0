package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	lua "github.com/yuin/gopher-lua"
)

// rawRecord holds one constructor call before compilation.
type rawRecord struct {
	kind  string
	id    string
	table *lua.LTable
}

// LoadLuaFile reads a content file and builds a catalog from it.
func LoadLuaFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content file %s: %w", path, err)
	}
	return LoadLua(string(src))
}

// LoadLua runs a content script in a sandboxed VM and compiles the records
// it declares. The script uses curried constructors:
//
//	Item "ROCK" { char = "*", color = "gray", chance = {4, 3, 3, 2} }
//	Monster "RAT" { char = "r", difficulty = 0, chance = 4, hp_max = 3, strength = 1,
//	                behaviors = {"stunnable", "beeline_visible"} }
//	Room "CELLAR" { shape = "BOX_RANDOM", difficulty = "*", chance = 4 }
//
// The VM is discarded before LoadLua returns.
func LoadLua(src string) (*Catalog, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}

	var records []rawRecord
	for _, kind := range []string{"Monster", "Item", "Room"} {
		L.SetGlobal(kind, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				records = append(records, rawRecord{kind: kind, id: id, table: L.CheckTable(1)})
				return 0
			}))
			return 1
		}))
	}

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("executing content script: %w", err)
	}
	return compile(records)
}

func compile(records []rawRecord) (*Catalog, error) {
	var (
		monsters []MonsterType
		items    []ItemType
		rooms    []RoomType
	)
	for _, r := range records {
		switch r.kind {
		case "Monster":
			mt, err := compileMonster(r)
			if err != nil {
				return nil, err
			}
			monsters = append(monsters, mt)
		case "Item":
			it, err := compileItem(r)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		case "Room":
			rt, err := compileRoom(r)
			if err != nil {
				return nil, err
			}
			rooms = append(rooms, rt)
		}
	}
	return New(monsters, items, rooms)
}

func compileMonster(r rawRecord) (MonsterType, error) {
	f := &fields{tbl: r.table}
	mt := MonsterType{
		ID:         r.id,
		Char:       f.str("char"),
		Chance:     f.integer("chance"),
		Behaviors:  f.strs("behaviors"),
		HPMax:      f.integer("hp_max"),
		Strength:   f.integer("strength"),
		Items:      f.strs("items"),
		OpensDoors: f.boolean("opens_doors"),
	}
	mt.Color = f.color()
	if f.err != nil {
		return mt, fmt.Errorf("monster %q: %w", r.id, f.err)
	}
	var err error
	if mt.Difficulty, err = getDifficulty(r.table); err != nil {
		return mt, fmt.Errorf("monster %q: %w", r.id, err)
	}
	return mt, nil
}

func compileItem(r rawRecord) (ItemType, error) {
	f := &fields{tbl: r.table}
	it := ItemType{
		ID:    r.id,
		Char:  f.str("char"),
		Score: f.integer("score"),
	}
	it.Color = f.color()
	chances := f.table("chance")
	if f.err != nil {
		return it, fmt.Errorf("item %q: %w", r.id, f.err)
	}
	if chances != nil {
		if chances.MaxN() != len(it.ChanceByDifficulty) {
			return it, fmt.Errorf("%w: item %q needs %d chance values, got %d",
				ErrInvalid, r.id, len(it.ChanceByDifficulty), chances.MaxN())
		}
		for i := range it.ChanceByDifficulty {
			n, ok := chances.RawGetInt(i + 1).(lua.LNumber)
			if !ok {
				return it, fmt.Errorf("%w: item %q chance %d is not a number", ErrInvalid, r.id, i+1)
			}
			it.ChanceByDifficulty[i] = int(n)
		}
	}
	return it, nil
}

func compileRoom(r rawRecord) (RoomType, error) {
	f := &fields{tbl: r.table}
	rt := RoomType{
		ID:             r.id,
		Chance:         f.integer("chance"),
		MonsterDensity: f.integer("monster_density"),
		ItemDensity:    f.integer("item_density"),
	}
	if f.table("monsters") != nil {
		rt.Monsters = f.strs("monsters")
		if rt.Monsters == nil {
			rt.Monsters = []string{}
		}
	}
	shape := f.str("shape")
	rt.Color = f.color()
	if f.err != nil {
		return rt, fmt.Errorf("room %q: %w", r.id, f.err)
	}
	var err error
	if rt.Shape, err = ParseShape(strings.ToUpper(shape)); err != nil {
		return rt, fmt.Errorf("room %q: %w", r.id, err)
	}
	if rt.Difficulty, err = getDifficulty(r.table); err != nil {
		return rt, fmt.Errorf("room %q: %w", r.id, err)
	}
	return rt, nil
}

// fields reads typed values out of a record table. A missing key reads as
// the zero value; the first value of the wrong type is kept in err.
type fields struct {
	tbl *lua.LTable
	err error
}

func (f *fields) wrongType(key string, v lua.LValue, want string) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s is a %s, want %s", ErrInvalid, key, v.Type(), want)
	}
}

func (f *fields) str(key string) string {
	v := f.tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	if v != lua.LNil {
		f.wrongType(key, v, "string")
	}
	return ""
}

func (f *fields) integer(key string) int {
	v := f.tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		if float64(n) != math.Trunc(float64(n)) {
			f.wrongType(key, v, "integer")
		}
		return int(n)
	}
	if v != lua.LNil {
		f.wrongType(key, v, "integer")
	}
	return 0
}

func (f *fields) boolean(key string) bool {
	v := f.tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	if v != lua.LNil {
		f.wrongType(key, v, "boolean")
	}
	return false
}

func (f *fields) table(key string) *lua.LTable {
	v := f.tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	if v != lua.LNil {
		f.wrongType(key, v, "table")
	}
	return nil
}

// strs reads an array of strings.
func (f *fields) strs(key string) []string {
	t := f.table(key)
	if t == nil {
		return nil
	}
	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		v := t.RawGetInt(i)
		s, ok := v.(lua.LString)
		if !ok {
			f.wrongType(fmt.Sprintf("%s[%d]", key, i), v, "string")
			continue
		}
		out = append(out, string(s))
	}
	return out
}

// color reads "color" as a W3C name or #rrggbb value.
func (f *fields) color() tcell.Color {
	name := f.str("color")
	if name == "" || name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault && f.err == nil {
		f.err = fmt.Errorf("%w: unknown color %q", ErrInvalid, name)
	}
	return c
}

// getDifficulty reads "difficulty", which is either a band number or "*".
// A missing value means any band.
func getDifficulty(tbl *lua.LTable) (Difficulty, error) {
	switch v := tbl.RawGetString("difficulty").(type) {
	case lua.LNumber:
		return Difficulty(int(v)), nil
	case lua.LString:
		if string(v) == "*" {
			return AnyDifficulty, nil
		}
		return 0, fmt.Errorf("%w: difficulty %q", ErrInvalid, string(v))
	default:
		if v == lua.LNil {
			return AnyDifficulty, nil
		}
		return 0, fmt.Errorf("%w: difficulty has type %s", ErrInvalid, v.Type())
	}
}
