package catalog

import "github.com/gdamore/tcell/v2"

// Default returns the built-in content set.
func Default() *Catalog {
	c, err := New(defaultMonsters(), defaultItems(), defaultRooms())
	if err != nil {
		panic("catalog: built-in content is invalid: " + err.Error())
	}
	return c
}

func defaultItems() []ItemType {
	return []ItemType{
		{ID: GoldID, Char: "$", Color: tcell.ColorGold, Score: 1},
		{ID: RockID, Char: "*", Color: tcell.ColorGray, ChanceByDifficulty: [4]int{4, 3, 3, 2}},
		{ID: "BONE", Char: "%", Color: tcell.ColorWhite, ChanceByDifficulty: [4]int{1, 2, 3, 4}},
	}
}

func defaultMonsters() []MonsterType {
	return []MonsterType{
		{ID: PlayerID, Char: "@", Color: tcell.ColorWhite, Difficulty: AnyDifficulty,
			Behaviors: []string{"player"}, HPMax: 40, Strength: 3, OpensDoors: true},
		{ID: "ROCK" + InFlightSuffix, Char: "*", Color: tcell.ColorGray, Difficulty: AnyDifficulty,
			Behaviors: []string{"path_until_hit"}, HPMax: 1},

		{ID: "RAT", Char: "r", Color: tcell.ColorSandyBrown, Difficulty: 0, Chance: 4,
			Behaviors: []string{"stunnable", "beeline_visible", "random_walk"}, HPMax: 3, Strength: 1},
		{ID: "BAT", Char: "b", Color: tcell.ColorDarkGray, Difficulty: 0, Chance: 2,
			Behaviors: []string{"random_walk"}, HPMax: 2, Strength: 1},
		{ID: "WIBBLE", Char: "w", Color: tcell.ColorLightGreen, Difficulty: 1, Chance: 3,
			Behaviors: []string{"stunnable", "pick_up_rocks", "range_5_visible", "throw_rock_slow", "random_walk"},
			HPMax:     4, Strength: 2, Items: []string{RockID, RockID}},
		{ID: "GOBLIN", Char: "g", Color: tcell.ColorGreen, Difficulty: 1, Chance: 3,
			Behaviors: []string{"sleep", "stunnable", "flee_visible", "beeline_visible", "random_walk"},
			HPMax:     8, Strength: 2, OpensDoors: true},
		{ID: "SLINGER", Char: "s", Color: tcell.ColorOrange, Difficulty: 2, Chance: 2,
			Behaviors: []string{"stunnable", "pick_up_rocks", "range_7_visible", "throw_rock_slow", "random_walk"},
			HPMax:     6, Strength: 3, Items: []string{RockID, RockID, RockID}},
		{ID: "OGRE", Char: "O", Color: tcell.ColorOlive, Difficulty: 2, Chance: 2,
			Behaviors: []string{"sleep", "stunnable", "beeline_visible"}, HPMax: 20, Strength: 5, OpensDoors: true},
		{ID: "WRAITH", Char: "W", Color: tcell.ColorPurple, Difficulty: 3, Chance: 3,
			Behaviors: []string{"flee_visible", "beeline_visible", "random_walk"}, HPMax: 25, Strength: 6},
	}
}

func defaultRooms() []RoomType {
	return []RoomType{
		{ID: "CELLAR", Shape: ShapeBoxRandom, Difficulty: AnyDifficulty, Chance: 4,
			Color: tcell.ColorSilver, MonsterDensity: 2, ItemDensity: 1},
		{ID: "STOREROOM", Shape: ShapeBoxFull, Difficulty: AnyDifficulty, Chance: 1,
			Monsters: []string{"RAT", "SLINGER"}, Color: tcell.ColorTan, MonsterDensity: 2, ItemDensity: 4},
		{ID: "NEST", Shape: ShapeBoxFull, Difficulty: 0, Chance: 2,
			Monsters: []string{"RAT", "BAT"}, Color: tcell.ColorDarkKhaki, MonsterDensity: 3, ItemDensity: 1},
		{ID: "CAVERN", Shape: ShapeCave, Difficulty: 2, Chance: 2,
			Color: tcell.ColorSlateGray, MonsterDensity: 2, ItemDensity: 2},
		{ID: "CRYPT", Shape: ShapeBoxRandom, Difficulty: 3, Chance: 2,
			Monsters: []string{"WRAITH", "OGRE"}, Color: tcell.ColorMaroon, MonsterDensity: 2, ItemDensity: 2},
	}
}
