package domain

import (
	"fmt"
	"sort"
)

type Rarity int

const (
	RarityLegendary Rarity = 1
	RarityMythical  Rarity = 2
	RarityEpic      Rarity = 3
	RarityEspecial  Rarity = 4
	RarityRare      Rarity = 5
	RarityCommon    Rarity = 6
)

// RouletteBound is the exclusive upper bound of a roulette draw.
const RouletteBound = 100

// rouletteThresholds partitions [0,100) into right-open intervals by
// cumulative probability: 0 legendary, 1-5 mythical, 6-25 epic,
// 26-55 especial, 56-99 rare. Common components are never drawn; they are
// reached through the always-available catalog path instead.
var rouletteThresholds = []int{0, 1, 6, 26, 56, 100}

// RarityForDraw maps a uniform draw in [0,100) to the rarity whose interval
// contains it: the tier index of the smallest threshold strictly greater
// than the draw.
func RarityForDraw(draw int) (Rarity, error) {
	if draw < 0 || draw >= RouletteBound {
		return 0, fmt.Errorf("draw %d outside [0,%d)", draw, RouletteBound)
	}
	return Rarity(sort.SearchInts(rouletteThresholds, draw+1)), nil
}

// DrawableRarities lists the tiers reachable through the roulette, rarest
// first.
func DrawableRarities() []Rarity {
	return []Rarity{RarityLegendary, RarityMythical, RarityEpic, RarityEspecial, RarityRare}
}

// AllRarities lists every catalog tier including common.
func AllRarities() []Rarity {
	return append(DrawableRarities(), RarityCommon)
}

func (r Rarity) String() string {
	switch r {
	case RarityLegendary:
		return "legendary"
	case RarityMythical:
		return "mythical"
	case RarityEpic:
		return "epic"
	case RarityEspecial:
		return "especial"
	case RarityRare:
		return "rare"
	case RarityCommon:
		return "common"
	default:
		return fmt.Sprintf("rarity(%d)", int(r))
	}
}
