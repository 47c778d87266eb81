package domain

import "testing"

func TestRarityForDraw_Boundaries(t *testing.T) {
	cases := []struct {
		draw int
		want Rarity
	}{
		{0, RarityLegendary},
		{1, RarityMythical},
		{5, RarityMythical},
		{6, RarityEpic},
		{25, RarityEpic},
		{26, RarityEspecial},
		{55, RarityEspecial},
		{56, RarityRare},
		{99, RarityRare},
	}
	for _, tc := range cases {
		got, err := RarityForDraw(tc.draw)
		if err != nil {
			t.Fatalf("draw %d: unexpected error: %v", tc.draw, err)
		}
		if got != tc.want {
			t.Errorf("draw %d: expected %s, got %s", tc.draw, tc.want, got)
		}
	}
}

func TestRarityForDraw_PartitionsDrawSpace(t *testing.T) {
	counts := make(map[Rarity]int)
	for draw := 0; draw < RouletteBound; draw++ {
		rarity, err := RarityForDraw(draw)
		if err != nil {
			t.Fatalf("draw %d: unexpected error: %v", draw, err)
		}
		if rarity == RarityCommon {
			t.Fatalf("draw %d mapped to common, which is never drawn", draw)
		}
		counts[rarity]++
	}

	// No gaps, no overlap: interval widths are the tier probabilities.
	want := map[Rarity]int{
		RarityLegendary: 1,
		RarityMythical:  5,
		RarityEpic:      20,
		RarityEspecial:  30,
		RarityRare:      44,
	}
	for rarity, expected := range want {
		if counts[rarity] != expected {
			t.Errorf("rarity %s: expected %d draws, got %d", rarity, expected, counts[rarity])
		}
	}
}

func TestRarityForDraw_OutOfRange(t *testing.T) {
	for _, draw := range []int{-1, 100, 500} {
		if _, err := RarityForDraw(draw); err == nil {
			t.Errorf("draw %d: expected error", draw)
		}
	}
}
