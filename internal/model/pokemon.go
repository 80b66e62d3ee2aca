package model

import (
	"fmt"
	"sort"
	"time"
)

// Pokemon is a single generated collectible.
type Pokemon struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rarity      Rarity    `json:"rarity"`
	Type        string    `json:"type"`
	Attack      int       `json:"attack"`
	AttackName  string    `json:"attackName"`
	PV          int       `json:"pv"`
	ImageBase64 string    `json:"imageBase64,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
	Status      Status    `json:"status"`
}

// Status is the ownership state of a Pokemon.
type Status string

// Pokemon statuses. The only allowed transition is OWNED -> RESOLD.
const (
	StatusOwned  Status = "OWNED"
	StatusResold Status = "RESOLD"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOwned || s == StatusResold
}

// Rarity is an ordered rarity grade.
type Rarity string

// Rarities from lowest to highest.
const (
	RarityF     Rarity = "F"
	RarityE     Rarity = "E"
	RarityD     Rarity = "D"
	RarityC     Rarity = "C"
	RarityB     Rarity = "B"
	RarityA     Rarity = "A"
	RarityS     Rarity = "S"
	RaritySPlus Rarity = "S+"
)

// Rarities lists every rarity in ascending order.
var Rarities = []Rarity{RarityF, RarityE, RarityD, RarityC, RarityB, RarityA, RarityS, RaritySPlus}

var resellValues = map[Rarity]int64{
	RarityF:     2,
	RarityE:     3,
	RarityD:     5,
	RarityC:     8,
	RarityB:     12,
	RarityA:     18,
	RarityS:     25,
	RaritySPlus: 40,
}

// Rank returns the position of r in the rarity order, or -1 if r is unknown.
func (r Rarity) Rank() int {
	for i, v := range Rarities {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

// ParseRarity converts s to a Rarity.
func ParseRarity(s string) (Rarity, error) {
	r := Rarity(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rarity %q", s)
	}
	return r, nil
}

// ResellValue returns the number of tokens credited for reselling a Pokemon
// of the given rarity. Unknown rarities are worth nothing.
func ResellValue(r Rarity) int64 {
	return resellValues[r]
}

// Gameplay stat bounds for locally synthesized stats.
const (
	MinAttack = 10
	MaxAttack = 100
	MinPV     = 50
	MaxPV     = 200
)

// ElementTypes is the fixed set of element types a Pokemon can have.
var ElementTypes = []string{
	"Normal", "Fire", "Water", "Electric", "Grass", "Ice",
	"Fighting", "Poison", "Ground", "Flying", "Psychic", "Bug",
	"Rock", "Ghost", "Dragon", "Dark", "Steel", "Fairy",
}

// MoveNames is the fixed set of attack names.
var MoveNames = []string{
	"Tackle", "Quick Attack", "Ember", "Flamethrower", "Water Gun",
	"Hydro Pump", "Thunder Shock", "Thunderbolt", "Vine Whip", "Solar Beam",
	"Ice Beam", "Karate Chop", "Sludge Bomb", "Earthquake", "Wing Attack",
	"Psychic", "Bug Bite", "Rock Slide", "Shadow Ball", "Dragon Claw",
	"Crunch", "Iron Tail", "Moonblast", "Hyper Beam",
}

// Score computes the collection score: 10 points per owned Pokemon and
// 2 points per resold one.
func Score(collection []Pokemon) int {
	score := 0
	for _, p := range collection {
		switch p.Status {
		case StatusOwned:
			score += 10
		case StatusResold:
			score += 2
		}
	}
	return score
}

// SortOrder selects how a collection is presented.
type SortOrder string

// Sort orders.
const (
	SortRarityAsc  SortOrder = "rarity_asc"
	SortRarityDesc SortOrder = "rarity_desc"
	SortNewest     SortOrder = "newest"
	SortOldest     SortOrder = "oldest"
	SortName       SortOrder = "name"
)

// DefaultSortOrder is used until the player picks another one.
const DefaultSortOrder = SortNewest

// Valid reports whether o is a known sort order.
func (o SortOrder) Valid() bool {
	switch o {
	case SortRarityAsc, SortRarityDesc, SortNewest, SortOldest, SortName:
		return true
	}
	return false
}

// Sorted returns a sorted copy of collection. Every order is total (ties
// fall back to the id), and each descending order is the exact reverse of
// its ascending counterpart.
func Sorted(collection []Pokemon, order SortOrder) []Pokemon {
	out := make([]Pokemon, len(collection))
	copy(out, collection)

	switch order {
	case SortRarityAsc, SortRarityDesc:
		sort.Slice(out, func(i, j int) bool { return rarityLess(out[i], out[j]) })
		if order == SortRarityDesc {
			reverse(out)
		}
	case SortOldest, SortNewest:
		sort.Slice(out, func(i, j int) bool { return timeLess(out[i], out[j]) })
		if order == SortNewest {
			reverse(out)
		}
	case SortName:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
	}
	return out
}

func rarityLess(a, b Pokemon) bool {
	if ra, rb := a.Rarity.Rank(), b.Rarity.Rank(); ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}

func timeLess(a, b Pokemon) bool {
	if !a.GeneratedAt.Equal(b.GeneratedAt) {
		return a.GeneratedAt.Before(b.GeneratedAt)
	}
	return a.ID < b.ID
}

func reverse(ps []Pokemon) {
	for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
		ps[i], ps[j] = ps[j], ps[i]
	}
}
