// Package sets implements the Set validity rule and the exhaustive triple scan.
package sets

import (
	"fmt"
	"strings"

	"github.com/ironsheep/setcards-mcp/internal/cards"
)

// Set is a valid triple of cards together with their positions in the
// slice passed to FindAllSets. Indices are strictly increasing.
type Set struct {
	Cards   [3]cards.Card `json:"cards"`
	Indices [3]int        `json:"indices"`
}

// IsValidSet reports whether every attribute of a, b and c is either all
// equal or all distinct. Three copies of the same card are never a Set.
func IsValidSet(a, b, c cards.Card) bool {
	if identical(a, b, c) {
		return false
	}
	return uniform(int(a.Number), int(b.Number), int(c.Number)) &&
		uniform(int(a.Shape), int(b.Shape), int(c.Shape)) &&
		uniform(int(a.Color), int(b.Color), int(c.Color)) &&
		uniform(int(a.Shading), int(b.Shading), int(c.Shading))
}

// identical is true when a, b and c agree on every attribute.
func identical(a, b, c cards.Card) bool {
	return a.Attributes == b.Attributes && b.Attributes == c.Attributes
}

// uniform is true for all-same or all-different triples.
func uniform(x, y, z int) bool {
	if x == y && y == z {
		return true
	}
	return x != y && y != z && x != z
}

// FindAllSets scans every i<j<k triple of cs and returns the valid ones in
// scan order. Fewer than three cards yield an empty, non-nil slice.
func FindAllSets(cs []cards.Card) []Set {
	found := make([]Set, 0)
	n := len(cs)
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				if IsValidSet(cs[i], cs[j], cs[k]) {
					found = append(found, Set{
						Cards:   [3]cards.Card{cs[i], cs[j], cs[k]},
						Indices: [3]int{i, j, k},
					})
				}
			}
		}
	}
	return found
}

// Explain describes, attribute by attribute, why a triple is or is not a Set.
//
//	number: same (TWO) | shape: different | color: 2 same, 1 different (RED,RED,GREEN) | ...
func Explain(a, b, c cards.Card) string {
	parts := []string{
		describe("number", a.Number, b.Number, c.Number),
		describe("shape", a.Shape, b.Shape, c.Shape),
		describe("color", a.Color, b.Color, c.Color),
		describe("shading", a.Shading, b.Shading, c.Shading),
	}
	verdict := "not a set"
	switch {
	case identical(a, b, c):
		verdict = "not a set (identical cards)"
	case IsValidSet(a, b, c):
		verdict = "valid set"
	}
	return verdict + ": " + strings.Join(parts, " | ")
}

func describe[T comparable](name string, x, y, z T) string {
	switch {
	case x == y && y == z:
		return fmt.Sprintf("%s: same (%v)", name, x)
	case x != y && y != z && x != z:
		return fmt.Sprintf("%s: different", name)
	default:
		return fmt.Sprintf("%s: 2 same, 1 different (%v,%v,%v)", name, x, y, z)
	}
}
