package graphical

import "kunci/internal/models"

// DefaultTolerance is the per-axis pixel slack applied when comparing a
// submitted click against a stored template point.
const DefaultTolerance = 15

// Matches reports whether a submitted set of click points authenticates
// against a stored template. The counts must be equal; beyond that, every
// submitted point must land within tolerance of SOME template point, where
// tolerance bounds the x-distance and y-distance independently (a square
// acceptance region, not a circle).
//
// The rule is deliberately permissive: matching ignores click order, and a
// single template point may satisfy several submitted points. This is not a
// bijective point-to-point comparison.
func Matches(submitted, template []models.Point, tolerance int) bool {
	if len(submitted) != len(template) {
		return false
	}

	for _, p := range submitted {
		matched := false
		for _, t := range template {
			if abs(p.X-t.X) <= tolerance && abs(p.Y-t.Y) <= tolerance {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
