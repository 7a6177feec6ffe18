package verr

import "fmt"

// SuggestSimilar returns a "did you mean" hint when candidates holds a
// name close to input, or "" when nothing is close enough. It backs the
// help text on unknown-entity and unknown-field errors, where the
// candidate sets are small (registered names, a table's fields).
func SuggestSimilar(input string, candidates []string) string {
	match, ok := FindClosestMatch(input, candidates)
	if !ok {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", match)
}

// FindClosestMatch returns the candidate nearest to input by edit
// distance. The accepted distance scales with the input length: short
// names tolerate one edit, longer ones up to three, so "usr" still
// finds "user" without "id" drifting to an unrelated field.
func FindClosestMatch(input string, candidates []string) (string, bool) {
	limit := len(input) / 3
	if limit < 1 {
		limit = 1
	}
	if limit > 3 {
		limit = 3
	}

	best := ""
	bestDist := limit + 1
	for _, c := range candidates {
		if d := editDistance(input, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= limit
}

// editDistance is the Levenshtein distance over bytes, computed with a
// single reusable row. Identifiers here are ASCII, so byte positions
// and character positions coincide.
func editDistance(a, b string) int {
	switch {
	case a == b:
		return 0
	case len(a) == 0:
		return len(b)
	case len(b) == 0:
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			up := row[j]

			best := diag
			if a[i-1] != b[j-1] {
				best++
			}
			if v := up + 1; v < best {
				best = v
			}
			if v := row[j-1] + 1; v < best {
				best = v
			}

			row[j] = best
			diag = up
		}
	}
	return row[len(b)]
}
