package errors

import (
	"fmt"
	"slices"
	"strings"
)

// SuggestKeyword suggests a keyword when an identifier is a likely misspelling of one.
// It uses Levenshtein distance and only suggests close matches.
func SuggestKeyword(unknown string, keywords []string) string {
	if unknown == "" || len(keywords) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string

	for _, kw := range keywords {
		dist := levenshteinDistance(strings.ToLower(unknown), kw)
		if dist < minDistance {
			minDistance = dist
			bestMatch = kw
		}
	}

	// Keywords are short; anything beyond two edits is noise.
	if minDistance > 0 && minDistance <= 2 && minDistance < len(bestMatch) {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// SuggestForSyntax derives a suggestion for a syntax error from the lexeme and the expected set.
func SuggestForSyntax(lexeme string, expected []string, keywords []string) string {
	if s := SuggestKeyword(lexeme, keywords); s != "" {
		return s
	}

	if lexeme == EOF {
		if slices.Contains(expected, `"end"`) {
			return "Close the block with 'end'"
		}
		if slices.Contains(expected, `")"`) {
			return "Close the argument list with ')'"
		}
		return "The program ends too early"
	}

	if len(expected) == 1 {
		return fmt.Sprintf("Insert %s here", expected[0])
	}
	return ""
}

// levenshteinDistance computes the Levenshtein distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	// Create distance matrix
	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
