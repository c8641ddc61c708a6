package utils

import "strings"

func NormalizeDifficulty(difficulty string) string {
	return strings.ToLower(strings.TrimSpace(difficulty))
}

func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
