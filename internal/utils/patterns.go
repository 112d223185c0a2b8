package utils

// DeduplicatePatterns removes duplicate patterns from a slice while
// preserving order. The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; exists {
			continue
		}
		encounteredPatterns[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}
