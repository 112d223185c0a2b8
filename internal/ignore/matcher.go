package ignore

import (
	"path"
	"path/filepath"
	"strings"
)

// doubleStarSegment matches zero or more whole path segments.
const doubleStarSegment = "**"

// Matcher evaluates exclusion decisions against two compiled rule sets with
// identical semantics. A path is excluded when either source's final verdict
// excludes it. Negation inside an already-excluded ancestor directory never
// takes effect because the scanner prunes excluded directories before descent.
type Matcher struct {
	configRules      []Rule
	gitignoreRules   []Rule
	forcedExclusions map[string]struct{}
}

// NewMatcher builds a Matcher from compiled rules. forcedExclusions lists
// relative paths or basenames that are always excluded regardless of user
// patterns, such as the tool's own configuration file and the output file.
func NewMatcher(configRules []Rule, gitignoreRules []Rule, forcedExclusions []string) *Matcher {
	forced := make(map[string]struct{}, len(forcedExclusions))
	for _, exclusion := range forcedExclusions {
		normalized := normalizeRelativePath(exclusion)
		if normalized == "" {
			continue
		}
		forced[normalized] = struct{}{}
	}
	return &Matcher{
		configRules:      configRules,
		gitignoreRules:   gitignoreRules,
		forcedExclusions: forced,
	}
}

// IsExcluded reports whether the path relative to the scan root is excluded.
func (matcher *Matcher) IsExcluded(relativePath string, isDirectory bool) bool {
	normalizedPath := normalizeRelativePath(relativePath)
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}

	if _, isForced := matcher.forcedExclusions[normalizedPath]; isForced {
		return true
	}
	if _, isForced := matcher.forcedExclusions[path.Base(normalizedPath)]; isForced {
		return true
	}

	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)

	configMatched, configExcluded := evaluateRules(matcher.configRules, pathSegments, isDirectory)
	if configMatched && configExcluded {
		return true
	}
	gitignoreMatched, gitignoreExcluded := evaluateRules(matcher.gitignoreRules, pathSegments, isDirectory)
	return gitignoreMatched && gitignoreExcluded
}

// evaluateRules folds the ordered rule list over one path. The last matching
// rule determines the verdict.
func evaluateRules(rules []Rule, pathSegments []string, isDirectory bool) (bool, bool) {
	anyMatched := false
	excluded := false
	for ruleIndex := range rules {
		if !rules[ruleIndex].matches(pathSegments, isDirectory) {
			continue
		}
		anyMatched = true
		excluded = !rules[ruleIndex].Negated
	}
	return anyMatched, excluded
}

// matches reports whether the rule matches the candidate path. Invalid rules
// never match.
func (rule *Rule) matches(pathSegments []string, isDirectory bool) bool {
	if rule.invalid || len(pathSegments) == 0 {
		return false
	}

	if !rule.Anchored {
		// A floating pattern matches the basename at any depth. When the
		// pattern is directory-only it matches any component occupying a
		// directory position instead.
		patternSegment := rule.segments[0]
		if rule.DirectoryOnly {
			return matchesDirectoryComponent(patternSegment, pathSegments, isDirectory)
		}
		basename := pathSegments[len(pathSegments)-1]
		matched, matchError := filepath.Match(patternSegment, basename)
		return matchError == nil && matched
	}

	if rule.DirectoryOnly {
		// A directory-only path pattern matches the directory itself and
		// implicitly everything beneath it.
		for prefixLength := 1; prefixLength <= len(pathSegments); prefixLength++ {
			if !matchSegments(rule.segments, pathSegments[:prefixLength]) {
				continue
			}
			if prefixLength < len(pathSegments) || isDirectory {
				return true
			}
		}
		return false
	}

	return matchSegments(rule.segments, pathSegments)
}

// matchesDirectoryComponent reports whether any directory-position component
// of the path matches the pattern segment. The final component only counts
// when the candidate itself is a directory.
func matchesDirectoryComponent(patternSegment string, pathSegments []string, isDirectory bool) bool {
	for segmentIndex, pathSegment := range pathSegments {
		if segmentIndex == len(pathSegments)-1 && !isDirectory {
			return false
		}
		matched, matchError := filepath.Match(patternSegment, pathSegment)
		if matchError == nil && matched {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against the whole candidate segment
// list. A "**" segment consumes zero or more path segments.
func matchSegments(patternSegments []string, pathSegments []string) bool {
	if len(patternSegments) == 0 {
		return len(pathSegments) == 0
	}
	if patternSegments[0] == doubleStarSegment {
		for skipCount := 0; skipCount <= len(pathSegments); skipCount++ {
			if matchSegments(patternSegments[1:], pathSegments[skipCount:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegments) == 0 {
		return false
	}
	matched, matchError := filepath.Match(patternSegments[0], pathSegments[0])
	if matchError != nil || !matched {
		return false
	}
	return matchSegments(patternSegments[1:], pathSegments[1:])
}

// normalizeRelativePath converts a path to slash-separated form without a
// leading "./" prefix or trailing separator.
func normalizeRelativePath(candidatePath string) string {
	normalized := filepath.ToSlash(strings.TrimSpace(candidatePath))
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.TrimSuffix(normalized, pathSegmentSeparator)
	return normalized
}
