// Package ignore compiles ignore rules from configuration patterns and
// gitignore files into a decision function over relative paths.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// RuleOrigin identifies which source supplied a rule.
type RuleOrigin string

const (
	// RuleOriginConfig marks rules supplied by the configuration pattern list.
	RuleOriginConfig RuleOrigin = "config"
	// RuleOriginGitignore marks rules parsed from a .gitignore file.
	RuleOriginGitignore RuleOrigin = "gitignore"
)

const pathSegmentSeparator = "/"

// Rule is one compiled ignore rule. Rules are immutable once compiled and are
// evaluated in source order with last-match-wins precedence.
type Rule struct {
	Pattern       string
	Origin        RuleOrigin
	Negated       bool
	Anchored      bool
	DirectoryOnly bool

	segments []string
	invalid  bool
}

// CompileRule turns a single raw pattern line into a Rule. A pattern that
// fails to compile is retained but never matches, so malformed user input
// under-excludes instead of aborting the run.
func CompileRule(rawPattern string, origin RuleOrigin) Rule {
	compiledRule := Rule{Pattern: rawPattern, Origin: origin}

	pattern := strings.TrimSpace(rawPattern)
	if strings.HasPrefix(pattern, "!") {
		compiledRule.Negated = true
		pattern = pattern[1:]
	} else if strings.HasPrefix(pattern, `\!`) || strings.HasPrefix(pattern, `\#`) {
		pattern = pattern[1:]
	}

	pattern = normalizePatternSeparators(pattern)
	if strings.HasSuffix(pattern, pathSegmentSeparator) {
		compiledRule.DirectoryOnly = true
		pattern = strings.TrimSuffix(pattern, pathSegmentSeparator)
	}
	if strings.HasPrefix(pattern, pathSegmentSeparator) {
		compiledRule.Anchored = true
		pattern = strings.TrimPrefix(pattern, pathSegmentSeparator)
	} else if strings.Contains(pattern, pathSegmentSeparator) {
		// A non-trailing separator roots the pattern at the scan root,
		// mirroring version-control ignore semantics.
		compiledRule.Anchored = true
	}

	if pattern == "" {
		compiledRule.invalid = true
		return compiledRule
	}

	compiledRule.segments = strings.Split(pattern, pathSegmentSeparator)
	for _, segment := range compiledRule.segments {
		if segment == doubleStarSegment {
			continue
		}
		if _, matchError := filepath.Match(segment, "probe"); matchError != nil {
			compiledRule.invalid = true
			return compiledRule
		}
	}
	return compiledRule
}

// CompileRules compiles a list of raw patterns preserving their order.
func CompileRules(rawPatterns []string, origin RuleOrigin) []Rule {
	compiledRules := make([]Rule, 0, len(rawPatterns))
	for _, rawPattern := range rawPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if trimmedPattern == "" {
			continue
		}
		compiledRules = append(compiledRules, CompileRule(trimmedPattern, origin))
	}
	return compiledRules
}

// ParseGitignoreRules reads gitignore-formatted lines from reader. Blank lines
// and comments are skipped; escaped leading "#" and "!" are honored.
func ParseGitignoreRules(reader io.Reader) ([]Rule, error) {
	var parsedRules []Rule
	lineScanner := bufio.NewScanner(reader)
	for lineScanner.Scan() {
		line := strings.TrimRight(lineScanner.Text(), "\r")
		line = trimTrailingUnescapedSpaces(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsedRules = append(parsedRules, CompileRule(line, RuleOriginGitignore))
	}
	if scanError := lineScanner.Err(); scanError != nil {
		return nil, scanError
	}
	return parsedRules, nil
}

// ParseGitignoreFile loads rules from the gitignore file at gitignorePath.
// A missing file is not an error; only config patterns apply in that case.
func ParseGitignoreFile(gitignorePath string) ([]Rule, error) {
	fileHandle, openError := os.Open(gitignorePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, nil
		}
		return nil, openError
	}
	defer fileHandle.Close()
	return ParseGitignoreRules(fileHandle)
}

// normalizePatternSeparators rewrites backslashes used as Windows path
// separators into slashes while leaving escape pairs like `\*` or `\#`
// intact, so they stay literal through segment matching.
func normalizePatternSeparators(pattern string) string {
	var builder strings.Builder
	for byteIndex := 0; byteIndex < len(pattern); byteIndex++ {
		if pattern[byteIndex] != '\\' {
			builder.WriteByte(pattern[byteIndex])
			continue
		}
		if byteIndex+1 < len(pattern) && isEscapableByte(pattern[byteIndex+1]) {
			builder.WriteByte('\\')
			builder.WriteByte(pattern[byteIndex+1])
			byteIndex++
			continue
		}
		builder.WriteByte('/')
	}
	return builder.String()
}

// isEscapableByte reports whether a byte after a backslash forms an escape
// pair rather than a path separator.
func isEscapableByte(candidate byte) bool {
	switch candidate {
	case '*', '?', '[', ']', '!', '#', ' ', '\\':
		return true
	}
	return false
}

// trimTrailingUnescapedSpaces removes trailing whitespace unless the final
// space is escaped with a backslash.
func trimTrailingUnescapedSpaces(line string) string {
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		if len(line) >= 2 && line[len(line)-2] == '\\' {
			return line[:len(line)-2] + line[len(line)-1:]
		}
		line = line[:len(line)-1]
	}
	return line
}
