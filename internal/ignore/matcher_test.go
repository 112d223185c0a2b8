package ignore_test

import (
	"strings"
	"testing"

	"github.com/temirov/dumpcode/internal/ignore"
)

const (
	configFileName = ".dump_config.json"
	outputFileName = "codebase_dump.txt"
)

// newMatcherFromPatterns compiles one config-origin rule set for a test case.
func newMatcherFromPatterns(patterns []string) *ignore.Matcher {
	return ignore.NewMatcher(ignore.CompileRules(patterns, ignore.RuleOriginConfig), nil, nil)
}

// TestMatcherPatternSemantics verifies the gitignore-compatible pattern forms.
func TestMatcherPatternSemantics(testingInstance *testing.T) {
	testCases := []struct {
		name             string
		patterns         []string
		relativePath     string
		isDirectory      bool
		expectedExcluded bool
	}{
		{
			name:             "LiteralBasenameAtRoot",
			patterns:         []string{"secret.txt"},
			relativePath:     "secret.txt",
			expectedExcluded: true,
		},
		{
			name:             "LiteralBasenameNested",
			patterns:         []string{"secret.txt"},
			relativePath:     "deep/nested/secret.txt",
			expectedExcluded: true,
		},
		{
			name:             "WildcardExtension",
			patterns:         []string{"*.pyc"},
			relativePath:     "pkg/module.pyc",
			expectedExcluded: true,
		},
		{
			name:             "WildcardDoesNotCrossSeparators",
			patterns:         []string{"src/*.go"},
			relativePath:     "src/nested/main.go",
			expectedExcluded: false,
		},
		{
			name:             "DirectoryOnlyMatchesDirectory",
			patterns:         []string{"build/"},
			relativePath:     "build",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "DirectoryOnlyIgnoresPlainFile",
			patterns:         []string{"build/"},
			relativePath:     "build",
			isDirectory:      false,
			expectedExcluded: false,
		},
		{
			name:             "DirectoryOnlyMatchesAnyDepth",
			patterns:         []string{"build/"},
			relativePath:     "tools/build",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "AnchoredLeadingSlash",
			patterns:         []string{"/docs"},
			relativePath:     "docs",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "AnchoredLeadingSlashNotNested",
			patterns:         []string{"/docs"},
			relativePath:     "sub/docs",
			isDirectory:      true,
			expectedExcluded: false,
		},
		{
			name:             "InteriorSlashAnchors",
			patterns:         []string{"src/gen"},
			relativePath:     "src/gen",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "InteriorSlashNotNested",
			patterns:         []string{"src/gen"},
			relativePath:     "other/src/gen",
			isDirectory:      true,
			expectedExcluded: false,
		},
		{
			name:             "DoubleStarMiddle",
			patterns:         []string{"src/**/testdata"},
			relativePath:     "src/a/b/testdata",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "DoubleStarConsumesZeroSegments",
			patterns:         []string{"src/**/testdata"},
			relativePath:     "src/testdata",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "NegationReincludes",
			patterns:         []string{"*.log", "!keep.log"},
			relativePath:     "logs/keep.log",
			expectedExcluded: false,
		},
		{
			name:             "LastMatchWins",
			patterns:         []string{"!keep.log", "*.log"},
			relativePath:     "logs/keep.log",
			expectedExcluded: true,
		},
		{
			name:             "MalformedPatternNeverMatches",
			patterns:         []string{"[unclosed"},
			relativePath:     "unclosed",
			expectedExcluded: false,
		},
		{
			name:             "QuestionMarkSingleCharacter",
			patterns:         []string{"file?.txt"},
			relativePath:     "file1.txt",
			expectedExcluded: true,
		},
		{
			name:             "EscapedStarMatchesLiteral",
			patterns:         []string{`foo\*bar`},
			relativePath:     "nested/foo*bar",
			expectedExcluded: true,
		},
		{
			name:             "EscapedStarIsNotWildcard",
			patterns:         []string{`foo\*bar`},
			relativePath:     "fooXbar",
			expectedExcluded: false,
		},
		{
			name:             "BackslashPathSeparatorAnchors",
			patterns:         []string{`docs\api`},
			relativePath:     "docs/api",
			isDirectory:      true,
			expectedExcluded: true,
		},
		{
			name:             "BackslashPathSeparatorNotNested",
			patterns:         []string{`docs\api`},
			relativePath:     "other/docs/api",
			isDirectory:      true,
			expectedExcluded: false,
		},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			matcher := newMatcherFromPatterns(testCase.patterns)
			excluded := matcher.IsExcluded(testCase.relativePath, testCase.isDirectory)
			if excluded != testCase.expectedExcluded {
				subtestInstance.Fatalf("IsExcluded(%q, dir=%v) = %v, expected %v",
					testCase.relativePath, testCase.isDirectory, excluded, testCase.expectedExcluded)
			}
		})
	}
}

// TestMatcherForcedExclusions verifies the tool's own artifacts stay excluded
// even when a negation rule would re-include them.
func TestMatcherForcedExclusions(testingInstance *testing.T) {
	configRules := ignore.CompileRules([]string{"!" + configFileName, "!" + outputFileName}, ignore.RuleOriginConfig)
	matcher := ignore.NewMatcher(configRules, nil, []string{configFileName, outputFileName})

	if !matcher.IsExcluded(configFileName, false) {
		testingInstance.Fatalf("expected %s to stay excluded", configFileName)
	}
	if !matcher.IsExcluded("nested/"+outputFileName, false) {
		testingInstance.Fatalf("expected nested %s to stay excluded", outputFileName)
	}
	if matcher.IsExcluded("README.md", false) {
		testingInstance.Fatal("expected unrelated file to stay included")
	}
}

// TestMatcherSourcesAreIndependent verifies a gitignore negation cannot
// re-include a path excluded by the config pattern list.
func TestMatcherSourcesAreIndependent(testingInstance *testing.T) {
	configRules := ignore.CompileRules([]string{"*.log"}, ignore.RuleOriginConfig)
	gitignoreRules, parseError := ignore.ParseGitignoreRules(strings.NewReader("!debug.log\n"))
	if parseError != nil {
		testingInstance.Fatalf("parsing gitignore rules: %v", parseError)
	}
	matcher := ignore.NewMatcher(configRules, gitignoreRules, nil)

	if !matcher.IsExcluded("debug.log", false) {
		testingInstance.Fatal("expected config exclusion to survive gitignore negation")
	}
}

// TestParseGitignoreRules verifies comment, blank-line, and escape handling.
func TestParseGitignoreRules(testingInstance *testing.T) {
	gitignoreContent := strings.Join([]string{
		"# build artifacts",
		"",
		"*.o",
		"\\#literal-hash",
		"!important.o",
		"trailing-space   ",
	}, "\n")

	parsedRules, parseError := ignore.ParseGitignoreRules(strings.NewReader(gitignoreContent))
	if parseError != nil {
		testingInstance.Fatalf("parsing gitignore rules: %v", parseError)
	}
	if len(parsedRules) != 4 {
		testingInstance.Fatalf("expected 4 rules, got %d", len(parsedRules))
	}

	matcher := ignore.NewMatcher(nil, parsedRules, nil)
	if !matcher.IsExcluded("pkg/object.o", false) {
		testingInstance.Fatal("expected *.o to exclude object files")
	}
	if matcher.IsExcluded("important.o", false) {
		testingInstance.Fatal("expected negation to re-include important.o")
	}
	if !matcher.IsExcluded("#literal-hash", false) {
		testingInstance.Fatal("expected escaped hash pattern to match a literal name")
	}
	if !matcher.IsExcluded("trailing-space", false) {
		testingInstance.Fatal("expected trailing spaces to be trimmed from the pattern")
	}
}

// TestParseGitignoreFileMissing verifies a missing file yields no rules and no
// error.
func TestParseGitignoreFileMissing(testingInstance *testing.T) {
	parsedRules, parseError := ignore.ParseGitignoreFile("/nonexistent/.gitignore")
	if parseError != nil {
		testingInstance.Fatalf("expected missing gitignore to be silent, got %v", parseError)
	}
	if parsedRules != nil {
		testingInstance.Fatalf("expected nil rules, got %d", len(parsedRules))
	}
}
