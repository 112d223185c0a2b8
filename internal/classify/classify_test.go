package classify_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/dumpcode/internal/classify"
	"github.com/temirov/dumpcode/internal/types"
)

// writeTestFile creates a file with the given raw content inside a temporary
// directory and returns its path.
func writeTestFile(testingInstance *testing.T, fileName string, rawContent []byte) string {
	testingInstance.Helper()
	filePath := filepath.Join(testingInstance.TempDir(), fileName)
	if writeError := os.WriteFile(filePath, rawContent, 0o644); writeError != nil {
		testingInstance.Fatalf("writing test file %s: %v", filePath, writeError)
	}
	return filePath
}

// TestClassifyTextFile verifies a plain text file is included in full with its
// encoding recorded.
func TestClassifyTextFile(testingInstance *testing.T) {
	fileContent := "package main\n\nfunc main() {}\n"
	filePath := writeTestFile(testingInstance, "main.go", []byte(fileContent))

	classifier := &classify.Classifier{StrictDecoding: true}
	result := classifier.Classify(filePath)

	if result.Classification != types.ClassificationIncludedFull {
		testingInstance.Fatalf("classification = %q, expected %q", result.Classification, types.ClassificationIncludedFull)
	}
	if result.Content != fileContent {
		testingInstance.Fatalf("content = %q, expected original text", result.Content)
	}
	if result.Encoding != "utf-8" {
		testingInstance.Fatalf("encoding = %q, expected utf-8", result.Encoding)
	}
}

// TestClassifyBinaryDetection verifies the binary heuristics: known extension,
// NUL byte, and the shebang exception for extensionless scripts.
func TestClassifyBinaryDetection(testingInstance *testing.T) {
	testCases := []struct {
		name                   string
		fileName               string
		rawContent             []byte
		expectedClassification types.FileClassification
	}{
		{
			name:                   "BinaryExtension",
			fileName:               "photo.png",
			rawContent:             []byte("not actually image data"),
			expectedClassification: types.ClassificationExcludedBinary,
		},
		{
			name:                   "NulByteInHeader",
			fileName:               "blob.dat",
			rawContent:             []byte{'a', 'b', 0x00, 'c'},
			expectedClassification: types.ClassificationExcludedBinary,
		},
		{
			name:                   "ShebangOverridesNulByte",
			fileName:               "deploy",
			rawContent:             append([]byte("#!/bin/sh\n"), 0x00),
			expectedClassification: types.ClassificationIncludedFull,
		},
		{
			name:                   "PlainExtensionlessText",
			fileName:               "Makefile",
			rawContent:             []byte("all:\n\ttrue\n"),
			expectedClassification: types.ClassificationIncludedFull,
		},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			filePath := writeTestFile(subtestInstance, testCase.fileName, testCase.rawContent)
			classifier := &classify.Classifier{}
			result := classifier.Classify(filePath)
			if result.Classification != testCase.expectedClassification {
				subtestInstance.Fatalf("classification = %q, expected %q", result.Classification, testCase.expectedClassification)
			}
			if testCase.expectedClassification == types.ClassificationExcludedBinary &&
				result.Content != "[Binary file content omitted]\n" {
				subtestInstance.Fatalf("binary placeholder = %q", result.Content)
			}
		})
	}
}

// TestClassifyDataFileTruncation verifies tabular files keep only their
// leading lines with a visible truncation marker.
func TestClassifyDataFileTruncation(testingInstance *testing.T) {
	var contentBuilder strings.Builder
	for rowIndex := 0; rowIndex < 500; rowIndex++ {
		fmt.Fprintf(&contentBuilder, "row%d,value%d\n", rowIndex, rowIndex)
	}
	filePath := writeTestFile(testingInstance, "table.csv", []byte(contentBuilder.String()))

	classifier := &classify.Classifier{}
	result := classifier.Classify(filePath)

	if result.Classification != types.ClassificationIncludedTruncated {
		testingInstance.Fatalf("classification = %q, expected %q", result.Classification, types.ClassificationIncludedTruncated)
	}
	keptLines := strings.Count(result.Content, "\n")
	if !strings.Contains(result.Content, "row4,value4") || strings.Contains(result.Content, "row5,value5") {
		testingInstance.Fatalf("expected exactly the first 5 rows, got %d newline-terminated lines", keptLines)
	}
	if !strings.Contains(result.Content, "[... truncated .csv ...]") {
		testingInstance.Fatalf("expected truncation marker, got %q", result.Content)
	}
}

// TestClassifyShortDataFileHasNoMarker verifies a data file within its line
// limit is kept verbatim.
func TestClassifyShortDataFileHasNoMarker(testingInstance *testing.T) {
	fileContent := "a,b\n1,2\n"
	filePath := writeTestFile(testingInstance, "small.csv", []byte(fileContent))

	classifier := &classify.Classifier{}
	result := classifier.Classify(filePath)

	if result.Classification != types.ClassificationIncludedTruncated {
		testingInstance.Fatalf("classification = %q, expected %q", result.Classification, types.ClassificationIncludedTruncated)
	}
	if result.Content != fileContent {
		testingInstance.Fatalf("content = %q, expected verbatim short data file", result.Content)
	}
}

// TestClassifyEmptyDataFile verifies the empty data snippet placeholder.
func TestClassifyEmptyDataFile(testingInstance *testing.T) {
	filePath := writeTestFile(testingInstance, "empty.log", nil)

	classifier := &classify.Classifier{}
	result := classifier.Classify(filePath)

	if result.Classification != types.ClassificationIncludedTruncated {
		testingInstance.Fatalf("classification = %q, expected %q", result.Classification, types.ClassificationIncludedTruncated)
	}
	if result.Content != "[Data snippet from empty.log]" {
		testingInstance.Fatalf("content = %q", result.Content)
	}
}

// TestClassifyUnreadableFile verifies a read failure becomes an unreadable
// result with a placeholder rather than an abort.
func TestClassifyUnreadableFile(testingInstance *testing.T) {
	missingPath := filepath.Join(testingInstance.TempDir(), "missing.txt")

	classifier := &classify.Classifier{}
	result := classifier.Classify(missingPath)

	if result.Classification != types.ClassificationUnreadable {
		testingInstance.Fatalf("classification = %q, expected %q", result.Classification, types.ClassificationUnreadable)
	}
	if !strings.HasPrefix(result.ErrorMessage, "Error reading file: ") {
		testingInstance.Fatalf("error message = %q", result.ErrorMessage)
	}
	if !strings.HasPrefix(result.Content, "[Error reading file: ") {
		testingInstance.Fatalf("content placeholder = %q", result.Content)
	}
}

// TestClassifyStrictDecodingSkips verifies invalid bytes past the probe window
// produce an unreadable result in strict mode and a decoded result otherwise.
func TestClassifyStrictDecodingSkips(testingInstance *testing.T) {
	rawContent := make([]byte, 0, 5000)
	for len(rawContent) < 4096 {
		rawContent = append(rawContent, []byte("ascii padding line\n")...)
	}
	rawContent = append(rawContent, 0xC0, 0xC1)
	filePath := writeTestFile(testingInstance, "mixed.txt", rawContent)

	strictClassifier := &classify.Classifier{StrictDecoding: true}
	strictResult := strictClassifier.Classify(filePath)
	if strictResult.Classification != types.ClassificationUnreadable {
		testingInstance.Fatalf("strict classification = %q, expected %q", strictResult.Classification, types.ClassificationUnreadable)
	}

	lenientClassifier := &classify.Classifier{StrictDecoding: false}
	lenientResult := lenientClassifier.Classify(filePath)
	if lenientResult.Classification != types.ClassificationIncludedFull {
		testingInstance.Fatalf("lenient classification = %q, expected %q", lenientResult.Classification, types.ClassificationIncludedFull)
	}
}
