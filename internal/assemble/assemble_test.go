package assemble_test

import (
	"strings"
	"testing"

	"github.com/temirov/dumpcode/internal/assemble"
	"github.com/temirov/dumpcode/internal/types"
)

const sampleTree = "Project Root: /workspace/project\nproject/\n└── main.go\n"

// TestRenderXMLLayerOrdering verifies the sandwich ordering in XML mode:
// instructions, dump, execution, task.
func TestRenderXMLLayerOrdering(testingInstance *testing.T) {
	document := assemble.Document{
		Instructions:    "Act as a reviewer.",
		TreeText:        sampleTree,
		Files:           []types.FileEntry{{Path: "main.go", Content: "package main\n"}},
		ExecutionOutput: "--- COMMAND: go vet ./... ---",
		Task:            "Summarize the findings.",
		Version:         7,
		Format:          types.FormatXML,
	}

	documentText := document.Render()

	markers := []string{
		"<instructions>",
		`<dump version="7">`,
		"<tree>",
		"<files>",
		`<file path="main.go">`,
		"</dump>",
		"<execution>",
		"<task>",
	}
	lastIndex := -1
	for _, marker := range markers {
		markerIndex := strings.Index(documentText, marker)
		if markerIndex < 0 {
			testingInstance.Fatalf("marker %q missing from document:\n%s", marker, documentText)
		}
		if markerIndex < lastIndex {
			testingInstance.Fatalf("marker %q out of order in document:\n%s", marker, documentText)
		}
		lastIndex = markerIndex
	}
}

// TestRenderXMLEscaping verifies file content and attribute escaping so code
// containing angle brackets cannot break the document structure.
func TestRenderXMLEscaping(testingInstance *testing.T) {
	document := assemble.Document{
		TreeText: sampleTree,
		Files: []types.FileEntry{{
			Path:    `odd"name.go`,
			Content: "if a < b && b > c {\n}\n",
		}},
		Version: 1,
		Format:  types.FormatXML,
	}

	documentText := document.Render()
	if !strings.Contains(documentText, `path="odd&quot;name.go"`) {
		testingInstance.Fatalf("expected quote escaping in attribute, got:\n%s", documentText)
	}
	if !strings.Contains(documentText, "if a &lt; b &amp;&amp; b &gt; c {") {
		testingInstance.Fatalf("expected escaped content, got:\n%s", documentText)
	}
}

// TestRenderXMLEmptyLayers verifies empty prompt layers disappear and an empty
// file set renders its placeholder.
func TestRenderXMLEmptyLayers(testingInstance *testing.T) {
	document := assemble.Document{
		TreeText: sampleTree,
		Version:  1,
		Format:   types.FormatXML,
	}

	documentText := document.Render()
	if strings.Contains(documentText, "<instructions>") || strings.Contains(documentText, "<task>") {
		testingInstance.Fatalf("expected empty prompt layers to be omitted:\n%s", documentText)
	}
	if !strings.Contains(documentText, "[No files found]") {
		testingInstance.Fatalf("expected the empty files placeholder:\n%s", documentText)
	}
}

// TestRenderXMLSkippedFilesComment verifies skipped files appear as an XML
// comment inside the dump element.
func TestRenderXMLSkippedFilesComment(testingInstance *testing.T) {
	document := assemble.Document{
		TreeText: sampleTree,
		Skipped: []types.SkippedFile{
			{Path: "weird.bin", Reason: "Error reading file: invalid byte"},
		},
		Version: 3,
		Format:  types.FormatXML,
	}

	documentText := document.Render()
	commentIndex := strings.Index(documentText, "<!-- Skipped Files Summary:")
	dumpCloseIndex := strings.Index(documentText, "</dump>")
	if commentIndex < 0 || dumpCloseIndex < 0 || commentIndex > dumpCloseIndex {
		testingInstance.Fatalf("expected skipped comment inside the dump element:\n%s", documentText)
	}
	if !strings.Contains(documentText, "- weird.bin: Error reading file: invalid byte") {
		testingInstance.Fatalf("expected skipped entry line:\n%s", documentText)
	}
}

// TestRenderXMLOmitFiles verifies structure-only documents keep an empty
// files element without the placeholder.
func TestRenderXMLOmitFiles(testingInstance *testing.T) {
	document := assemble.Document{
		TreeText:  sampleTree,
		Files:     []types.FileEntry{{Path: "main.go", Content: "package main\n"}},
		Version:   1,
		Format:    types.FormatXML,
		OmitFiles: true,
	}

	documentText := document.Render()
	if strings.Contains(documentText, "<file path=") {
		testingInstance.Fatalf("expected file bodies to be omitted:\n%s", documentText)
	}
	if !strings.Contains(documentText, "<files>") {
		testingInstance.Fatalf("expected the files element to remain:\n%s", documentText)
	}
}

// TestRenderPlainLayerOrdering verifies the plain banner layout.
func TestRenderPlainLayerOrdering(testingInstance *testing.T) {
	document := assemble.Document{
		Instructions: "Act as a reviewer.",
		TreeText:     sampleTree,
		Files:        []types.FileEntry{{Path: "main.go", Content: "package main"}},
		Skipped:      []types.SkippedFile{{Path: "junk.bin", Reason: "binary"}},
		Task:         "Summarize.",
		Version:      2,
		Format:       types.FormatPlain,
	}

	documentText := document.Render()
	markers := []string{
		"===== INSTRUCTIONS =====",
		"===== DUMP (version 2) =====",
		"----- TREE -----",
		"----- FILES -----",
		"--- FILE: main.go ---",
		"----- SKIPPED FILES -----",
		"===== TASK =====",
	}
	lastIndex := -1
	for _, marker := range markers {
		markerIndex := strings.Index(documentText, marker)
		if markerIndex < 0 {
			testingInstance.Fatalf("marker %q missing from document:\n%s", marker, documentText)
		}
		if markerIndex < lastIndex {
			testingInstance.Fatalf("marker %q out of order in document:\n%s", marker, documentText)
		}
		lastIndex = markerIndex
	}
	if !strings.Contains(documentText, "package main\n") {
		testingInstance.Fatal("expected a newline terminator after unterminated file content")
	}
	if strings.Contains(documentText, "&lt;") {
		testingInstance.Fatal("plain mode must not escape content")
	}
}
