// Package types defines every cross-package data structure used by the dumpcode CLI.
package types

const (
	NodeKindFile      = "file"
	NodeKindDirectory = "directory"

	FormatXML   = "xml"
	FormatPlain = "plain"
)

// FileClassification labels how the scanner treated a single node.
type FileClassification string

const (
	// ClassificationIncludedFull marks a text file whose content is dumped in full.
	ClassificationIncludedFull FileClassification = "included-full"
	// ClassificationIncludedTruncated marks a data file reduced to its first lines.
	ClassificationIncludedTruncated FileClassification = "included-truncated"
	// ClassificationExcludedIgnored marks a node removed by ignore patterns.
	ClassificationExcludedIgnored FileClassification = "excluded-ignored"
	// ClassificationExcludedBinary marks a file whose content was detected as binary.
	ClassificationExcludedBinary FileClassification = "excluded-binary"
	// ClassificationUnreadable marks a file that could not be read or decoded.
	ClassificationUnreadable FileClassification = "unreadable"
)

// FileNode is one entry produced by the scanner. Nodes are created during the
// single scan pass and are not mutated after their classification is assigned.
type FileNode struct {
	RelativePath    string
	Name            string
	Kind            string
	Depth           int
	IsLastSibling   bool
	AncestorIsLast  []bool
	SizeBytes       int64
	Classification  FileClassification
	Content         string
	Encoding        string
	ErrorMessage    string
	IsRecursiveLink bool
}

// ScanResult holds the ordered node sequence for one scan of a directory tree.
// Nodes appear in pre-order: directories precede their children and sibling
// ordering is deterministic across runs on an unchanged tree.
type ScanResult struct {
	RootPath       string
	Nodes          []*FileNode
	DirectoryCount int
	FileCount      int
	ExcludedCount  int
}

// ClassificationCounts aggregates the per-classification totals of a scan so a
// summary printer can report them.
func (scanResult *ScanResult) ClassificationCounts() map[FileClassification]int {
	counts := make(map[FileClassification]int)
	for _, node := range scanResult.Nodes {
		if node.Kind != NodeKindFile {
			continue
		}
		if node.Classification == "" {
			continue
		}
		counts[node.Classification]++
	}
	return counts
}

// SkippedFile records a file left out of the dump together with the reason.
type SkippedFile struct {
	Path   string
	Reason string
}

// FileEntry is one path/content pair handed to the assembler.
type FileEntry struct {
	Path    string
	Content string
}
