// Package render turns a scan result into a connector-drawn ASCII tree.
package render

import (
	"path"
	"strings"

	"github.com/temirov/dumpcode/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	projectRootPrefix = "Project Root: "
)

// RenderTree renders the included node set into a deterministic ASCII
// hierarchy. Rendering the same ScanResult twice yields byte-identical text.
func RenderTree(scanResult *types.ScanResult) string {
	var builder strings.Builder

	rootPath := strings.ReplaceAll(scanResult.RootPath, "\\", "/")
	builder.WriteString(projectRootPrefix + rootPath + "\n")
	builder.WriteString(path.Base(rootPath) + "/\n")

	for _, node := range scanResult.Nodes {
		builder.WriteString(renderNodeLine(node))
		builder.WriteByte('\n')
	}
	return builder.String()
}

// renderNodeLine draws one tree line: padding for every ancestor level, the
// branch connector, the entry name, and an optional error annotation.
func renderNodeLine(node *types.FileNode) string {
	var lineBuilder strings.Builder

	for ancestorDepth := 0; ancestorDepth < node.Depth && ancestorDepth < len(node.AncestorIsLast); ancestorDepth++ {
		if node.AncestorIsLast[ancestorDepth] {
			lineBuilder.WriteString(treeLastPadding)
		} else {
			lineBuilder.WriteString(treeBranchPadding)
		}
	}

	if node.IsLastSibling {
		lineBuilder.WriteString(treeLastConnector)
	} else {
		lineBuilder.WriteString(treeBranchConnector)
	}

	lineBuilder.WriteString(node.Name)
	if node.Kind == types.NodeKindDirectory {
		lineBuilder.WriteString("/")
	}
	if node.ErrorMessage != "" && node.Kind == types.NodeKindDirectory {
		lineBuilder.WriteString(" " + node.ErrorMessage)
	}
	return lineBuilder.String()
}
