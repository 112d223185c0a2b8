// Package scanner walks a directory tree, consults the ignore matcher per
// entry, and produces an ordered node set with per-node classification.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/dumpcode/internal/classify"
	"github.com/temirov/dumpcode/internal/ignore"
	"github.com/temirov/dumpcode/internal/types"
)

// ErrRootUnavailable reports that the scan root does not exist or cannot be
// read. There is no partial result to return in that case.
var ErrRootUnavailable = errors.New("scan root is unavailable")

const (
	recursiveLinkAnnotation    = "[Recursive Link]"
	permissionDeniedAnnotation = "[Permission Denied]"

	// contentReadConcurrency bounds parallel file reads. Node ordering is
	// fixed before reads start, so completion order never affects output.
	contentReadConcurrency = 8
)

// Options carries the per-run scan settings.
type Options struct {
	// MaxDepth limits traversal depth; a negative value means unlimited.
	MaxDepth int
	// DirectoriesOnly omits file entries from the result entirely.
	DirectoriesOnly bool
	// StructureOnly keeps file entries but never reads their bytes.
	StructureOnly bool
	// ChangedOnly restricts eligible files to ChangedFiles.
	ChangedOnly bool
	// ChangedFiles lists root-relative slash paths reported by version control.
	ChangedFiles []string
}

// Scanner performs a depth-first pre-order traversal of a directory tree.
type Scanner struct {
	Matcher    *ignore.Matcher
	Classifier *classify.Classifier
	Options    Options
}

// Scan traverses rootPath and returns the ordered node set. Excluded
// directories are pruned entirely: their listing is suppressed and their
// subtrees are never walked, so no negation pattern can re-include a
// descendant of an excluded ancestor.
func (projectScanner *Scanner) Scan(rootPath string) (*types.ScanResult, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf("resolving scan root %s: %w", rootPath, ErrRootUnavailable)
	}
	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil || !rootInfo.IsDir() {
		return nil, fmt.Errorf("scan root %s: %w", absoluteRootPath, ErrRootUnavailable)
	}

	scanResult := &types.ScanResult{RootPath: absoluteRootPath}
	changedFileSet := projectScanner.changedFileSet()
	visitedDirectories := make(map[string]struct{})

	annotation, _ := projectScanner.scanDirectory(absoluteRootPath, "", 0, nil, scanResult, changedFileSet, visitedDirectories)
	if annotation != "" {
		return nil, fmt.Errorf("scan root %s: %s: %w", absoluteRootPath, annotation, ErrRootUnavailable)
	}
	return scanResult, nil
}

// scanDirectory lists one directory and recurses into eligible children. The
// returned annotation is non-empty when the directory itself could not be
// listed; the second value reports a recursive symlink.
func (projectScanner *Scanner) scanDirectory(
	absoluteDirectoryPath string,
	relativeDirectoryPath string,
	depth int,
	ancestorIsLast []bool,
	scanResult *types.ScanResult,
	changedFileSet map[string]struct{},
	visitedDirectories map[string]struct{},
) (string, bool) {
	if projectScanner.Options.MaxDepth >= 0 && depth > projectScanner.Options.MaxDepth {
		return "", false
	}

	resolvedPath, resolveError := filepath.EvalSymlinks(absoluteDirectoryPath)
	if resolveError == nil {
		if _, alreadyVisited := visitedDirectories[resolvedPath]; alreadyVisited {
			return recursiveLinkAnnotation, true
		}
		visitedDirectories[resolvedPath] = struct{}{}
	}

	directoryEntries, readDirectoryError := os.ReadDir(absoluteDirectoryPath)
	if readDirectoryError != nil {
		if os.IsPermission(readDirectoryError) {
			return permissionDeniedAnnotation, false
		}
		if os.IsNotExist(readDirectoryError) {
			return "", false
		}
		return permissionDeniedAnnotation, false
	}

	eligibleEntries := projectScanner.selectEligibleEntries(directoryEntries, relativeDirectoryPath, changedFileSet, scanResult)

	for entryIndex, directoryEntry := range eligibleEntries {
		isLastSibling := entryIndex == len(eligibleEntries)-1
		entryRelativePath := path.Join(relativeDirectoryPath, directoryEntry.Name())
		entryAbsolutePath := filepath.Join(absoluteDirectoryPath, directoryEntry.Name())

		node := &types.FileNode{
			RelativePath:   entryRelativePath,
			Name:           directoryEntry.Name(),
			Depth:          depth,
			IsLastSibling:  isLastSibling,
			AncestorIsLast: append([]bool(nil), ancestorIsLast...),
		}

		if directoryEntry.IsDir() {
			node.Kind = types.NodeKindDirectory
			scanResult.Nodes = append(scanResult.Nodes, node)
			scanResult.DirectoryCount++

			childAncestors := append(append([]bool(nil), ancestorIsLast...), isLastSibling)
			annotation, isRecursive := projectScanner.scanDirectory(
				entryAbsolutePath, entryRelativePath, depth+1, childAncestors,
				scanResult, changedFileSet, visitedDirectories,
			)
			node.ErrorMessage = annotation
			node.IsRecursiveLink = isRecursive
			continue
		}

		node.Kind = types.NodeKindFile
		if entryInfo, infoError := directoryEntry.Info(); infoError == nil {
			node.SizeBytes = entryInfo.Size()
		}
		scanResult.Nodes = append(scanResult.Nodes, node)
		scanResult.FileCount++
	}

	return "", false
}

// selectEligibleEntries filters and orders the raw directory listing:
// excluded entries are dropped, directories sort before files, and each group
// is ordered case-insensitively so repeated runs produce identical output.
func (projectScanner *Scanner) selectEligibleEntries(
	directoryEntries []os.DirEntry,
	relativeDirectoryPath string,
	changedFileSet map[string]struct{},
	scanResult *types.ScanResult,
) []os.DirEntry {
	var eligibleDirectories []os.DirEntry
	var eligibleFiles []os.DirEntry

	for _, directoryEntry := range directoryEntries {
		entryRelativePath := path.Join(relativeDirectoryPath, directoryEntry.Name())
		if projectScanner.Matcher != nil && projectScanner.Matcher.IsExcluded(entryRelativePath, directoryEntry.IsDir()) {
			scanResult.ExcludedCount++
			continue
		}
		if directoryEntry.IsDir() {
			eligibleDirectories = append(eligibleDirectories, directoryEntry)
			continue
		}
		if projectScanner.Options.DirectoriesOnly {
			continue
		}
		if projectScanner.Options.ChangedOnly {
			if _, isChanged := changedFileSet[entryRelativePath]; !isChanged {
				continue
			}
		}
		eligibleFiles = append(eligibleFiles, directoryEntry)
	}

	sortEntriesByName(eligibleDirectories)
	sortEntriesByName(eligibleFiles)
	return append(eligibleDirectories, eligibleFiles...)
}

// LoadContents reads and classifies every file node of the result. Reads run
// in parallel with bounded concurrency; each worker writes only its own node,
// and the pre-established node order keeps the output deterministic.
func (projectScanner *Scanner) LoadContents(scanResult *types.ScanResult) error {
	if projectScanner.Options.DirectoriesOnly || projectScanner.Options.StructureOnly {
		return nil
	}

	var workGroup errgroup.Group
	workGroup.SetLimit(contentReadConcurrency)
	for _, node := range scanResult.Nodes {
		if node.Kind != types.NodeKindFile {
			continue
		}
		fileNode := node
		workGroup.Go(func() error {
			classification := projectScanner.Classifier.Classify(filepath.Join(scanResult.RootPath, filepath.FromSlash(fileNode.RelativePath)))
			fileNode.Classification = classification.Classification
			fileNode.Content = classification.Content
			fileNode.Encoding = classification.Encoding
			fileNode.ErrorMessage = classification.ErrorMessage
			return nil
		})
	}
	return workGroup.Wait()
}

func (projectScanner *Scanner) changedFileSet() map[string]struct{} {
	if !projectScanner.Options.ChangedOnly {
		return nil
	}
	changedFileSet := make(map[string]struct{}, len(projectScanner.Options.ChangedFiles))
	for _, changedFile := range projectScanner.Options.ChangedFiles {
		changedFileSet[filepath.ToSlash(changedFile)] = struct{}{}
	}
	return changedFileSet
}

// sortEntriesByName orders entries case-insensitively with the raw name as a
// deterministic tie-break.
func sortEntriesByName(directoryEntries []os.DirEntry) {
	sort.Slice(directoryEntries, func(firstIndex, secondIndex int) bool {
		firstName := strings.ToLower(directoryEntries[firstIndex].Name())
		secondName := strings.ToLower(directoryEntries[secondIndex].Name())
		if firstName == secondName {
			return directoryEntries[firstIndex].Name() < directoryEntries[secondIndex].Name()
		}
		return firstName < secondName
	})
}
