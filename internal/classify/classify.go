// Package classify decides how a file's content enters the dump: in full,
// truncated, omitted as binary, or recorded as unreadable.
package classify

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/dumpcode/internal/textenc"
	"github.com/temirov/dumpcode/internal/types"
)

const (
	// headerProbeSize is the number of leading bytes inspected before a full
	// read is paid for.
	headerProbeSize = 8192

	// binaryContentPlaceholder replaces the content of detected binary files.
	binaryContentPlaceholder = "[Binary file content omitted]\n"

	// readErrorFormat produces the placeholder recorded for unreadable files.
	readErrorFormat = "Error reading file: %v"

	// truncationMarkerFormat is appended when a data file is cut short.
	truncationMarkerFormat = "\n[... truncated %s ...]\n"

	// emptyDataSnippetFormat stands in for a data file with no content.
	emptyDataSnippetFormat = "[Data snippet from %s]"
)

var shebangPrefix = []byte("#!")

// binaryExtensions lists extensions always treated as binary without
// inspecting content.
var binaryExtensions = map[string]struct{}{
	".pyc": {}, ".pyo": {}, ".so": {}, ".dll": {}, ".exe": {}, ".bin": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".zip": {}, ".pdf": {},
	".pyd": {}, ".ico": {}, ".tar": {}, ".gz": {}, ".7z": {}, ".mp3": {},
	".mp4": {}, ".avi": {}, ".mov": {}, ".wav": {}, ".ogg": {}, ".flac": {},
	".webm": {}, ".mkv": {}, ".woff": {}, ".woff2": {},
}

// dataExtensionLineLimits maps tabular and log extensions to the number of
// leading lines preserved in the dump.
var dataExtensionLineLimits = map[string]int{
	".csv":   5,
	".jsonl": 5,
	".log":   10,
}

// Result is the outcome of classifying and reading one file.
type Result struct {
	Classification types.FileClassification
	Content        string
	Encoding       string
	ErrorMessage   string
}

// Classifier classifies file content ahead of the full read cost.
type Classifier struct {
	// StrictDecoding propagates decode failures instead of resolving them
	// silently through the fallback chain.
	StrictDecoding bool
}

// Classify inspects the file at filePath and returns its classification
// together with the content destined for the dump. Read failures yield an
// unreadable result with a placeholder message; they never abort a scan.
func (classifier *Classifier) Classify(filePath string) Result {
	extension := strings.ToLower(filepath.Ext(filePath))

	if lineLimit, isDataExtension := dataExtensionLineLimits[extension]; isDataExtension {
		return truncateDataFile(filePath, extension, lineLimit)
	}

	header, headerError := readHeader(filePath)
	if headerError != nil {
		return unreadableResult(headerError)
	}

	if isBinaryContent(filePath, extension, header) {
		return Result{
			Classification: types.ClassificationExcludedBinary,
			Content:        binaryContentPlaceholder,
		}
	}

	rawBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		return unreadableResult(readError)
	}

	decodedText, encodingName, decodeError := textenc.Decode(rawBytes, classifier.StrictDecoding)
	if decodeError != nil {
		return unreadableResult(decodeError)
	}

	return Result{
		Classification: types.ClassificationIncludedFull,
		Content:        decodedText,
		Encoding:       encodingName,
	}
}

// isBinaryContent applies the binary heuristics: a known binary extension or
// a NUL byte in the header marks the file binary, except that a shebang line
// forces text treatment because extensionless scripts are common and valuable.
func isBinaryContent(filePath string, extension string, header []byte) bool {
	if bytes.HasPrefix(header, shebangPrefix) {
		return false
	}
	if _, isBinaryExtension := binaryExtensions[extension]; isBinaryExtension {
		return true
	}
	return bytes.IndexByte(header, 0) >= 0
}

// truncateDataFile keeps the first lineLimit lines of a data file and appends
// a visible truncation marker when content was cut.
func truncateDataFile(filePath string, extension string, lineLimit int) Result {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return unreadableResult(openError)
	}
	defer fileHandle.Close()

	keptLines := make([]string, 0, lineLimit)
	hasMoreContent := false
	reachedEndOfFile := false
	lineReader := bufio.NewReader(fileHandle)
	for len(keptLines) < lineLimit && !reachedEndOfFile {
		line, readError := lineReader.ReadString('\n')
		if line != "" {
			keptLines = append(keptLines, line)
		}
		if readError == io.EOF {
			reachedEndOfFile = true
		} else if readError != nil {
			return unreadableResult(readError)
		}
	}
	if !reachedEndOfFile {
		nextLine, readError := lineReader.ReadString('\n')
		if nextLine != "" {
			hasMoreContent = true
		}
		if readError != nil && readError != io.EOF {
			return unreadableResult(readError)
		}
	}

	if len(keptLines) == 0 {
		return Result{
			Classification: types.ClassificationIncludedTruncated,
			Content:        fmt.Sprintf(emptyDataSnippetFormat, filepath.Base(filePath)),
		}
	}

	content := strings.Join(keptLines, "")
	if hasMoreContent {
		content += fmt.Sprintf(truncationMarkerFormat, extension)
	}
	return Result{
		Classification: types.ClassificationIncludedTruncated,
		Content:        content,
	}
}

// readHeader returns up to headerProbeSize leading bytes of the file.
func readHeader(filePath string) ([]byte, error) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, headerProbeSize)
	bytesRead, readError := fileHandle.Read(buffer)
	if readError != nil && readError != io.EOF {
		return nil, readError
	}
	return buffer[:bytesRead], nil
}

func unreadableResult(cause error) Result {
	message := fmt.Sprintf(readErrorFormat, cause)
	return Result{
		Classification: types.ClassificationUnreadable,
		Content:        "[" + message + "]",
		ErrorMessage:   message,
	}
}
