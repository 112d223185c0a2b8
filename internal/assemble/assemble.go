// Package assemble combines the rendered tree, classified file contents, and
// externally supplied instruction and task text into the final layered
// document. The layering is always instructions, dump, task, regardless of
// the format mode.
package assemble

import (
	"fmt"
	"strings"

	"github.com/temirov/dumpcode/internal/types"
)

const (
	instructionsTagName = "instructions"
	taskTagName         = "task"

	noFilesPlaceholder = "    [No files found]\n"

	plainInstructionsBanner = "===== INSTRUCTIONS ====="
	plainDumpBannerFormat   = "===== DUMP (version %d) ====="
	plainTreeBanner         = "----- TREE -----"
	plainFilesBanner        = "----- FILES -----"
	plainFileBannerFormat   = "--- FILE: %s ---"
	plainSkippedBanner      = "----- SKIPPED FILES -----"
	plainExecutionBanner    = "===== EXECUTION ====="
	plainTaskBanner         = "===== TASK ====="
)

var (
	xmlTextEscaper      = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	xmlAttributeEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// Document carries every layer of the sandwich before rendering.
type Document struct {
	Instructions    string
	TreeText        string
	Files           []types.FileEntry
	Skipped         []types.SkippedFile
	ExecutionOutput string
	Task            string
	Version         int
	Format          string
	OmitFiles       bool
}

// Render produces the final document text in the configured format mode.
func (document Document) Render() string {
	if document.Format == types.FormatPlain {
		return document.renderPlain()
	}
	return document.renderXML()
}

func (document Document) renderXML() string {
	var builder strings.Builder

	writeXMLPromptBlock(&builder, instructionsTagName, document.Instructions)

	builder.WriteString(fmt.Sprintf("<dump version=\"%d\">\n", document.Version))

	builder.WriteString("  <tree>\n")
	for _, treeLine := range splitLines(document.TreeText) {
		builder.WriteString("    " + treeLine + "\n")
	}
	builder.WriteString("  </tree>\n")

	builder.WriteString("  <files>\n")
	if !document.OmitFiles {
		if len(document.Files) == 0 {
			builder.WriteString(noFilesPlaceholder)
		}
		for _, fileEntry := range document.Files {
			builder.WriteString(fmt.Sprintf("    <file path=\"%s\">\n", xmlAttributeEscaper.Replace(fileEntry.Path)))
			builder.WriteString(xmlTextEscaper.Replace(fileEntry.Content))
			builder.WriteString("\n    </file>\n")
		}
	}
	builder.WriteString("  </files>\n")

	if len(document.Skipped) > 0 {
		builder.WriteString("  <!-- Skipped Files Summary:\n")
		for _, skippedFile := range document.Skipped {
			builder.WriteString("    - " + skippedFile.Path + ": " + skippedFile.Reason + "\n")
		}
		builder.WriteString("  -->\n")
	}
	builder.WriteString("</dump>\n")

	if document.ExecutionOutput != "" {
		builder.WriteString("\n  <execution>\n")
		builder.WriteString(xmlTextEscaper.Replace(document.ExecutionOutput))
		builder.WriteString("\n  </execution>\n")
	}

	writeXMLPromptBlock(&builder, taskTagName, document.Task)
	return builder.String()
}

func (document Document) renderPlain() string {
	var builder strings.Builder

	if trimmedInstructions := strings.TrimSpace(document.Instructions); trimmedInstructions != "" {
		builder.WriteString(plainInstructionsBanner + "\n" + trimmedInstructions + "\n\n")
	}

	builder.WriteString(fmt.Sprintf(plainDumpBannerFormat, document.Version) + "\n")
	builder.WriteString(plainTreeBanner + "\n")
	for _, treeLine := range splitLines(document.TreeText) {
		builder.WriteString(treeLine + "\n")
	}

	builder.WriteString(plainFilesBanner + "\n")
	if !document.OmitFiles {
		for _, fileEntry := range document.Files {
			builder.WriteString(fmt.Sprintf(plainFileBannerFormat, fileEntry.Path) + "\n")
			builder.WriteString(fileEntry.Content)
			if !strings.HasSuffix(fileEntry.Content, "\n") {
				builder.WriteByte('\n')
			}
		}
	}

	if len(document.Skipped) > 0 {
		builder.WriteString(plainSkippedBanner + "\n")
		for _, skippedFile := range document.Skipped {
			builder.WriteString("- " + skippedFile.Path + ": " + skippedFile.Reason + "\n")
		}
	}

	if document.ExecutionOutput != "" {
		builder.WriteString("\n" + plainExecutionBanner + "\n" + document.ExecutionOutput + "\n")
	}

	if trimmedTask := strings.TrimSpace(document.Task); trimmedTask != "" {
		builder.WriteString("\n" + plainTaskBanner + "\n" + trimmedTask + "\n")
	}
	return builder.String()
}

// writeXMLPromptBlock wraps non-empty prompt text in the named tag.
func writeXMLPromptBlock(builder *strings.Builder, tagName string, promptText string) {
	trimmedText := strings.TrimSpace(promptText)
	if trimmedText == "" {
		return
	}
	builder.WriteString("\n<" + tagName + ">\n")
	builder.WriteString(xmlTextEscaper.Replace(trimmedText))
	builder.WriteString("\n</" + tagName + ">\n\n")
}

// splitLines splits rendered tree text into lines without a trailing empty
// element.
func splitLines(text string) []string {
	trimmedText := strings.TrimSuffix(text, "\n")
	if trimmedText == "" {
		return nil
	}
	return strings.Split(trimmedText, "\n")
}
