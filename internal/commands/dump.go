// Package commands contains the orchestration logic for the dump run: scan,
// render, assemble, deliver.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/dumpcode/internal/assemble"
	"github.com/temirov/dumpcode/internal/classify"
	"github.com/temirov/dumpcode/internal/config"
	"github.com/temirov/dumpcode/internal/gitstatus"
	"github.com/temirov/dumpcode/internal/ignore"
	"github.com/temirov/dumpcode/internal/render"
	"github.com/temirov/dumpcode/internal/scanner"
	"github.com/temirov/dumpcode/internal/services/clipboard"
	"github.com/temirov/dumpcode/internal/shell"
	"github.com/temirov/dumpcode/internal/tokenizer"
	"github.com/temirov/dumpcode/internal/types"
	"github.com/temirov/dumpcode/internal/utils"
)

const (
	// contextWarningThreshold triggers a warning when the estimated token
	// count approaches common context window limits.
	contextWarningThreshold = 180_000

	commandBlockSeparator = "\n\n"
)

// Settings carries the per-run parameters resolved by the CLI.
type Settings struct {
	StartPath         string
	OutputFile        string
	MaxDepth          int
	DirectoriesOnly   bool
	StructureOnly     bool
	ChangedOnly       bool
	IgnoreErrors      bool
	NoCopy            bool
	UseXML            bool
	Question          string
	ActiveProfileName string
}

// Engine orchestrates the dump process from traversal to delivery. Its
// collaborators are injected so tests can replace process-spawning and
// clipboard access.
type Engine struct {
	Configuration  config.Configuration
	Settings       Settings
	Logger         *zap.Logger
	Clipboard      clipboard.Copier
	ChangedFiles   func(rootPath string) []string
	CommandRunner  shell.Runner
	TokenEstimator tokenizer.Estimator
}

// NewEngine builds an Engine with the default collaborators.
func NewEngine(configuration config.Configuration, settings Settings, logger *zap.Logger) *Engine {
	return &Engine{
		Configuration:  configuration,
		Settings:       settings,
		Logger:         logger,
		Clipboard:      clipboard.NewService(),
		ChangedFiles:   gitstatus.ListChangedFiles,
		CommandRunner:  shell.Run,
		TokenEstimator: tokenizer.NewEstimator(),
	}
}

// Run executes the complete dump: scan the tree, classify and read contents,
// assemble the sandwich document, write it out, and deliver it.
func (engine *Engine) Run() error {
	absoluteStartPath, startPathError := filepath.Abs(engine.Settings.StartPath)
	if startPathError != nil {
		return fmt.Errorf("resolving start path %s: %w", engine.Settings.StartPath, startPathError)
	}
	absoluteOutputPath, outputPathError := filepath.Abs(engine.Settings.OutputFile)
	if outputPathError != nil {
		return fmt.Errorf("resolving output path %s: %w", engine.Settings.OutputFile, outputPathError)
	}

	projectScanner, scannerError := engine.buildScanner(absoluteStartPath, absoluteOutputPath)
	if scannerError != nil {
		return scannerError
	}

	engine.Logger.Debug("Generating directory tree from: " + absoluteStartPath)
	scanResult, scanError := projectScanner.Scan(absoluteStartPath)
	if scanError != nil {
		return scanError
	}
	if contentsError := projectScanner.LoadContents(scanResult); contentsError != nil {
		return contentsError
	}
	engine.Logger.Debug(fmt.Sprintf("Tree generated: %d dirs, %d files", scanResult.DirectoryCount, scanResult.FileCount))

	activeProfile, hasActiveProfile := engine.Configuration.Profiles[engine.Settings.ActiveProfileName]

	document := assemble.Document{
		Instructions:    activeProfile.Pre,
		TreeText:        render.RenderTree(scanResult),
		Files:           collectFileEntries(scanResult),
		Skipped:         collectSkippedFiles(scanResult),
		ExecutionOutput: engine.runProfileCommands(activeProfile),
		Task:            engine.taskText(activeProfile),
		Version:         engine.Configuration.Version,
		Format:          engine.formatMode(),
		OmitFiles:       engine.Settings.StructureOnly || engine.Settings.DirectoriesOnly,
	}

	documentText := document.Render()
	if writeError := writeOutputFile(absoluteOutputPath, documentText); writeError != nil {
		return writeError
	}

	engine.finalize(absoluteStartPath, absoluteOutputPath, scanResult, documentText, hasActiveProfile)
	return nil
}

// buildScanner compiles the matcher from config patterns and the project's
// gitignore file, then wires it into a scanner for this run. The config file
// and the output file are excluded permanently, overriding all user patterns.
func (engine *Engine) buildScanner(absoluteStartPath string, absoluteOutputPath string) (*scanner.Scanner, error) {
	configRules := ignore.CompileRules(engine.Configuration.IgnorePatterns, ignore.RuleOriginConfig)

	gitignorePath := filepath.Join(absoluteStartPath, ".gitignore")
	gitignoreRules, gitignoreError := ignore.ParseGitignoreFile(gitignorePath)
	if gitignoreError != nil {
		engine.Logger.Warn("Failed to read .gitignore: " + gitignoreError.Error())
	}

	forcedExclusions := []string{config.ConfigFileName, filepath.Base(absoluteOutputPath)}
	if outputRelativePath, relativeError := filepath.Rel(absoluteStartPath, absoluteOutputPath); relativeError == nil && !strings.HasPrefix(outputRelativePath, "..") {
		forcedExclusions = append(forcedExclusions, filepath.ToSlash(outputRelativePath))
	}

	scanOptions := scanner.Options{
		MaxDepth:        engine.Settings.MaxDepth,
		DirectoriesOnly: engine.Settings.DirectoriesOnly,
		StructureOnly:   engine.Settings.StructureOnly,
		ChangedOnly:     engine.Settings.ChangedOnly,
	}
	if engine.Settings.ChangedOnly {
		scanOptions.ChangedFiles = engine.ChangedFiles(absoluteStartPath)
		if len(scanOptions.ChangedFiles) == 0 {
			engine.Logger.Warn("No changed files reported by version control; the dump will contain no file contents")
		}
	}

	return &scanner.Scanner{
		Matcher:    ignore.NewMatcher(configRules, gitignoreRules, forcedExclusions),
		Classifier: &classify.Classifier{StrictDecoding: !engine.Settings.IgnoreErrors},
		Options:    scanOptions,
	}, nil
}

// runProfileCommands executes the active profile's diagnostic commands and
// concatenates their formatted output. Output is kept even for failing
// commands: linter errors are exactly what the consumer wants to see.
func (engine *Engine) runProfileCommands(activeProfile config.Profile) string {
	if len(activeProfile.RunCommands) == 0 {
		return ""
	}

	var formattedBlocks []string
	for _, command := range activeProfile.RunCommands {
		engine.Logger.Info("Running: " + command)
		commandResult := engine.CommandRunner(command)
		if commandResult.ExitCode != 0 {
			engine.Logger.Warn(fmt.Sprintf("Command failed (Exit Code %d): %s", commandResult.ExitCode, command))
		}
		formattedBlocks = append(formattedBlocks, commandResult.FormattedOutput())
	}
	return strings.Join(formattedBlocks, commandBlockSeparator)
}

// taskText picks the task layer: an explicit question overrides the profile.
func (engine *Engine) taskText(activeProfile config.Profile) string {
	if engine.Settings.Question != "" {
		return engine.Settings.Question
	}
	return activeProfile.Post
}

func (engine *Engine) formatMode() string {
	if engine.Settings.UseXML {
		return types.FormatXML
	}
	return types.FormatPlain
}

// finalize reports the run summary, estimates token usage, delivers the dump
// to the clipboard, and advances the persisted version counter.
func (engine *Engine) finalize(absoluteStartPath string, absoluteOutputPath string, scanResult *types.ScanResult, documentText string, hasActiveProfile bool) {
	engine.Logger.Info(fmt.Sprintf("Dumped to %s (Version %d, %s)", absoluteOutputPath, engine.Configuration.Version, utils.FormatFileSize(int64(len(documentText)))))
	engine.Logger.Info(fmt.Sprintf("Directories: %d, Files: %d, Excluded: %d", scanResult.DirectoryCount, scanResult.FileCount, scanResult.ExcludedCount))

	classificationCounts := scanResult.ClassificationCounts()
	if len(classificationCounts) > 0 {
		var countFragments []string
		for _, classification := range []types.FileClassification{
			types.ClassificationIncludedFull,
			types.ClassificationIncludedTruncated,
			types.ClassificationExcludedBinary,
			types.ClassificationUnreadable,
		} {
			if count := classificationCounts[classification]; count > 0 {
				countFragments = append(countFragments, fmt.Sprintf("%s: %d", classification, count))
			}
		}
		engine.Logger.Info("Classification: " + strings.Join(countFragments, ", "))
	}

	if hasActiveProfile {
		engine.Logger.Info(fmt.Sprintf("Profile %q prepended to output.", engine.Settings.ActiveProfileName))
	}
	if engine.Settings.ChangedOnly {
		engine.Logger.Info("Only dumping files with version-control changes")
	}

	estimatedTokens := engine.TokenEstimator.CountString(documentText)
	engine.Logger.Info(fmt.Sprintf("Estimated Context: %d tokens", estimatedTokens))
	if estimatedTokens > contextWarningThreshold {
		engine.Logger.Warn("This dump is approaching the 200k token context limit.")
	}

	if !engine.Settings.NoCopy {
		if copyError := engine.Clipboard.Copy(documentText); copyError != nil {
			if errors.Is(copyError, clipboard.ErrTooLarge) {
				engine.Logger.Warn("Dump too large for automatic clipboard copy.")
			} else {
				engine.Logger.Warn("Could not copy to clipboard: " + copyError.Error())
			}
		} else {
			engine.Logger.Info("Dump generated and copied to clipboard.")
		}
	}

	config.IncrementVersion(absoluteStartPath, engine.Logger)
}

// collectFileEntries gathers the path/content pairs destined for the files
// layer, preserving scan order.
func collectFileEntries(scanResult *types.ScanResult) []types.FileEntry {
	var fileEntries []types.FileEntry
	for _, node := range scanResult.Nodes {
		if node.Kind != types.NodeKindFile {
			continue
		}
		fileEntries = append(fileEntries, types.FileEntry{
			Path:    node.RelativePath,
			Content: node.Content,
		})
	}
	return fileEntries
}

// collectSkippedFiles lists files recorded as unreadable during the scan.
func collectSkippedFiles(scanResult *types.ScanResult) []types.SkippedFile {
	var skippedFiles []types.SkippedFile
	for _, node := range scanResult.Nodes {
		if node.Kind != types.NodeKindFile || node.Classification != types.ClassificationUnreadable {
			continue
		}
		skippedFiles = append(skippedFiles, types.SkippedFile{
			Path:   node.RelativePath,
			Reason: node.ErrorMessage,
		})
	}
	return skippedFiles
}

// writeOutputFile writes the document, creating parent directories on demand.
func writeOutputFile(absoluteOutputPath string, documentText string) error {
	outputDirectory := filepath.Dir(absoluteOutputPath)
	if mkdirError := os.MkdirAll(outputDirectory, 0o755); mkdirError != nil {
		return fmt.Errorf("creating output directory %s: %w", outputDirectory, mkdirError)
	}
	if writeError := os.WriteFile(absoluteOutputPath, []byte(documentText), 0o644); writeError != nil {
		return fmt.Errorf("writing dump to %s: %w", absoluteOutputPath, writeError)
	}
	return nil
}
