// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dumpcode/internal/commands"
	"github.com/temirov/dumpcode/internal/config"
	"github.com/temirov/dumpcode/internal/utils"
)

const (
	rootUse              = "dumpcode [startpath]"
	rootShortDescription = "dumpcode assembles a structured snapshot of a project tree for LLM consumption"
	rootLongDescription  = `dumpcode walks a project tree, applies gitignore-compatible exclusion rules,
classifies file contents, and assembles a layered document: instructions,
dump (tree plus file contents), task. Prompt profiles defined in ` + config.ConfigFileName + `
appear as additional flags.`

	levelFlagName         = "level"
	dirOnlyFlagName       = "dir-only"
	structureOnlyFlagName = "structure-only"
	changedFlagName       = "changed"
	ignoreErrorsFlagName  = "ignore-errors"
	outputFileFlagName    = "output-file"
	noCopyFlagName        = "no-copy"
	noXMLFlagName         = "no-xml"
	resetVersionFlagName  = "reset-version"
	questionFlagName      = "question"
	initFlagName          = "init"
	verboseFlagName       = "verbose"
	versionFlagName       = "version"

	levelFlagDescription         = "maximum traversal depth (negative for unlimited)"
	dirOnlyFlagDescription       = "only include directory structure"
	structureOnlyFlagDescription = "directory tree only, no file contents"
	changedFlagDescription       = "only dump files with version-control changes"
	ignoreErrorsFlagDescription  = "resolve encoding problems silently instead of skipping files"
	outputFileFlagDescription    = "output file path"
	noCopyFlagDescription        = "disable clipboard delivery"
	noXMLFlagDescription         = "use plain text delimiters instead of XML tags"
	resetVersionFlagDescription  = "reset the version counter to 1"
	questionFlagDescription      = "post-dump instruction (overrides the profile task)"
	initFlagDescription          = "interactive configuration setup"
	verboseFlagDescription       = "show detailed processing logs"
	versionFlagDescription       = "display application version"

	versionTemplate = "dumpcode version: %s\n"
	defaultPath     = "."

	unlimitedDepth = -1

	profileCollisionWarningFormat = "Warning: profile %q conflicts with a built-in flag; rename it in %s to use it.\n"
)

// rootFlagValues collects the static flag targets of the root command.
type rootFlagValues struct {
	maxDepth      int
	dirOnly       bool
	structureOnly bool
	changed       bool
	ignoreErrors  bool
	outputFile    string
	noCopy        bool
	noXML         bool
	resetVersion  bool
	question      string
	runInit       bool
	verbose       bool
	showVersion   bool
}

// Execute runs the dumpcode application.
func Execute() error {
	startPath := peekStartPath(os.Args[1:])
	rootCommand := createRootCommand(startPath)
	return rootCommand.Execute()
}

// peekStartPath extracts the positional start path before cobra parsing so
// profile flags can be registered from that directory's configuration.
func peekStartPath(arguments []string) string {
	for _, argumentValue := range arguments {
		if strings.HasPrefix(argumentValue, "-") {
			break
		}
		return argumentValue
	}
	return defaultPath
}

// createRootCommand builds the root command, including one boolean flag per
// profile discovered in the start path's configuration. The profile registry
// is built once per run; there is no global mutable flag state.
func createRootCommand(startPath string) *cobra.Command {
	var flagValues rootFlagValues
	profileFlagValues := make(map[string]*bool)

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if flagValues.showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			resolvedStartPath := defaultPath
			if len(arguments) > 0 {
				resolvedStartPath = arguments[0]
			}
			return run(resolvedStartPath, flagValues, profileFlagValues)
		},
	}

	rootFlags := rootCommand.Flags()
	rootFlags.IntVarP(&flagValues.maxDepth, levelFlagName, "L", unlimitedDepth, levelFlagDescription)
	rootFlags.BoolVarP(&flagValues.dirOnly, dirOnlyFlagName, "d", false, dirOnlyFlagDescription)
	rootFlags.BoolVar(&flagValues.structureOnly, structureOnlyFlagName, false, structureOnlyFlagDescription)
	rootFlags.BoolVar(&flagValues.changed, changedFlagName, false, changedFlagDescription)
	rootFlags.BoolVar(&flagValues.ignoreErrors, ignoreErrorsFlagName, false, ignoreErrorsFlagDescription)
	rootFlags.StringVarP(&flagValues.outputFile, outputFileFlagName, "o", config.DefaultOutputFileName, outputFileFlagDescription)
	rootFlags.BoolVar(&flagValues.noCopy, noCopyFlagName, false, noCopyFlagDescription)
	rootFlags.BoolVar(&flagValues.noXML, noXMLFlagName, false, noXMLFlagDescription)
	rootFlags.BoolVar(&flagValues.resetVersion, resetVersionFlagName, false, resetVersionFlagDescription)
	rootFlags.StringVarP(&flagValues.question, questionFlagName, "q", "", questionFlagDescription)
	rootFlags.BoolVar(&flagValues.runInit, initFlagName, false, initFlagDescription)
	rootFlags.BoolVarP(&flagValues.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	rootFlags.BoolVar(&flagValues.showVersion, versionFlagName, false, versionFlagDescription)

	registerProfileFlags(rootCommand, startPath, profileFlagValues)
	return rootCommand
}

// registerProfileFlags adds one flag per configured profile. Profiles whose
// flag name collides with a built-in flag are skipped with a warning.
func registerProfileFlags(rootCommand *cobra.Command, startPath string, profileFlagValues map[string]*bool) {
	configuration := config.LoadOrCreate(startPath, false, zap.NewNop())

	profileNames := make([]string, 0, len(configuration.Profiles))
	for profileName := range configuration.Profiles {
		profileNames = append(profileNames, profileName)
	}
	sort.Strings(profileNames)

	for _, profileName := range profileNames {
		flagName := strings.ReplaceAll(profileName, "_", "-")
		if rootCommand.Flags().Lookup(flagName) != nil {
			fmt.Fprintf(os.Stderr, profileCollisionWarningFormat, profileName, config.ConfigFileName)
			continue
		}
		description := configuration.Profiles[profileName].Description
		if description == "" {
			description = "run the " + profileName + " profile"
		}
		profileFlagValues[profileName] = rootCommand.Flags().Bool(flagName, false, description)
	}
}

// run resolves the final settings and executes the engine.
func run(startPath string, flagValues rootFlagValues, profileFlagValues map[string]*bool) error {
	if flagValues.runInit {
		return config.InteractiveInit(startPath, os.Stdin, os.Stdout)
	}

	logger, loggerError := utils.NewApplicationLogger(flagValues.verbose)
	if loggerError != nil {
		return fmt.Errorf("initializing logger: %w", loggerError)
	}
	defer logger.Sync()

	configuration := config.LoadOrCreate(startPath, flagValues.resetVersion, logger)

	settings := commands.Settings{
		StartPath:         startPath,
		OutputFile:        flagValues.outputFile,
		MaxDepth:          flagValues.maxDepth,
		DirectoriesOnly:   flagValues.dirOnly,
		StructureOnly:     flagValues.structureOnly,
		ChangedOnly:       flagValues.changed,
		IgnoreErrors:      flagValues.ignoreErrors,
		NoCopy:            flagValues.noCopy,
		UseXML:            configuration.UseXML && !flagValues.noXML,
		Question:          flagValues.question,
		ActiveProfileName: selectedProfileName(profileFlagValues),
	}

	engine := commands.NewEngine(configuration, settings, logger)
	return engine.Run()
}

// selectedProfileName returns the first selected profile in name order.
func selectedProfileName(profileFlagValues map[string]*bool) string {
	profileNames := make([]string, 0, len(profileFlagValues))
	for profileName := range profileFlagValues {
		profileNames = append(profileNames, profileName)
	}
	sort.Strings(profileNames)

	for _, profileName := range profileNames {
		if profileFlagValues[profileName] != nil && *profileFlagValues[profileName] {
			return profileName
		}
	}
	return ""
}
