// Package config loads, validates, and persists the per-project dump
// configuration: ignore patterns, prompt profiles, and the version counter.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/temirov/dumpcode/internal/utils"
)

const (
	// ConfigFileName is the per-project configuration file. It is always
	// excluded from the dump itself.
	ConfigFileName = ".dump_config.json"

	// DefaultOutputFileName receives the assembled dump unless overridden.
	DefaultOutputFileName = "codebase_dump.txt"

	// initialVersion is the version counter value of a fresh configuration.
	initialVersion = 1

	configIndent = "    "
)

// Profile is one named prompt profile. Pre text becomes the instructions
// layer, Post text the task layer, and RunCommands feed the execution block.
type Profile struct {
	Description string   `mapstructure:"description" json:"description,omitempty"`
	Pre         string   `mapstructure:"pre" json:"pre,omitempty"`
	Post        string   `mapstructure:"post" json:"post,omitempty"`
	RunCommands []string `mapstructure:"run_commands" json:"run_commands,omitempty"`
}

// Configuration is the persisted per-project configuration.
type Configuration struct {
	Version        int                `mapstructure:"version" json:"version"`
	IgnorePatterns []string           `mapstructure:"ignore_patterns" json:"ignore_patterns"`
	Profiles       map[string]Profile `mapstructure:"profiles" json:"profiles"`
	UseXML         bool               `mapstructure:"use_xml" json:"use_xml"`
}

// DefaultConfiguration returns the configuration used when no file exists.
func DefaultConfiguration() Configuration {
	return Configuration{
		Version: initialVersion,
		IgnorePatterns: []string{
			ConfigFileName, ".git", ".hg", ".svn", "node_modules", "vendor",
			"__pycache__", "*.pyc", "venv", ".venv", ".env", ".DS_Store",
			DefaultOutputFileName, ".idea", ".vscode", "dist",
			".pytest_cache", ".mypy_cache", ".ruff_cache", "*.egg-info",
			".gitignore", "LICENSE",
		},
		Profiles: DefaultProfiles(),
		UseXML:   true,
	}
}

// LoadOrCreate reads the configuration at rootPath, merging it over the
// defaults, and persists the merged result so new default profiles appear in
// the user's file. Persistence goes through the raw JSON document, so keys
// this version does not understand survive the round trip. A structurally
// invalid file is reported and replaced by the defaults rather than aborting
// the run.
func LoadOrCreate(rootPath string, resetVersion bool, logger *zap.Logger) Configuration {
	configuration := DefaultConfiguration()
	configPath := filepath.Join(rootPath, ConfigFileName)

	var rawDocument map[string]any
	configExists := false
	if rawContent, readError := os.ReadFile(configPath); readError == nil {
		configExists = true
		loaded, loadedDocument, loadError := decodeConfiguration(rawContent)
		switch {
		case loadError != nil:
			logger.Warn("Failed to read config: " + loadError.Error())
		case !loaded.Valid():
			logger.Warn("Config file has invalid structure, using defaults")
		default:
			configuration = configuration.merge(loaded)
			rawDocument = loadedDocument
		}
	}

	if resetVersion {
		configuration.Version = initialVersion
	}

	if configExists || IsSafeToCreateConfig(rootPath) {
		if saveError := configuration.saveInto(rootPath, rawDocument); saveError != nil {
			logger.Warn("Could not save config: " + saveError.Error())
		}
	}
	return configuration
}

// decodeConfiguration decodes raw configuration bytes twice: through viper
// into the typed form, and as a generic JSON document for lossless
// persistence.
func decodeConfiguration(rawContent []byte) (Configuration, map[string]any, error) {
	reader := viper.New()
	reader.SetConfigType("json")
	if readError := reader.ReadConfig(bytes.NewReader(rawContent)); readError != nil {
		return Configuration{}, nil, fmt.Errorf("read configuration: %w", readError)
	}
	var configuration Configuration
	if decodeError := reader.Unmarshal(&configuration); decodeError != nil {
		return Configuration{}, nil, fmt.Errorf("decode configuration: %w", decodeError)
	}
	var rawDocument map[string]any
	if decodeError := json.Unmarshal(rawContent, &rawDocument); decodeError != nil {
		return Configuration{}, nil, fmt.Errorf("decode configuration document: %w", decodeError)
	}
	return configuration, rawDocument, nil
}

// Valid performs the structural check applied to loaded configurations.
func (configuration Configuration) Valid() bool {
	if configuration.Version < initialVersion {
		return false
	}
	for _, profile := range configuration.Profiles {
		if profile.Description == "" && profile.Pre == "" && profile.Post == "" && len(profile.RunCommands) == 0 {
			return false
		}
	}
	return true
}

// merge overlays the loaded configuration onto the receiver. Loaded profiles
// are layered over the built-in ones so defaults stay available.
func (configuration Configuration) merge(loaded Configuration) Configuration {
	result := configuration
	result.Version = loaded.Version
	result.UseXML = loaded.UseXML
	if len(loaded.IgnorePatterns) > 0 {
		result.IgnorePatterns = utils.DeduplicatePatterns(loaded.IgnorePatterns)
	}
	if len(loaded.Profiles) > 0 {
		mergedProfiles := make(map[string]Profile, len(result.Profiles)+len(loaded.Profiles))
		for profileName, profile := range result.Profiles {
			mergedProfiles[profileName] = profile
		}
		for profileName, profile := range loaded.Profiles {
			mergedProfiles[profileName] = profile
		}
		result.Profiles = mergedProfiles
	}
	return result
}

// Save writes the configuration as indented JSON at rootPath.
func (configuration Configuration) Save(rootPath string) error {
	return configuration.saveInto(rootPath, nil)
}

// saveInto persists the configuration over rawDocument, the file's previous
// JSON form. Known fields are overwritten; everything else in the document,
// including profile entries and their legacy keys, is written back untouched.
func (configuration Configuration) saveInto(rootPath string, rawDocument map[string]any) error {
	document := rawDocument
	if document == nil {
		document = make(map[string]any)
	}
	document["version"] = configuration.Version
	document["ignore_patterns"] = configuration.IgnorePatterns
	document["use_xml"] = configuration.UseXML

	profilesDocument, _ := document["profiles"].(map[string]any)
	if profilesDocument == nil {
		profilesDocument = make(map[string]any)
	}
	for profileName, profile := range configuration.Profiles {
		// Profiles already present keep their raw form so keys this
		// version does not model survive the round trip.
		if _, alreadyPresent := profilesDocument[profileName]; alreadyPresent {
			continue
		}
		encodedProfile, encodeError := encodeProfile(profile)
		if encodeError != nil {
			return encodeError
		}
		profilesDocument[profileName] = encodedProfile
	}
	document["profiles"] = profilesDocument

	return writeConfigDocument(rootPath, document)
}

// encodeProfile converts a profile into its generic JSON document form.
func encodeProfile(profile Profile) (map[string]any, error) {
	encodedProfile, encodeError := json.Marshal(profile)
	if encodeError != nil {
		return nil, fmt.Errorf("encoding profile: %w", encodeError)
	}
	var profileDocument map[string]any
	if decodeError := json.Unmarshal(encodedProfile, &profileDocument); decodeError != nil {
		return nil, fmt.Errorf("encoding profile: %w", decodeError)
	}
	return profileDocument, nil
}

// writeConfigDocument writes a configuration document as indented JSON.
func writeConfigDocument(rootPath string, document map[string]any) error {
	encodedDocument, encodeError := json.MarshalIndent(document, "", configIndent)
	if encodeError != nil {
		return fmt.Errorf("encoding configuration: %w", encodeError)
	}
	configPath := filepath.Join(rootPath, ConfigFileName)
	if writeError := os.WriteFile(configPath, append(encodedDocument, '\n'), 0o644); writeError != nil {
		return fmt.Errorf("writing %s: %w", configPath, writeError)
	}
	return nil
}

// IncrementVersion bumps the persisted version counter after a successful
// dump. Unknown keys in the user's file are preserved.
func IncrementVersion(rootPath string, logger *zap.Logger) {
	configPath := filepath.Join(rootPath, ConfigFileName)
	rawConfiguration, readError := os.ReadFile(configPath)
	if readError != nil {
		return
	}

	var configurationDocument map[string]any
	if decodeError := json.Unmarshal(rawConfiguration, &configurationDocument); decodeError != nil {
		logger.Warn("Could not increment config version: " + decodeError.Error())
		return
	}

	nextVersion := initialVersion
	if currentVersion, hasVersion := configurationDocument["version"].(float64); hasVersion {
		nextVersion = int(currentVersion) + 1
	}
	configurationDocument["version"] = nextVersion

	if writeError := writeConfigDocument(rootPath, configurationDocument); writeError != nil {
		logger.Warn("Could not increment config version: " + writeError.Error())
	}
}

// IsSafeToCreateConfig reports whether rootPath is an acceptable location for
// a new configuration file. Sensitive system directories and the user's home
// directory root are refused to prevent accidental file creation.
func IsSafeToCreateConfig(rootPath string) bool {
	absolutePath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return false
	}
	absolutePath = filepath.Clean(absolutePath)

	if absolutePath == string(filepath.Separator) {
		return false
	}
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && absolutePath == filepath.Clean(homeDirectory) {
		return false
	}

	sensitivePrefixes := []string{"/bin", "/sbin", "/etc", "/usr", "/var", "/boot", "/dev", "/root"}
	for _, sensitivePrefix := range sensitivePrefixes {
		if absolutePath == sensitivePrefix || strings.HasPrefix(absolutePath, sensitivePrefix+string(filepath.Separator)) {
			return false
		}
	}
	return true
}
