package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// InteractiveInit guides the user through creating a configuration file. The
// reader and writer are injected so the wizard can be tested without a TTY.
func InteractiveInit(rootPath string, input io.Reader, output io.Writer) error {
	lineReader := bufio.NewReader(input)
	configPath := filepath.Join(rootPath, ConfigFileName)

	if _, statError := os.Stat(configPath); statError == nil {
		fmt.Fprintf(output, "%s already exists. Overwrite? (y/N): ", ConfigFileName)
		answer, _ := lineReader.ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return nil
		}
	}

	configuration := DefaultConfiguration()

	fmt.Fprint(output, "Add extra ignore patterns (comma separated, e.g. node_modules,build): ")
	extraPatterns, _ := lineReader.ReadString('\n')
	for _, pattern := range strings.Split(extraPatterns, ",") {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern != "" {
			configuration.IgnorePatterns = append(configuration.IgnorePatterns, trimmedPattern)
		}
	}

	fmt.Fprint(output, "Use XML tags by default? (recommended for LLMs) [Y/n]: ")
	xmlAnswer, _ := lineReader.ReadString('\n')
	configuration.UseXML = !strings.EqualFold(strings.TrimSpace(xmlAnswer), "n")

	if saveError := configuration.Save(rootPath); saveError != nil {
		return saveError
	}
	fmt.Fprintf(output, "Created %s\n", configPath)
	return nil
}
