// Package shell executes profile diagnostic commands and formats their
// output for inclusion in the execution layer of a dump.
package shell

import (
	"fmt"
	"os/exec"
	"strings"
)

const (
	commandHeaderFormat = "--- COMMAND: %s ---"
	commandFooter       = "--------------------------"
	executionFailedTag  = "[Execution Failed]"

	// crashedExitCode is reported when the command could not be started at
	// all, as opposed to running and exiting non-zero.
	crashedExitCode = -1
)

// CommandResult captures the outcome of one external shell command.
type CommandResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Error    string
}

// Runner executes a shell command and returns its result. Declared as a
// function type so the engine can be tested without spawning processes.
type Runner func(command string) CommandResult

// Run executes command through the shell, capturing exit code and output. A
// crashed command (for example a missing shell) is reported in the result
// rather than returned as an error: diagnostic output is wanted even when
// the tooling is broken.
func Run(command string) CommandResult {
	// #nosec G204 -- commands come from the user's own profile configuration.
	shellCommand := exec.Command("sh", "-c", command)
	var stdoutBuilder, stderrBuilder strings.Builder
	shellCommand.Stdout = &stdoutBuilder
	shellCommand.Stderr = &stderrBuilder

	runError := shellCommand.Run()
	result := CommandResult{
		Command: command,
		Stdout:  stdoutBuilder.String(),
		Stderr:  stderrBuilder.String(),
	}
	if runError == nil {
		result.ExitCode = 0
		return result
	}
	if exitError, isExitError := runError.(*exec.ExitError); isExitError {
		result.ExitCode = exitError.ExitCode()
		return result
	}
	result.ExitCode = crashedExitCode
	result.Error = runError.Error()
	return result
}

// FormattedOutput renders the result as a delimited block for the dump.
func (result CommandResult) FormattedOutput() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(commandHeaderFormat, result.Command) + "\n")

	if result.Error != "" {
		builder.WriteString(executionFailedTag + ": " + result.Error + "\n")
		builder.WriteString(commandFooter)
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("Exit Code: %d\n", result.ExitCode))
	if trimmedStdout := strings.TrimSpace(result.Stdout); trimmedStdout != "" {
		builder.WriteString("STDOUT:\n" + trimmedStdout + "\n")
	}
	if trimmedStderr := strings.TrimSpace(result.Stderr); trimmedStderr != "" {
		builder.WriteString("STDERR:\n" + trimmedStderr + "\n")
	}
	builder.WriteString(commandFooter)
	return builder.String()
}
