package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationGitExecutableConstant     = "git"
	integrationInitialBranchFlagConstant = "--initial-branch=master"
)

func runIntegrationCommand(testInstance *testing.T, repositoryRoot string, timeout time.Duration, arguments []string) string {
	testInstance.Helper()
	outputText, runError := executeIntegrationCommand(repositoryRoot, timeout, arguments)
	requireNoError(testInstance, runError, outputText)
	return outputText
}

func runFailingIntegrationCommand(testInstance *testing.T, repositoryRoot string, timeout time.Duration, arguments []string) string {
	testInstance.Helper()
	outputText, runError := executeIntegrationCommand(repositoryRoot, timeout, arguments)
	require.Error(testInstance, runError, outputText)
	return outputText
}

func executeIntegrationCommand(repositoryRoot string, timeout time.Duration, arguments []string) (string, error) {
	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", arguments...)
	command.Dir = repositoryRoot
	command.Env = os.Environ()

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func moduleRootDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func requireGitAvailable(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

// initializeRepository creates a repository with a single committed file.
func initializeRepository(testInstance *testing.T, repositoryPath string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))
	runGit(testInstance, repositoryPath, "init", integrationInitialBranchFlagConstant)
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, "README.md"), []byte("initial\n"), 0o600))
	runGit(testInstance, repositoryPath, "add", ".")
	runGit(testInstance, repositoryPath, "commit", "-m", "initial commit")
}

func runGit(testInstance *testing.T, repositoryPath string, arguments ...string) string {
	testInstance.Helper()
	command := exec.Command(integrationGitExecutableConstant, append([]string{"-C", repositoryPath}, arguments...)...)
	command.Env = os.Environ()
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return string(outputBytes)
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

func requireNoError(testInstance *testing.T, err error, output string) {
	testInstance.Helper()
	if err != nil {
		testInstance.Fatalf("command failed: %v\n%s", err, output)
	}
}
