package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/manage_repos/internal/utils/path"
)

const (
	testHomeDirectoryConstant       = "/home/maintainer"
	testHomeExpanderSubtestTemplate = "%d_%s"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidatePath: "~/src/projects", expectedPath: filepath.Join(testHomeDirectoryConstant, "src", "projects")},
		{name: "absolute_path", candidatePath: "/srv/repos", expectedPath: "/srv/repos"},
		{name: "relative_path", candidatePath: "repos", expectedPath: "repos"},
		{name: "other_user", candidatePath: "~other/repos", expectedPath: "~other/repos"},
		{name: "empty", candidatePath: "", expectedPath: ""},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testHomeExpanderSubtestTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
				return testHomeDirectoryConstant, nil
			})
			expandedPath, expandError := expander.Expand(testCase.candidatePath)
			require.NoError(testInstance, expandError)
			require.Equal(testInstance, testCase.expectedPath, expandedPath)
		})
	}
}

func TestHomeExpanderReportsUnavailableHome(testInstance *testing.T) {
	lookupFailure := errors.New("no home")
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return "", lookupFailure
	})

	_, expandError := expander.Expand("~/repos")
	require.ErrorIs(testInstance, expandError, lookupFailure)

	unchangedPath, unchangedError := expander.Expand("/srv/repos")
	require.NoError(testInstance, unchangedError)
	require.Equal(testInstance, "/srv/repos", unchangedPath)

	_, repeatedError := expander.Expand("~")
	require.ErrorIs(testInstance, repeatedError, lookupFailure)
	require.Equal(testInstance, 1, lookupCount)
}

func TestHomeExpanderRejectsEmptyHome(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "  ", nil })
	_, expandError := expander.Expand("~")
	require.ErrorIs(testInstance, expandError, pathutils.ErrHomeDirectoryEmpty)
}
