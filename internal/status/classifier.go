package status

import (
	"fmt"
	"sort"
	"strings"
)

const (
	untrackedStatusCodeConstant = "??"
	modifiedStatusCodeConstant  = "M"
	deletedStatusCodeConstant   = "D"
	addedStatusCodeConstant     = "A"
	renamedStatusCodeConstant   = "R"
	copiedStatusCodeConstant    = "C"
	unmergedStatusCodeConstant  = "U"

	noChangesLineTemplateConstant     = "%s - no changes..."
	knownCodeLineTemplateConstant     = "\t%s: %d"
	unknownCodeLineTemplateConstant   = "\t%s = %d"
	statusOutputLineSeparatorConstant = "\n"
)

type knownStatusCode struct {
	code  string
	label string
}

// knownStatusCodes fixes the display order of recognized codes.
var knownStatusCodes = []knownStatusCode{
	{code: untrackedStatusCodeConstant, label: "Untracked"},
	{code: modifiedStatusCodeConstant, label: "Modified"},
	{code: deletedStatusCodeConstant, label: "Deleted"},
	{code: addedStatusCodeConstant, label: "Added"},
	{code: renamedStatusCodeConstant, label: "Renamed"},
	{code: copiedStatusCodeConstant, label: "Copied"},
	{code: unmergedStatusCodeConstant, label: "Unmerged"},
}

// Tally counts porcelain status codes for one repository.
type Tally map[string]int

// ParseTally counts the first whitespace-delimited token of every non-blank line.
func ParseTally(output string) Tally {
	tally := Tally{}
	for _, line := range strings.Split(output, statusOutputLineSeparatorConstant) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		tally[fields[0]]++
	}
	return tally
}

// UnknownCodes returns the tallied codes outside the known set, sorted.
func (tally Tally) UnknownCodes() []string {
	unknownCodes := make([]string, 0)
	for code := range tally {
		if !isKnownStatusCode(code) {
			unknownCodes = append(unknownCodes, code)
		}
	}
	sort.Strings(unknownCodes)
	return unknownCodes
}

// RenderSummary produces the display lines for a repository tally.
//
// A repository without entries renders as a single "no changes" line. Otherwise the
// repository header is followed by known codes in fixed order and then unknown codes.
func RenderSummary(repository string, tally Tally) []string {
	if len(tally) == 0 {
		return []string{fmt.Sprintf(noChangesLineTemplateConstant, repository)}
	}

	summaryLines := []string{repository}
	for _, knownCode := range knownStatusCodes {
		if count, present := tally[knownCode.code]; present {
			summaryLines = append(summaryLines, fmt.Sprintf(knownCodeLineTemplateConstant, knownCode.label, count))
		}
	}
	for _, unknownCode := range tally.UnknownCodes() {
		summaryLines = append(summaryLines, fmt.Sprintf(unknownCodeLineTemplateConstant, unknownCode, tally[unknownCode]))
	}
	return summaryLines
}

func isKnownStatusCode(code string) bool {
	for _, knownCode := range knownStatusCodes {
		if knownCode.code == code {
			return true
		}
	}
	return false
}
