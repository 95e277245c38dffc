package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceInvalidTemplate    = "invalid value %q: expected one of %s"
	choiceListSeparator      = ", "
	choiceValueType          = "string"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// AddChoiceFlag registers a string flag that only accepts one of choices, compared case-insensitively.
// The target keeps its current value until the flag is supplied; defaultChoice only decorates the usage text.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	flagSet.Var(&choiceValue{target: target, choices: normalizeChoices(choices)}, name, FormatChoiceUsage(defaultChoice, choices, description))
}

type choiceValue struct {
	target  *string
	choices []string
}

func (value *choiceValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	for _, choice := range value.choices {
		if choice == normalizedValue {
			*value.target = normalizedValue
			return nil
		}
	}
	return fmt.Errorf(choiceInvalidTemplate, rawValue, strings.Join(value.choices, choiceListSeparator))
}

func (value *choiceValue) String() string {
	if value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceValue) Type() string {
	return choiceValueType
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		normalized = append(normalized, normalizedChoice)
	}
	return normalized
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	for _, choice := range normalizeChoices(choices) {
		if choice == normalizedDefault {
			highlighted = append(highlighted, strings.ToUpper(choice))
			continue
		}
		highlighted = append(highlighted, choice)
	}
	return highlighted
}
