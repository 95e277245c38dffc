package cli

import (
	"bytes"
	_ "embed"
)

//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default configuration and its type.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(embeddedDefaultConfigurationContent), configurationTypeConstant
}
