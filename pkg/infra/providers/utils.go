package providers

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

func FormatInstructions(instr []string) string {
	var b strings.Builder
	b.WriteString("[Instrucciones]\n")
	for _, rule := range instr {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeOptions decodes provider-specific options into out, leaving out
// untouched when options is empty.
func DecodeOptions(options map[string]any, out any) error {
	if len(options) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}
