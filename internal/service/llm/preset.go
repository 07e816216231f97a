package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed preset.yaml
var defaultPreset []byte

// Preset is the assistant persona: its system prompt and greeting.
type Preset struct {
	Name         string `yaml:"name"`
	Welcome      string `yaml:"welcome"`
	SystemPrompt string `yaml:"system_prompt"`
}

// DefaultPreset returns the built-in agriculture assistant preset.
func DefaultPreset() Preset {
	var p Preset
	if err := yaml.Unmarshal(defaultPreset, &p); err != nil {
		panic(fmt.Sprintf("llm: invalid embedded preset: %v", err))
	}
	return p
}

// LoadPreset reads a preset file. Fields left empty in the file keep the
// built-in values; an empty path returns the built-in preset.
func LoadPreset(path string) (Preset, error) {
	base := DefaultPreset()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Preset{}, fmt.Errorf("open preset: %w", err)
	}
	defer f.Close()

	var p Preset
	if err := yaml.NewDecoder(f).Decode(&p); err != nil {
		return Preset{}, fmt.Errorf("decode preset %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = base.Name
	}
	if p.Welcome == "" {
		p.Welcome = base.Welcome
	}
	if p.SystemPrompt == "" {
		p.SystemPrompt = base.SystemPrompt
	}
	return p, nil
}
