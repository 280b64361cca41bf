package planner

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBankYAML []byte

// StarterQuestion is one fixed question from the bank.
type StarterQuestion struct {
	Text string `yaml:"text"`
	Type string `yaml:"type"`
}

// Bank holds the fixed starter questions plus the topic-agnostic behavioral
// questions used when generation is unavailable.
type Bank struct {
	Starters   []StarterQuestion `yaml:"starters"`
	Behavioral []string          `yaml:"behavioral"`
}

// DefaultBank returns the built-in question bank.
func DefaultBank() (*Bank, error) {
	return parseBank(defaultBankYAML)
}

// LoadBank reads a question bank from a YAML file, falling back to the
// built-in bank when path is empty.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return parseBank(data)
}

func parseBank(data []byte) (*Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if len(bank.Starters) == 0 {
		return nil, fmt.Errorf("question bank has no starter questions")
	}
	if len(bank.Behavioral) == 0 {
		return nil, fmt.Errorf("question bank has no behavioral questions")
	}
	return &bank, nil
}
