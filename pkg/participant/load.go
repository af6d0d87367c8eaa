package participant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type registryFile struct {
	Participants []Participant `yaml:"participants"`
}

// LoadFile reads the YAML participant registry at path and returns a
// populated directory. Any invalid entry fails the whole load; a directory
// with a half-applied registry is worse than no directory.
func LoadFile(path string) (*Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read participants file: %w", err)
	}

	var reg registryFile
	if err := yaml.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("parse participants file: %w", err)
	}
	if len(reg.Participants) == 0 {
		return nil, fmt.Errorf("participants file %s contains no participants", path)
	}

	dir := NewDirectory()
	for _, p := range reg.Participants {
		if err := dir.Register(p); err != nil {
			return nil, err
		}
	}
	return dir, nil
}
