package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CompareProfile is the YAML shape accepted by verify --profile. It names
// the columns to mask and optionally restricts which tables are checked.
//
//	ignore:
//	  - created_at
//	  - updated_at
//	tables:
//	  - users
//	  - posts
type CompareProfile struct {
	Ignore []string `yaml:"ignore"`
	Tables []string `yaml:"tables"`
}

// loadProfile reads and parses a compare profile file.
func loadProfile(path string) (*CompareProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile CompareProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &profile, nil
}
