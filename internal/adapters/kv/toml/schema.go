package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Records []recordSchema `toml:"records"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type recordSchema struct {
	Key       string `toml:"key"`
	Value     string `toml:"value"`
	UpdatedAt string `toml:"updated_at,omitempty"`
}
