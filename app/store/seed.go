package store

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// minJobs is the smallest job collection kept as is, anything shorter is replaced by the seed
const minJobs = 12

//go:embed seed.yml
var seedData []byte

// seedJobs decodes the embedded sample catalog
func seedJobs() ([]Job, error) {
	var seed struct {
		Jobs []Job `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(seedData, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed jobs: %w", err)
	}
	if len(seed.Jobs) < minJobs {
		return nil, fmt.Errorf("seed has %d jobs, at least %d required", len(seed.Jobs), minJobs)
	}
	for i, j := range seed.Jobs {
		if _, err := ParsePosition(string(j.Position)); err != nil {
			return nil, fmt.Errorf("seed job %d: %w", i+1, err)
		}
	}
	return seed.Jobs, nil
}
