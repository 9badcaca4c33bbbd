// Package config carries run-level settings for a scoring run and loads
// provider credentials from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/attribench/attribench/internal/models"
)

// ScoringConfig bundles the suite spec with run-level overrides supplied
// on the command line.
type ScoringConfig struct {
	spec       *models.SuiteSpec
	suiteDir   string
	outputPath string
	verbose    bool
}

// Option configures a ScoringConfig.
type Option func(*ScoringConfig)

// WithSuiteDir sets the directory response paths resolve against.
func WithSuiteDir(dir string) Option {
	return func(c *ScoringConfig) { c.suiteDir = dir }
}

// WithOutputPath sets the JSON results file.
func WithOutputPath(path string) Option {
	return func(c *ScoringConfig) { c.outputPath = path }
}

// WithVerbose enables detailed progress output.
func WithVerbose(verbose bool) Option {
	return func(c *ScoringConfig) { c.verbose = verbose }
}

// NewScoringConfig creates a config for the given suite spec.
func NewScoringConfig(spec *models.SuiteSpec, opts ...Option) *ScoringConfig {
	c := &ScoringConfig{spec: spec}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *ScoringConfig) Spec() *models.SuiteSpec { return c.spec }
func (c *ScoringConfig) SuiteDir() string        { return c.suiteDir }
func (c *ScoringConfig) OutputPath() string      { return c.outputPath }
func (c *ScoringConfig) Verbose() bool           { return c.verbose }

// Credentials holds API keys for the model endpoints the collect command
// talks to.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// LoadCredentials reads provider credentials from the environment. A
// .env file in the working directory is loaded first when present,
// mirroring how the response collectors are usually run.
func LoadCredentials(keyVar, urlVar string) (Credentials, error) {
	// Missing .env is fine; explicit environment wins either way.
	_ = godotenv.Load()

	key := os.Getenv(keyVar)
	if key == "" {
		return Credentials{}, fmt.Errorf("missing %s in environment", keyVar)
	}

	return Credentials{
		APIKey:  key,
		BaseURL: os.Getenv(urlVar),
	}, nil
}
