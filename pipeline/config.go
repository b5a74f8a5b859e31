package pipeline

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/greenwatch/ndvi-broker/composite"
)

// ThresholdsConfig overrides parts of the default strategy chain
// tuning. Omitted fields keep their defaults.
type ThresholdsConfig struct {
	Strict              *float64 `yaml:"strict"`
	Relaxed             *float64 `yaml:"relaxed"`
	MinCoverage         *float64 `yaml:"min_coverage"`
	WindowExpansionDays *int     `yaml:"window_expansion_days"`
}

// Config describes one pipeline run
type Config struct {
	ROIPath    string  `yaml:"roi_path"`
	SourceEPSG int     `yaml:"source_epsg"`
	FirstYear  int     `yaml:"first_year"`
	LastYear   int     `yaml:"last_year"`
	Semesters  bool    `yaml:"semesters"`
	Provider   string  `yaml:"provider"`
	OutputDir  string  `yaml:"output_dir"`
	Resolution float64 `yaml:"resolution"`
	Baseline   string  `yaml:"baseline"`
	Upload     bool    `yaml:"upload"`

	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// LoadConfig reads and validates a YAML run configuration
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %v", path, err)
	}

	return config, config.Validate()
}

// Validate fills defaults and rejects configurations the run could
// not survive
func (c *Config) Validate() error {
	if c.ROIPath == "" {
		return fmt.Errorf("config is missing roi_path")
	}
	if c.SourceEPSG == 0 {
		c.SourceEPSG = 4326
	}
	if c.FirstYear == 0 || c.LastYear == 0 {
		return fmt.Errorf("config must set first_year and last_year")
	}
	if c.LastYear < c.FirstYear {
		return fmt.Errorf("last_year %d precedes first_year %d", c.LastYear, c.FirstYear)
	}
	if c.Provider == "" {
		c.Provider = "earthapi"
	}
	if c.Provider != "earthapi" && c.Provider != "localindex" {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %v", c.Resolution)
	}
	return nil
}

// BuilderThresholds resolves the configured overrides against the
// defaults
func (c *Config) BuilderThresholds() composite.Thresholds {
	thresholds := composite.DefaultThresholds()
	if c.Thresholds.Strict != nil {
		thresholds.Strict = *c.Thresholds.Strict
	}
	if c.Thresholds.Relaxed != nil {
		thresholds.Relaxed = *c.Thresholds.Relaxed
	}
	if c.Thresholds.MinCoverage != nil {
		thresholds.MinCoverage = *c.Thresholds.MinCoverage
	}
	if c.Thresholds.WindowExpansionDays != nil {
		thresholds.WindowExpansionDays = *c.Thresholds.WindowExpansionDays
	}
	return thresholds
}
