// Package config loads the import manifest and the fixed biological
// vocabularies (interaction-type meanings, GAF aspect codes) from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Import           ImportConfig      `yaml:"import"`
	InteractionTypes map[string]string `yaml:"interaction_types"`
	AspectMap        map[string]string `yaml:"aspect_map"`
}

type ImportConfig struct {
	PathwayFiles []string `yaml:"pathway_files"`
	GAFPath      string   `yaml:"gaf_path"`
	Evidence     string   `yaml:"evidence"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in vocabularies; entries in a loaded file
// override matching defaults.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			Evidence: "from KGML",
		},
		InteractionTypes: map[string]string{
			"PPrel":   "protein-protein interaction",
			"GErel":   "gene expression interaction",
			"PCrel":   "protein-compound interaction",
			"ECrel":   "enzyme-enzyme relation",
			"maplink": "link to another pathway map",
		},
		AspectMap: map[string]string{
			"P": "biological process",
			"F": "molecular function",
			"C": "cellular component",
		},
	}
}
