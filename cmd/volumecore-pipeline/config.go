package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gandhilab/volumecore/dvid"
)

// pipelineConfig is the TOML schema for a single pipeline run, styled
// after the teacher's server.tomlConfig: a nested struct decoded in one
// pass via toml.DecodeFile, with a nested dvid.LogConfig section
// reused verbatim rather than redeclaring logging fields locally.
type pipelineConfig struct {
	Logging dvid.LogConfig
	Input   volumeConfig
	Output  volumeConfig
	Stage   []stageConfig
}

type volumeConfig struct {
	Filename    string
	Shape       [3]int64
	ElementType string `toml:"element_type"`
}

// stageConfig describes one pipeline step. Not every field applies to
// every Op; unused fields are simply left at their zero value.
type stageConfig struct {
	Op string

	Radius  float64
	PreBlur bool

	Value float64

	Min int64
	Max int64

	Compactness float64
	WSL         bool
	Invert      bool

	K         float64
	Threshold float64
}

// loadConfig reads and decodes a pipeline TOML file, per LoadConfig in
// the teacher's server/config.go.
func loadConfig(filename string) (*pipelineConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("no pipeline TOML configuration file provided")
	}
	var cfg pipelineConfig
	if _, err := toml.DecodeFile(filename, &cfg); err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %w", err)
	}
	if _, err := os.Stat(cfg.Input.Filename); err != nil {
		return nil, fmt.Errorf("input file %q: %w", cfg.Input.Filename, err)
	}
	return &cfg, nil
}
