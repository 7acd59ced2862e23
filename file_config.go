package cog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML form of a run configuration. Pointer fields are
// optional; unset fields leave the Config untouched.
type FileConfig struct {
	Data          string   `yaml:"data"`
	Clusters      *int     `yaml:"clusters"`
	TargetIR      *float64 `yaml:"target_ir"`
	MinorityLabel *int     `yaml:"minority_label"`
	Patience      *int     `yaml:"patience"`
	Seed          *int64   `yaml:"seed"`
	Workers       *int     `yaml:"workers"`

	Tree struct {
		MaxDepth        int `yaml:"max_depth"`
		MinSamplesSplit int `yaml:"min_samples_split"`
		MinSamplesLeaf  int `yaml:"min_samples_leaf"`
	} `yaml:"tree"`

	KMeans struct {
		NInit   int `yaml:"n_init"`
		MaxIter int `yaml:"max_iter"`
	} `yaml:"kmeans"`

	SMOTE struct {
		Neighbors int `yaml:"neighbors"`
	} `yaml:"smote"`
}

// LoadFileConfig reads a YAML run configuration.
func LoadFileConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cog: read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("cog: parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply overlays the set fields onto cfg. Collaborator sections build the
// default collaborators with the given settings, seeded from cfg.Seed after
// the overlay.
func (fc *FileConfig) Apply(cfg *Config) {
	if fc.Clusters != nil {
		cfg.Clusters = *fc.Clusters
	}
	if fc.TargetIR != nil {
		cfg.TargetIR = *fc.TargetIR
	}
	if fc.MinorityLabel != nil {
		cfg.MinorityLabel = *fc.MinorityLabel
	}
	if fc.Patience != nil {
		cfg.Patience = *fc.Patience
	}
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}

	if fc.Tree.MaxDepth != 0 || fc.Tree.MinSamplesSplit != 0 || fc.Tree.MinSamplesLeaf != 0 {
		dt := NewDecisionTree()
		dt.MaxDepth = fc.Tree.MaxDepth
		if fc.Tree.MinSamplesSplit != 0 {
			dt.MinSamplesSplit = fc.Tree.MinSamplesSplit
		}
		if fc.Tree.MinSamplesLeaf != 0 {
			dt.MinSamplesLeaf = fc.Tree.MinSamplesLeaf
		}
		dt.Workers = cfg.Workers
		cfg.Classifier = dt
	}
	if fc.KMeans.NInit != 0 || fc.KMeans.MaxIter != 0 {
		km := NewKMeans(cfg.Seed)
		if fc.KMeans.NInit != 0 {
			km.NInit = fc.KMeans.NInit
		}
		if fc.KMeans.MaxIter != 0 {
			km.MaxIter = fc.KMeans.MaxIter
		}
		km.Workers = cfg.Workers
		cfg.Clusterer = km
	}
	if fc.SMOTE.Neighbors != 0 {
		sm := NewSMOTE(cfg.Seed)
		sm.Neighbors = fc.SMOTE.Neighbors
		cfg.Generator = sm
	}
}
