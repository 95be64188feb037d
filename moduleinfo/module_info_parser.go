package moduleinfo

import (
	"io/ioutil"

	"github.com/osintlabs/lookup-api-go/config"
	"github.com/osintlabs/lookup-api-go/logger"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// FieldSpec names one payload key to surface on a card and the label to show it under.
type FieldSpec struct {
	Label string `yaml:"label"`
	Key   string `yaml:"key"`
}

// ModuleSpec is the display definition for one known IntelBase module.
type ModuleSpec struct {
	Fields []FieldSpec `yaml:"fields"`
}

type moduleInfoFile struct {
	Modules map[string]ModuleSpec `yaml:"modules"`
}

// Registry holds the display definitions for known modules. Modules without a
// definition fall back to the normalizer's generic field set. Immutable after load.
type Registry struct {
	modules map[string]ModuleSpec
}

// NewRegistry builds a Registry from an in-memory module map.
func NewRegistry(modules map[string]ModuleSpec) *Registry {
	if modules == nil {
		modules = map[string]ModuleSpec{}
	}
	return &Registry{modules: modules}
}

// Fields returns the ordered field specs for a module key.
func (r *Registry) Fields(moduleKey string) ([]FieldSpec, bool) {
	spec, ok := r.modules[moduleKey]
	return spec.Fields, ok
}

func parseRegistry(data []byte) (*Registry, error) {
	var parsed moduleInfoFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Modules), nil
}

// Load reads the module display definitions from the configured YAML file.
// A missing or unreadable file degrades to an empty registry so every module
// renders with the generic field set.
func Load() *Registry {
	specFilePath := config.GetConfig().Options.GetString(config.Keys.ModuleInfoYaml)
	specFile, err := ioutil.ReadFile(specFilePath)

	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "path": specFilePath}).Warn("could not read module info yaml, falling back to generic cards")
		return NewRegistry(nil)
	}

	registry, err := parseRegistry(specFile)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"error": err, "path": specFilePath}).Warn("could not parse module info yaml, falling back to generic cards")
		return NewRegistry(nil)
	}

	return registry
}
