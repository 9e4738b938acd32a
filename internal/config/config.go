// Package config loads battle parameters: built-in defaults, scenario
// file overlays, and environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"spacerobots2/internal/battle"
	"spacerobots2/internal/registry"
)

// DefaultScenarioName is the scenario every battle inherits from.
const DefaultScenarioName = "default"

// Defaults returns the built-in default scenario registry.
func Defaults() *registry.Registry {
	reg := registry.New()
	defaults := []struct{ key, value string }{
		{"width", "1600"},
		{"height", "1200"},
		{"startingCredits", "1000"},
		{"creditsPerTick", "1"},
		{"tickLimit", "50000"},
		{"powerCoreDropRate", "0.25"},
		{"powerCoreSpawnRate", "2.0"},
		{"minPowerCoreSpawn", "10"},
		{"maxPowerCoreSpawn", "20"},
		{"restrictedStart", "TRUE"},
		{"startingBases", "1"},
		{"startingFighters", "0"},
		{"baseVictory", "FALSE"},
	}
	for _, d := range defaults {
		reg.Put(d.key, d.value)
	}
	return reg
}

// ScenarioDir returns where scenario files live; overridable through
// the environment for tests and deployments.
func ScenarioDir() string {
	if dir := os.Getenv("SR2_SCENARIO_DIR"); dir != "" {
		return dir
	}
	return "scenarios"
}

// ScenarioPath returns the file path for a named scenario.
func ScenarioPath(dir, name string) string {
	return filepath.Join(dir, name+".sc")
}

// LoadScenario builds the scenario registry: built-in defaults, then
// the default scenario file if present, then the named overlay. A
// named scenario that doesn't exist is a configuration fault.
func LoadScenario(dir, name string) (*registry.Registry, error) {
	reg := Defaults()

	defaultPath := ScenarioPath(dir, DefaultScenarioName)
	if _, err := os.Stat(defaultPath); err == nil {
		if err := reg.LoadFile(defaultPath); err != nil {
			return nil, err
		}
	}

	if name != "" && name != DefaultScenarioName {
		path := ScenarioPath(dir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(err, "config: cannot access scenario %q", name)
		}
		if err := reg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// ParamsFromRegistry materializes battle parameters from a scenario
// registry. NumPlayers is the driver's to fill in per scenario.
func ParamsFromRegistry(reg *registry.Registry) battle.Params {
	return battle.Params{
		Width:              reg.GetFloat("width"),
		Height:             reg.GetFloat("height"),
		StartingCredits:    reg.GetInt("startingCredits"),
		CreditsPerTick:     reg.GetInt("creditsPerTick"),
		TickLimit:          uint32(reg.GetUint("tickLimit")),
		PowerCoreDropRate:  reg.GetFloat("powerCoreDropRate"),
		PowerCoreSpawnRate: reg.GetFloat("powerCoreSpawnRate"),
		MinPowerCoreSpawn:  reg.GetInt("minPowerCoreSpawn"),
		MaxPowerCoreSpawn:  reg.GetInt("maxPowerCoreSpawn"),
		RestrictedStart:    reg.GetBool("restrictedStart"),
		StartingBases:      reg.GetInt("startingBases"),
		StartingFighters:   reg.GetInt("startingFighters"),
		BaseVictory:        reg.GetBool("baseVictory"),
	}
}

// GetEnvInt reads an integer environment override.
func GetEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetEnvString reads a string environment override.
func GetEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
