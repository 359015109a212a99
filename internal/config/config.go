// Package config loads the optional .tinycrc.toml file cmd/tinyc reads its
// defaults from, using github.com/BurntSushi/toml for on-disk configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Mode selects which of the two parsers cmd/tinyc uses by default.
type Mode string

const (
	ModeBacktrack  Mode = "backtrack"
	ModePredictive Mode = "predictive"
)

// Config holds the defaults cmd/tinyc flags fall back to when not given
// explicitly on the command line.
type Config struct {
	// Grammar is the path to the default grammar description file.
	Grammar string `toml:"grammar"`

	// Mode is the default parsing mode, "backtrack" or "predictive".
	Mode Mode `toml:"mode"`

	// Transform selects whether left-recursion elimination and
	// left-factoring run before parsing.
	Transform bool `toml:"transform"`

	// MaxTransformRounds bounds TransformDriver's alternation of the two
	// passes; see grammar.TransformationNotConvergingError.
	MaxTransformRounds int `toml:"max_transform_rounds"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Mode:               ModePredictive,
		Transform:          true,
		MaxTransformRounds: 100,
	}
}

// Load reads and parses the TOML config file at path, applying its values
// on top of Default(). A missing file is not an error; Load returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
