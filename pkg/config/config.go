// Package config loads service settings from defaults and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load fills out from defaults overridden by environment variables. Keys are
// the mapstructure tags of out; nested keys use "_" in the environment, so
// "http.port" is read from HTTP_PORT, or PREFIX_HTTP_PORT when prefix is set.
func Load(prefix string, defaults map[string]any, out any) error {
	return LoadWith(viper.New(), prefix, defaults, out)
}

// LoadWith is Load on a caller supplied viper instance, letting the CLI bind
// flags before unmarshalling.
func LoadWith(v *viper.Viper, prefix string, defaults map[string]any, out any) error {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if prefix != "" {
		v.SetEnvPrefix(prefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}
