package util

import (
	"gopkg.in/ini.v1"
)

// Ini returns the keys of the default section of an ini file. Key names are lowercased.
func Ini(path string) (map[string]string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
