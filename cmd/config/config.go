// Package config implements `propack config`
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	configKindString = iota
	configKindBool
	configKindInt
)

type configEntry struct {
	kind int
	help string
}

var config = map[string]configEntry{
	"noninteractive": {configKindBool, "never show prompts"},
	"verboselogging": {configKindBool, "log debug output"},
	"logfile":        {configKindString, "also write json logs to this file"},
	"patchdebug":     {configKindBool, "log every item that could not be remapped"},
	"serverversion":  {configKindString, "Minecraft version used by `propack resolve` patches"},
	"serve.port":     {configKindInt, "port of `propack serve`"},
}

// SubCmd is the config command
var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}

// File returns the path of the global config file
func File() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "propack", "config.toml"), nil
}
