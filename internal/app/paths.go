package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigName is the base name of the config file (sitectl.toml).
const ConfigName = "sitectl"

// ConfigDirs returns the directories searched for sitectl.toml, highest
// priority first: the working directory, $XDG_CONFIG_HOME/sitectl,
// ~/.sitectl and /etc/sitectl.
func ConfigDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, ConfigName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+ConfigName))
	}
	return append(dirs, filepath.Join("/etc", ConfigName))
}

// ConfigureViper sets up viper with an explicit config file or the
// standard search paths.
func ConfigureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.SetConfigName(ConfigName)
	v.SetConfigType("toml")
	for _, dir := range ConfigDirs() {
		v.AddConfigPath(dir)
	}
}
