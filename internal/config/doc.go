// Package config manages the CLI-level configuration file
// (~/.sygaldry/config.yaml) via Viper: the default registry location and the
// manifest cache settings. Project-level configuration lives in the project
// package, not here.
package config
