package main

import "strings"

// flagKey turns a flag name into the viper key of the matching setting.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
