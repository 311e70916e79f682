package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minhyannv/magnusliber-go/pkg/config"
)

// cliOptions are the flag values of the root command.
type cliOptions struct {
	configDirs        stringSliceFlag
	messagesFile      string
	systemMessageFile string
	verbose           bool
	markdown          bool
	version           bool
}

// searchDirs returns the directories used to find config and text files.
func (o *cliOptions) searchDirs() []string {
	if len(o.configDirs) == 0 {
		return config.DefaultSearchDirs()
	}
	return o.configDirs.values()
}

// dotEnvFiles lists the .env files consulted, nearest directory first.
func dotEnvFiles(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, filepath.Join(dir, ".env"))
	}
	return out
}

// stringSliceFlag supports repeatable -config-dir flags.
type stringSliceFlag []string

func (f *stringSliceFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, ",")
}

func (f *stringSliceFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty config directory")
	}
	if strings.Contains(value, ",") {
		return fmt.Errorf("comma-separated values are not supported for --config-dir; repeat the flag instead")
	}
	*f = append(*f, value)
	return nil
}

func (f *stringSliceFlag) Type() string {
	return "dir"
}

func (f stringSliceFlag) values() []string {
	out := make([]string, len(f))
	copy(out, f)
	return out
}
