// Package sqlite provides SQLite configuration options.
package sqlite

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options defines configuration options for SQLite.
type Options struct {
	// Path is the database file path. ":memory:" gives an in-memory
	// database, useful for local development.
	Path string `json:"path" mapstructure:"path"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Path: "gatekeeper.db",
	}
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Path == "" {
		return fmt.Errorf("sqlite.path cannot be empty")
	}
	return nil
}

// AddFlags adds flags for SQLite options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Path, "sqlite.path", o.Path, "SQLite database file path (\":memory:\" for in-memory)")
}
