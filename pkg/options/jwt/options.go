// Package jwt provides JWT verification options.
//
// The gatekeeper does not issue tokens; it verifies tokens minted by the
// CRM using a shared HMAC key.
//
// Environment Variables:
//
//	JWT_KEY - JWT signing key (preferred over the CLI flag)
package jwt

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// MinKeyLength is the minimum required key length for security.
const MinKeyLength = 32

// Options defines JWT verification configuration.
type Options struct {
	// Key is the shared HMAC signing key.
	Key string `json:"-" mapstructure:"key"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{}
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Key, "jwt.key", o.Key, "JWT signing key (DEPRECATED: use JWT_KEY env var instead)")
}

// Validate validates the JWT options.
func (o *Options) Validate() error {
	if o.Key == "" {
		o.Key = os.Getenv("JWT_KEY")
	}

	if o.Key != "" && os.Getenv("JWT_KEY") == "" {
		fmt.Fprintf(os.Stderr, "WARNING: Passing the JWT key via CLI is insecure. Use JWT_KEY environment variable instead.\n")
	}

	if o.Key == "" {
		return fmt.Errorf("jwt.key is required (set JWT_KEY)")
	}
	if len(o.Key) < MinKeyLength {
		return fmt.Errorf("jwt.key must be at least %d characters", MinKeyLength)
	}
	return nil
}
