// Package options contains flags and options for initializing the gatekeeper server.
package options

import (
	"fmt"

	"github.com/kart-io/gatekeeper/internal/gatekeeper"
	"github.com/kart-io/gatekeeper/pkg/app"
	cacheopts "github.com/kart-io/gatekeeper/pkg/options/cache"
	httpopts "github.com/kart-io/gatekeeper/pkg/options/http"
	jwtopts "github.com/kart-io/gatekeeper/pkg/options/jwt"
	logopts "github.com/kart-io/gatekeeper/pkg/options/logger"
	mysqlopts "github.com/kart-io/gatekeeper/pkg/options/mysql"
	redisopts "github.com/kart-io/gatekeeper/pkg/options/redis"
	sqliteopts "github.com/kart-io/gatekeeper/pkg/options/sqlite"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// JWTOptions contains JWT verification configuration.
	JWTOptions *jwtopts.Options `json:"jwt" mapstructure:"jwt"`

	// CacheOptions contains rule cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// MySQLOptions contains MySQL database configuration.
	MySQLOptions *mysqlopts.Options `json:"mysql" mapstructure:"mysql"`

	// SQLiteOptions contains SQLite database configuration.
	SQLiteOptions *sqliteopts.Options `json:"sqlite" mapstructure:"sqlite"`

	// RedisOptions contains Redis configuration.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// DBDriver selects the restriction store backend (sqlite or mysql).
	DBDriver string `json:"db-driver" mapstructure:"db-driver"`

	// AuditWorkers sizes the async audit writer pool.
	AuditWorkers int `json:"audit-workers" mapstructure:"audit-workers"`

	// AdminRoles may manage restrictions and read the audit trail.
	AdminRoles []string `json:"admin-roles" mapstructure:"admin-roles"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:   httpopts.NewOptions(),
		LogOptions:    logopts.NewOptions(),
		JWTOptions:    jwtopts.NewOptions(),
		CacheOptions:  cacheopts.NewOptions(),
		MySQLOptions:  mysqlopts.NewOptions(),
		SQLiteOptions: sqliteopts.NewOptions(),
		RedisOptions:  redisopts.NewOptions(),
		DBDriver:      gatekeeper.DriverSQLite,
		AuditWorkers:  4,
		AdminRoles:    []string{"admin"},
	}
}

// Flags returns flags grouped by section.
func (o *ServerOptions) Flags() (fss app.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.JWTOptions.AddFlags(fss.FlagSet("jwt"))
	o.CacheOptions.AddFlags(fss.FlagSet("cache"))
	o.MySQLOptions.AddFlags(fss.FlagSet("mysql"))
	o.SQLiteOptions.AddFlags(fss.FlagSet("sqlite"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))

	fs := fss.FlagSet("misc")
	fs.StringVar(&o.DBDriver, "db-driver", o.DBDriver, "Database driver (sqlite|mysql)")
	fs.IntVar(&o.AuditWorkers, "audit-workers", o.AuditWorkers, "Async audit writer pool size")
	fs.StringSliceVar(&o.AdminRoles, "admin-roles", o.AdminRoles, "Roles allowed to manage restrictions")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	if o.DBDriver != gatekeeper.DriverSQLite && o.DBDriver != gatekeeper.DriverMySQL {
		return fmt.Errorf("db-driver must be %q or %q", gatekeeper.DriverSQLite, gatekeeper.DriverMySQL)
	}
	if o.AuditWorkers < 1 {
		return fmt.Errorf("audit-workers must be at least 1")
	}

	if err := o.HTTPOptions.Validate(); err != nil {
		return err
	}
	if err := o.LogOptions.Validate(); err != nil {
		return err
	}
	if err := o.JWTOptions.Validate(); err != nil {
		return err
	}
	if err := o.CacheOptions.Validate(); err != nil {
		return err
	}
	if o.DBDriver == gatekeeper.DriverMySQL {
		if err := o.MySQLOptions.Validate(); err != nil {
			return err
		}
	} else {
		if err := o.SQLiteOptions.Validate(); err != nil {
			return err
		}
	}
	if o.CacheOptions.Backend == cacheopts.BackendRedis {
		if err := o.RedisOptions.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Config builds a gatekeeper.Config from the options.
func (o *ServerOptions) Config() (*gatekeeper.Config, error) {
	return &gatekeeper.Config{
		HTTPOptions:   o.HTTPOptions,
		LogOptions:    o.LogOptions,
		JWTOptions:    o.JWTOptions,
		CacheOptions:  o.CacheOptions,
		MySQLOptions:  o.MySQLOptions,
		SQLiteOptions: o.SQLiteOptions,
		RedisOptions:  o.RedisOptions,
		DBDriver:      o.DBDriver,
		AuditWorkers:  o.AuditWorkers,
		AdminRoles:    o.AdminRoles,
	}, nil
}
