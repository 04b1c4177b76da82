// Package config loads the declarative TOML description of a data layer —
// storage backend plus relation definitions — and builds a populated
// rel.Registry from it.
package config

import (
	"os"
	"time"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/boltdb"
	"github.com/featurebasedb/rel/errors"
	"github.com/featurebasedb/rel/inmem"
	"github.com/featurebasedb/rel/logger"
	reltoml "github.com/featurebasedb/rel/toml"
	"github.com/pelletier/go-toml"
)

const (
	BackendInmem = "inmem"
	BackendBolt  = "bolt"
)

// Config is the top-level configuration document.
type Config struct {
	Storage   Storage       `toml:"storage"`
	Relations []RelationDef `toml:"relation"`
}

// Storage selects and configures the backend shared by every relation.
type Storage struct {
	// Backend is "inmem" or "bolt". Defaults to "inmem".
	Backend string `toml:"backend"`

	// Path is the bolt data file. Required for the bolt backend.
	Path string `toml:"path"`

	// Timeout bounds how long opening the bolt file may wait for its lock.
	Timeout reltoml.Duration `toml:"timeout"`
}

// RelationDef declares one relation: its schema and optional seed tuples.
type RelationDef struct {
	Name       string                   `toml:"name"`
	AutoID     bool                     `toml:"auto-id"`
	Attributes []AttributeDef           `toml:"attribute"`
	Seed       []map[string]interface{} `toml:"seed"`
}

// AttributeDef declares one schema attribute.
type AttributeDef struct {
	Name       string `toml:"name"`
	Type       string `toml:"type"`
	PrimaryKey bool   `toml:"primary-key"`
}

// Load reads and parses the TOML file at path. The result is parsed but not
// yet validated; call Validate before building.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration eagerly: unknown backends, duplicate or
// unnamed relations, and bad attribute declarations are all rejected here,
// before anything touches storage.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", BackendInmem:
	case BackendBolt:
		if c.Storage.Path == "" {
			return rel.NewErrConfiguration("bolt backend requires a storage path")
		}
	default:
		return rel.NewErrConfiguration("unknown storage backend: '%s'", c.Storage.Backend)
	}

	if len(c.Relations) == 0 {
		return rel.NewErrConfiguration("config declares no relations")
	}

	seen := make(map[string]struct{}, len(c.Relations))
	for _, def := range c.Relations {
		if def.Name == "" {
			return rel.NewErrConfiguration("relation declared without a name")
		}
		if _, ok := seen[def.Name]; ok {
			return rel.NewErrConfiguration("relation '%s' declared twice", def.Name)
		}
		seen[def.Name] = struct{}{}

		if _, err := schemaFor(def); err != nil {
			return err
		}
	}
	return nil
}

func schemaFor(def RelationDef) (*rel.Schema, error) {
	attrs := make([]rel.Attribute, len(def.Attributes))
	for i, a := range def.Attributes {
		typ, err := rel.BaseTypeFromString(a.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "relation '%s' attribute '%s'", def.Name, a.Name)
		}
		attrs[i] = rel.Attribute{Name: a.Name, Type: typ, PrimaryKey: a.PrimaryKey}
	}
	schema, err := rel.NewSchema(attrs...)
	if err != nil {
		return nil, errors.Wrapf(err, "relation '%s'", def.Name)
	}
	return schema, nil
}

// BuildOptions tunes Build.
type BuildOptions struct {
	// SkipSeeds builds relations without applying their seed blocks, for
	// reopening a persistent store that was seeded in an earlier run.
	SkipSeeds bool
}

// Build validates the configuration, opens the configured backend, and
// constructs a registry holding every declared relation. The returned close
// function releases the backend and must be called when the registry is done
// with.
func Build(c *Config, log logger.Logger, opts BuildOptions) (*rel.Registry, func() error, error) {
	if log == nil {
		log = logger.NopLogger
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		db      *boltdb.DB
		closeFn = func() error { return nil }
	)
	if c.Storage.Backend == BackendBolt {
		db = boltdb.NewDB(c.Storage.Path)
		db.Logger = log
		if c.Storage.Timeout > 0 {
			db.OpenTimeout = time.Duration(c.Storage.Timeout)
		}
		if err := db.Open(); err != nil {
			return nil, nil, err
		}
		closeFn = db.Close
	}

	registry := rel.NewRegistry(log)
	for _, def := range c.Relations {
		schema, err := schemaFor(def)
		if err != nil {
			closeFn()
			return nil, nil, err
		}

		var dataset rel.Dataset
		if db != nil {
			dataset, err = db.Dataset(def.Name, schema)
			if err != nil {
				closeFn()
				return nil, nil, err
			}
		} else {
			dataset = inmem.NewDataset()
		}

		seed := seedTuples(def)
		if opts.SkipSeeds {
			seed = nil
		}

		relation, err := rel.NewRelation(rel.RelationConfig{
			Name:    def.Name,
			Schema:  schema,
			Dataset: dataset,
			Seed:    seed,
			AutoID:  def.AutoID,
			Logger:  log,
		})
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		if err := registry.RegisterRelation(relation); err != nil {
			closeFn()
			return nil, nil, err
		}
	}

	log.Infof("built registry with %d relations (backend: %s)", len(c.Relations), backendName(c))
	return registry, closeFn, nil
}

func seedTuples(def RelationDef) rel.Tuples {
	if len(def.Seed) == 0 {
		return nil
	}
	out := make(rel.Tuples, len(def.Seed))
	for i, row := range def.Seed {
		out[i] = rel.Tuple(row)
	}
	return out
}

func backendName(c *Config) string {
	if c.Storage.Backend == "" {
		return BackendInmem
	}
	return c.Storage.Backend
}
