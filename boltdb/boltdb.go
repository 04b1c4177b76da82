// Package boltdb contains the bbolt implementation of the rel.Dataset
// interface. One bucket holds one relation's tuples, keyed by encoded
// primary key so iteration order is stable and primary-key ordered.
package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/featurebasedb/rel"
	"github.com/featurebasedb/rel/errors"
	"github.com/featurebasedb/rel/logger"
	bolt "go.etcd.io/bbolt"
)

const (
	ErrFmtBucketNotFound = "boltdb: bucket '%s' not found"
)

// keySep separates the encoded parts of a composite primary key.
const keySep = "\x00"

type Bucket []byte

// DB represents the database connection.
type DB struct {
	db   *bolt.DB
	path string

	// OpenTimeout bounds how long Open waits for the file lock.
	OpenTimeout time.Duration

	// Logger defaults to logger.NopLogger.
	Logger logger.Logger
}

// NewDB returns a new instance of DB backed by the file at path.
func NewDB(path string) *DB {
	return &DB{
		path:        path,
		OpenTimeout: 1 * time.Second,
		Logger:      logger.NopLogger,
	}
}

// Open opens the database connection, creating the parent directory as
// needed.
func (db *DB) Open() (err error) {
	if db.path == "" {
		return errors.New(errors.ErrUncoded, "boltdb: no file path configured")
	}

	if err := os.MkdirAll(filepath.Dir(db.path), 0777); err != nil {
		return errors.Wrapf(err, "mkdir %s", filepath.Dir(db.path))
	} else if db.db, err = bolt.Open(db.path, 0666, &bolt.Options{Timeout: db.OpenTimeout}); err != nil {
		return errors.Wrapf(err, "open file: %s", err)
	}

	db.Logger.Debugf("boltdb: opened %s", db.path)
	return nil
}

// Close closes the database connection.
func (db *DB) Close() (err error) {
	return db.db.Close()
}

// Path returns the file path to the boltdb database file.
func (db *DB) Path() string {
	return db.path
}

// Dataset returns a dataset stored in the named bucket, creating the bucket
// if it does not exist. The schema drives primary-key encoding and decode
// coercion.
func (db *DB) Dataset(name string, schema *rel.Schema) (*Dataset, error) {
	if schema == nil {
		return nil, rel.NewErrConfiguration("boltdb dataset '%s' has no schema", name)
	}

	bucket := Bucket(name)
	err := db.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating bucket: %s", name)
	}

	return &Dataset{
		db:     db,
		bucket: bucket,
		schema: schema,
	}, nil
}

// Ensure type implements interface.
var _ rel.Dataset = (*Dataset)(nil)

// Dataset is a bucket-backed dataset. Every Insert, Update, and Delete runs
// inside a single bolt write transaction, which is the atomicity boundary a
// command relies on.
type Dataset struct {
	db     *DB
	bucket Bucket
	schema *rel.Schema
}

// Insert stores t under its encoded primary key. Colliding with an existing
// key is an error; no partial write occurs.
func (ds *Dataset) Insert(t rel.Tuple) (rel.Tuple, error) {
	key, err := ds.key(t)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "encoding tuple")
	}

	err = ds.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ds.bucket)
		if b == nil {
			return errors.Errorf(ErrFmtBucketNotFound, ds.bucket)
		}
		if b.Get(key) != nil {
			return rel.NewErrTupleExists(string(key))
		}
		return b.Put(key, value)
	})
	if err != nil {
		return nil, err
	}
	return t.Copy(), nil
}

// Update overlays t onto every stored tuple matching criteria, rewriting the
// key when the primary key changed, all within one write transaction.
func (ds *Dataset) Update(criteria rel.Predicate, t rel.Tuple) (rel.Tuples, error) {
	var out rel.Tuples

	err := ds.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ds.bucket)
		if b == nil {
			return errors.Errorf(ErrFmtBucketNotFound, ds.bucket)
		}

		type rewrite struct {
			oldKey []byte
			newKey []byte
			value  []byte
		}
		var rewrites []rewrite

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			existing, err := ds.decode(v)
			if err != nil {
				return err
			}
			if criteria != nil && !criteria(existing) {
				continue
			}

			updated := existing.Merge(t)
			newKey, err := ds.key(updated)
			if err != nil {
				return err
			}
			value, err := json.Marshal(updated)
			if err != nil {
				return errors.Wrap(err, "encoding tuple")
			}

			oldKey := make([]byte, len(k))
			copy(oldKey, k)
			rewrites = append(rewrites, rewrite{oldKey: oldKey, newKey: newKey, value: value})
			out = append(out, updated)
		}

		// Writes happen after the scan so the cursor never walks its own
		// modifications.
		for _, rw := range rewrites {
			if !bytes.Equal(rw.oldKey, rw.newKey) {
				if err := b.Delete(rw.oldKey); err != nil {
					return err
				}
			}
			if err := b.Put(rw.newKey, rw.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes every tuple matching criteria within one write transaction
// and returns the count.
func (ds *Dataset) Delete(criteria rel.Predicate) (int, error) {
	n := 0
	err := ds.db.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ds.bucket)
		if b == nil {
			return errors.Errorf(ErrFmtBucketNotFound, ds.bucket)
		}

		var victims [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			existing, err := ds.decode(v)
			if err != nil {
				return err
			}
			if criteria != nil && !criteria(existing) {
				continue
			}
			key := make([]byte, len(k))
			copy(key, k)
			victims = append(victims, key)
		}

		for _, key := range victims {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		n = len(victims)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Filter returns a lazy view restricted to tuples matching p.
func (ds *Dataset) Filter(p rel.Predicate) rel.Dataset {
	return rel.NewView(ds, []rel.Predicate{p}, nil)
}

// Order returns a lazy view ordered by the named attributes.
func (ds *Dataset) Order(attrs ...string) rel.Dataset {
	return rel.NewView(ds, nil, attrs)
}

// Tuples returns the stored tuples in key order.
func (ds *Dataset) Tuples() (rel.Tuples, error) {
	var out rel.Tuples
	err := ds.db.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ds.bucket)
		if b == nil {
			return errors.Errorf(ErrFmtBucketNotFound, ds.bucket)
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			t, err := ds.decode(v)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// decode unmarshals a stored tuple and coerces it back through the schema,
// restoring the attribute types json flattened (ints come back as float64,
// timestamps as strings).
func (ds *Dataset) decode(value []byte) (rel.Tuple, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding tuple")
	}
	t, err := ds.schema.Coerce(rel.Tuple(raw))
	if err != nil {
		return nil, errors.Wrap(err, "coercing stored tuple")
	}
	return t, nil
}

// key encodes t's primary-key attributes into a byte key whose lexicographic
// order matches the attributes' natural order. Every primary-key attribute
// must be present.
func (ds *Dataset) key(t rel.Tuple) ([]byte, error) {
	pk := ds.schema.PrimaryKey()
	if len(pk) == 0 {
		return nil, rel.NewErrConfiguration("boltdb dataset '%s' requires a primary key", ds.bucket)
	}

	parts := make([]string, len(pk))
	for i, attr := range pk {
		v, ok := t[attr.Name]
		if !ok {
			return nil, rel.NewErrValidation(
				fmt.Sprintf("tuple is missing primary-key attribute '%s'", attr.Name),
				map[string]interface{}{attr.Name: "primary-key attribute is required"},
			)
		}
		parts[i] = encodeKeyValue(attr.Type, v)
	}
	return []byte(joinKey(parts)), nil
}

func joinKey(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += keySep + p
	}
	return out
}

// encodeKeyValue formats a primary-key value so byte order tracks value
// order. Integer keys are zero padded; negative integers are not supported
// as primary keys.
func encodeKeyValue(typ rel.BaseType, v interface{}) string {
	switch typ {
	case rel.TypeInt:
		switch n := v.(type) {
		case int:
			return fmt.Sprintf("%020d", n)
		case int64:
			return fmt.Sprintf("%020d", n)
		case float64:
			return fmt.Sprintf("%020d", int64(n))
		}
	case rel.TypeTimestamp:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339Nano)
		}
	}
	return fmt.Sprintf("%v", v)
}
