package container

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// File is a container file backed by a bbolt database. Groups map to nested
// buckets and values to JSON-envelope encoded bucket entries.
type File struct {
	path string
	db   *bolt.DB
}

// Open opens or creates a container file at the given path.
func Open(path string) (*File, error) {
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}
	return &File{path: path, db: db}, nil
}

// Path returns the container file path.
func (f *File) Path() string {
	return f.path
}

// Close closes the underlying database.
func (f *File) Close() error {
	return f.db.Close()
}

// Update runs fn with a Writer rooted at the top level of the container.
// The whole call is one transaction: on error nothing is committed.
func (f *File) Update(fn func(Writer) error) error {
	err := f.db.Update(func(tx *bolt.Tx) error {
		return fn(&bucketWriter{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("failed to write container %s: %w", f.path, err)
	}
	return nil
}

// View runs fn with a Reader rooted at the top level of the container.
func (f *File) View(fn func(Reader) error) error {
	err := f.db.View(func(tx *bolt.Tx) error {
		return fn(&bucketReader{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("failed to read container %s: %w", f.path, err)
	}
	return nil
}

// DeleteGroup removes a top-level group and everything below it.
func (f *File) DeleteGroup(name string) error {
	err := f.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(name)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", name, err)
	}
	return nil
}

// bucketWriter implements Writer over a bbolt transaction. A nil bucket
// means the writer is rooted at the transaction's top level.
type bucketWriter struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
}

func (w *bucketWriter) Group(name string, fn func(Writer) error) error {
	var sub *bolt.Bucket
	var err error
	if w.bucket == nil {
		sub, err = w.tx.CreateBucketIfNotExists([]byte(name))
	} else {
		sub, err = w.bucket.CreateBucketIfNotExists([]byte(name))
	}
	if err != nil {
		return fmt.Errorf("failed to create group %s: %w", name, err)
	}
	return fn(&bucketWriter{tx: w.tx, bucket: sub})
}

func (w *bucketWriter) Write(key string, v any) error {
	if w.bucket == nil {
		return fmt.Errorf("cannot write key %s outside a group", key)
	}
	data, err := encodeValue(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return w.bucket.Put([]byte(key), data)
}

// bucketReader implements Reader over a bbolt transaction. A missing group
// yields an empty reader so deserializing an absent section is a no-op.
type bucketReader struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
	empty  bool
}

func (r *bucketReader) Group(name string, fn func(Reader) error) error {
	if r.empty {
		return fn(&bucketReader{tx: r.tx, empty: true})
	}
	var sub *bolt.Bucket
	if r.bucket == nil {
		sub = r.tx.Bucket([]byte(name))
	} else {
		sub = r.bucket.Bucket([]byte(name))
	}
	if sub == nil {
		return fn(&bucketReader{tx: r.tx, empty: true})
	}
	return fn(&bucketReader{tx: r.tx, bucket: sub})
}

func (r *bucketReader) ListGroups() ([]string, error) {
	if r.empty {
		return nil, nil
	}
	var names []string
	collect := func(k []byte, v []byte) error {
		if v == nil { // nested bucket
			names = append(names, string(k))
		}
		return nil
	}
	if r.bucket == nil {
		err := r.tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
		return names, err
	}
	if err := r.bucket.ForEach(collect); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *bucketReader) get(key string) ([]byte, error) {
	if r.empty || r.bucket == nil {
		return nil, fmt.Errorf("key %s not found", key)
	}
	data := r.bucket.Get([]byte(key))
	if data == nil {
		return nil, fmt.Errorf("key %s not found", key)
	}
	return data, nil
}

func (r *bucketReader) ReadString(key string) (string, error) {
	data, err := r.get(key)
	if err != nil {
		return "", err
	}
	var s string
	err = decodeValue(data, "str", &s)
	return s, err
}

func (r *bucketReader) ReadBool(key string) (bool, error) {
	data, err := r.get(key)
	if err != nil {
		return false, err
	}
	var b bool
	err = decodeValue(data, "bool", &b)
	return b, err
}

func (r *bucketReader) ReadInt(key string) (int, error) {
	data, err := r.get(key)
	if err != nil {
		return 0, err
	}
	var n int
	err = decodeValue(data, "int", &n)
	return n, err
}

func (r *bucketReader) ReadFloat(key string) (float64, error) {
	data, err := r.get(key)
	if err != nil {
		return 0, err
	}
	var f float64
	err = decodeValue(data, "f64", &f)
	return f, err
}

func (r *bucketReader) ReadFloats(key string) ([]float64, error) {
	data, err := r.get(key)
	if err != nil {
		return nil, err
	}
	var fs []float64
	err = decodeValue(data, "f64s", &fs)
	return fs, err
}

func (r *bucketReader) ReadBytes(key string) ([]byte, error) {
	data, err := r.get(key)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = decodeValue(data, "bin", &raw)
	return raw, err
}
