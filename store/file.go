package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileDriver keeps every collection in <dir>/<name>.json.
type FileDriver struct {
	dir   string
	locks collectionLocks
}

// NewFileDriver creates dir when missing.
func NewFileDriver(dir string) (*FileDriver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}
	return &FileDriver{dir: dir}, nil
}

// Dir is the data directory.
func (d *FileDriver) Dir() string { return d.dir }

func (d *FileDriver) lock(name string) *sync.Mutex {
	return d.locks.get(name)
}

func (d *FileDriver) path(name string) string {
	return filepath.Join(d.dir, name+".json")
}

func (d *FileDriver) Load(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.read(name)
}

func (d *FileDriver) read(name string) ([]byte, error) {
	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return emptyArray, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", name)
	}
	data, err = normalize(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	return data, nil
}

func (d *FileDriver) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	l := d.lock(name)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.write(name, data)
}

func (d *FileDriver) Update(ctx context.Context, name string, fn UpdateFunc) error {
	if err := checkName(name); err != nil {
		return err
	}
	l := d.lock(name)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	current, err := d.read(name)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return d.write(name, next)
}

// write replaces the file through a temp file in the same directory so a
// reader never sees a half written array.
func (d *FileDriver) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(d.dir, name+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to sync %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to write %s", name)
	}
	if err := os.Rename(tmp.Name(), d.path(name)); err != nil {
		return errors.Wrapf(err, "failed to replace %s", name)
	}
	return nil
}

func (d *FileDriver) Close() error { return nil }
