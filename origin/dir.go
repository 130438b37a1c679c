package origin

import (
	"context"
	"io/fs"

	"github.com/pkg/errors"
)

// DirStore serves objects from a file system, typically os.DirFS over a
// local export.
type DirStore struct {
	fsys fs.FS
}

// NewDirStore returns a Store reading from fsys.
func NewDirStore(fsys fs.FS) *DirStore {
	return &DirStore{fsys: fsys}
}

// Get opens key. Directories and invalid names are reported as ErrNotFound.
func (d *DirStore) Get(ctx context.Context, key string) (*Object, error) {
	if !fs.ValidPath(key) {
		return nil, ErrNotFound
	}

	f, err := d.fsys.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "open %s", key)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "stat %s", key)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}

	return &Object{
		Body:          f,
		ContentLength: info.Size(),
		LastModified:  info.ModTime(),
	}, nil
}
