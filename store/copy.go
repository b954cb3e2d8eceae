package store

import (
	"context"

	"github.com/pkg/errors"
)

// Copy moves the named collections from src to dst verbatim. Collections
// missing from src are written to dst as empty arrays. It returns the
// names it copied.
func Copy(ctx context.Context, src, dst Driver, names []string) ([]string, error) {
	copied := make([]string, 0, len(names))
	for _, name := range names {
		data, err := src.Load(ctx, name)
		if err != nil {
			return copied, errors.Wrapf(err, "failed to read %s", name)
		}
		if err := dst.Save(ctx, name, data); err != nil {
			return copied, errors.Wrapf(err, "failed to write %s", name)
		}
		copied = append(copied, name)
	}
	return copied, nil
}
