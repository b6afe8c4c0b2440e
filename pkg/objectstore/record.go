package objectstore

import (
	"context"
	"errors"
	"fmt"
)

// PutAndRecord stores obj and passes its URI to record. When record fails the
// object is removed again so no unreferenced files are left behind.
func PutAndRecord(ctx context.Context, store Store, prefix string, obj Object, record func(uri string) error) (string, error) {
	uri, err := store.Put(ctx, prefix, obj)
	if err != nil {
		return "", err
	}
	if err := record(uri); err != nil {
		if rmErr := store.Remove(context.WithoutCancel(ctx), uri); rmErr != nil {
			return "", errors.Join(err, fmt.Errorf("cleanup %s: %w", uri, rmErr))
		}
		return "", err
	}
	return uri, nil
}
