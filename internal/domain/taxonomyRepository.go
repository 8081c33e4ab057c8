package domain

import "context"

type TaxonomyRepository interface {
	// FindPhotoURL returns a reference photo URL for a species common
	// name, or ErrRecordNotFound when the search yields nothing usable.
	FindPhotoURL(ctx context.Context, commonName string) (string, error)
}
