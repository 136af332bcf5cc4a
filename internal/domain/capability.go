package domain

import "context"

// LocationSource produces the reporter's position. Each call is a single
// attempt that yields exactly one of a location or an error.
type LocationSource interface {
	Locate(ctx context.Context) (GeoLocation, error)
}

// LocationSourceFunc adapts a function to LocationSource.
type LocationSourceFunc func(ctx context.Context) (GeoLocation, error)

func (f LocationSourceFunc) Locate(ctx context.Context) (GeoLocation, error) { return f(ctx) }

// ImageSource produces the encoded bytes of a user-chosen photo.
type ImageSource interface {
	Encode(ctx context.Context) (EncodedImage, error)
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context) (EncodedImage, error)

func (f ImageSourceFunc) Encode(ctx context.Context) (EncodedImage, error) { return f(ctx) }
