package hospital

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the city cannot be geocoded.
var ErrNotFound = errors.New("hospital not found")

// ErrTimeout marks a geocoding call that exceeded its deadline.
var ErrTimeout = errors.New("hospital lookup timed out")

// UnknownArea is used when reverse geocoding has no suburb.
const UnknownArea = "Unknown Area"

// Record describes the suggested hospital. Only Area comes from live data;
// Name and Phone are configured placeholders.
type Record struct {
	Name      string `json:"name"`
	Area      string `json:"area"`
	Phone     string `json:"phone"`
	AreaKnown bool   `json:"area_known"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Address is the subset of a reverse-geocoding result we read.
type Address struct {
	Suburb string
}

// Geocoder is the port for forward and reverse geocoding.
// Geocode returns ErrNotFound when the place has no match.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Coordinates, error)
	Reverse(ctx context.Context, at Coordinates) (Address, error)
}
