package location

import "context"

// UnknownCity is how an unresolved hint is displayed.
const UnknownCity = "Unknown"

// Hint is the caller's approximate city. Known is false whenever the lookup
// failed or returned no city.
type Hint struct {
	City  string
	Known bool
}

func Unknown() Hint { return Hint{} }

func City(name string) Hint {
	if name == "" {
		return Unknown()
	}
	return Hint{City: name, Known: true}
}

func (h Hint) String() string {
	if !h.Known {
		return UnknownCity
	}
	return h.City
}

// Lookup resolves a network address to a city name. An empty ip means the
// service should use the address the request arrives from.
type Lookup interface {
	City(ctx context.Context, ip string) (string, error)
}
