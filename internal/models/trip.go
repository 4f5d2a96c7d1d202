package models

// Trip represents a group of people sharing expenses, e.g. a vacation or a
// shared household. Trips own expenses and settlements, enabling per-trip
// history and per-currency settlement views.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string `json:"id"`

	// Name is the display name of the trip (e.g. "Tokyo 2026", "Roommates").
	Name string `json:"name"`

	// Members is the list of participant IDs on this trip.
	Members []string `json:"members"`

	// BaseCurrency is the trip's default ISO 4217 currency code, used when an
	// expense does not name one. Settlement stays per-currency regardless.
	BaseCurrency string `json:"baseCurrency"`

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64 `json:"createdAt"`
}
