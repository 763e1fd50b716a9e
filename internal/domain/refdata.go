package domain

import "time"

// Brand is a card manufacturer (Topps, Panini, ...). Names are unique
// case-insensitively; the store enforces this via a normalized index.
type Brand struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// ProductLine is a product family within a brand (Chrome, Prizm, ...).
type ProductLine struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}

// InsertSetName is a reusable insert-set label shared across sets
// ("Downtown", "Kaboom", ...).
type InsertSetName struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
}
