package domain

import (
	"slices"
	"time"
)

// Collection is a named grouping of sets curated by an admin, used to
// organize the shared catalog ("2024 Flagship", "Vintage", ...).
// Collections organize; they do not restrict access.
type Collection struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SetIDs    []string  `json:"set_ids"`
}

// AddSet adds a set ID to the collection if not already present.
func (c *Collection) AddSet(setID string) bool {
	if slices.Contains(c.SetIDs, setID) {
		return false
	}
	c.SetIDs = append(c.SetIDs, setID)
	return true
}

// RemoveSet removes a set ID from the collection.
func (c *Collection) RemoveSet(setID string) bool {
	for i, id := range c.SetIDs {
		if id == setID {
			c.SetIDs = append(c.SetIDs[:i], c.SetIDs[i+1:]...)
			return true
		}
	}
	return false
}

// ContainsSet checks if a set ID is in this collection.
func (c *Collection) ContainsSet(setID string) bool {
	return slices.Contains(c.SetIDs, setID)
}
