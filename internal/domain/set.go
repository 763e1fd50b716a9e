package domain

import "time"

// SetType classifies how a set's checklist behaves.
type SetType string

// Set types.
const (
	SetTypeBase SetType = "base"
	// SetTypeInsert is a themed insert checklist within a product.
	SetTypeInsert SetType = "insert"
	// SetTypeRainbow tracks one physical card across all of its
	// serialized parallel print variants.
	SetTypeRainbow SetType = "rainbow"
	// SetTypeMultiYearInsert spans multiple release years; its cards carry
	// a year and its natural keys include year and parallel.
	SetTypeMultiYearInsert SetType = "multi_year_insert"
)

// RequiresYear reports whether sets of this type carry a release year
// on the set itself. Multi-year inserts carry years per card instead.
func (t SetType) RequiresYear() bool {
	return t != SetTypeMultiYearInsert
}

// ValidSetType reports whether t is a known set type.
func ValidSetType(t SetType) bool {
	switch t {
	case SetTypeBase, SetTypeInsert, SetTypeRainbow, SetTypeMultiYearInsert:
		return true
	}
	return false
}

// Set is a named checklist of cards sharing a year, brand, and product line.
type Set struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	ProductLine   string    `json:"product_line"`
	InsertSetName string    `json:"insert_set_name,omitempty"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	SetType       SetType   `json:"set_type"`
	Year          int       `json:"year"`
}

// IsMultiYear reports whether the set spans multiple years, which changes
// both duplicate-key construction and checklist grouping.
func (s *Set) IsMultiYear() bool {
	return s.SetType == SetTypeMultiYearInsert
}

// IsRainbow reports whether the set tracks a single card's parallels.
func (s *Set) IsRainbow() bool {
	return s.SetType == SetTypeRainbow
}

// KeyOptions returns the natural-key options for cards in this set.
// An import batch's shared parallel label only participates in the key for
// multi-year sets; single-year sets keep the historical number+player key.
func (s *Set) KeyOptions(parallelOverride *string) KeyOptions {
	opts := KeyOptions{MultiYear: s.IsMultiYear()}
	if s.IsMultiYear() {
		opts.ParallelOverride = parallelOverride
	}
	return opts
}
