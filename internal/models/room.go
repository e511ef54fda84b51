package models

import "fmt"

// RoomType is the closed set of room occupancy classes a passenger can book.
type RoomType string

const (
	RoomQuad   RoomType = "quad"
	RoomTriple RoomType = "triple"
	RoomDouble RoomType = "double"
	RoomSingle RoomType = "single"
)

// RoomTypePriority lists room types in the fixed allocation/tie-break order:
// quad seats come first and win arithmetic ties.
var RoomTypePriority = []RoomType{RoomQuad, RoomTriple, RoomDouble, RoomSingle}

func (r RoomType) Valid() bool {
	switch r {
	case RoomQuad, RoomTriple, RoomDouble, RoomSingle:
		return true
	}
	return false
}

// RoomPrices holds the four per-room-type prices of a package. Read once per
// booking attempt and treated as immutable for that attempt.
type RoomPrices struct {
	Quad   int64 `json:"quad"`
	Triple int64 `json:"triple"`
	Double int64 `json:"double"`
	Single int64 `json:"single"`
}

// PriceFor returns the price for a room type. The switch is exhaustive over
// RoomType so an unknown value is an error, not a silent zero.
func (p RoomPrices) PriceFor(room RoomType) (int64, error) {
	switch room {
	case RoomQuad:
		return p.Quad, nil
	case RoomTriple:
		return p.Triple, nil
	case RoomDouble:
		return p.Double, nil
	case RoomSingle:
		return p.Single, nil
	}
	return 0, fmt.Errorf("unknown room type %q", string(room))
}

// RoomAllocation is a seat request per room type for allocation-mode bookings.
type RoomAllocation struct {
	Quad   int `json:"quad"`
	Triple int `json:"triple"`
	Double int `json:"double"`
	Single int `json:"single"`
}

// Count returns the count requested for a room type.
func (a RoomAllocation) Count(room RoomType) int {
	switch room {
	case RoomQuad:
		return a.Quad
	case RoomTriple:
		return a.Triple
	case RoomDouble:
		return a.Double
	case RoomSingle:
		return a.Single
	}
	return 0
}

// Total returns the number of seats requested across all room types.
func (a RoomAllocation) Total() int {
	return a.Quad + a.Triple + a.Double + a.Single
}
