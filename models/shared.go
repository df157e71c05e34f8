package models

import "fmt"

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from latitude/longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether the point carries a usable [lng, lat] pair.
func (g GeoPoint) Valid() bool {
	if len(g.Coordinates) != 2 {
		return false
	}
	lng, lat := g.Coordinates[0], g.Coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func (g GeoPoint) Lng() float64 { return g.Coordinates[0] }
func (g GeoPoint) Lat() float64 { return g.Coordinates[1] }

func (g GeoPoint) String() string {
	if len(g.Coordinates) != 2 {
		return "invalid"
	}
	return fmt.Sprintf("%.6f,%.6f", g.Lat(), g.Lng())
}

// EntityState models soft deletion explicitly.
type EntityState string

const (
	StateActive  EntityState = "active"
	StateDeleted EntityState = "deleted"
)
