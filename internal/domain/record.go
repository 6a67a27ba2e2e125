package domain

import (
	"fmt"
	"time"
)

// RawRow is one row of cells from a spreadsheet-shaped source.
type RawRow []string

// LatLon is a WGS-84 coordinate pair in the order submitters write it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LngLat returns the pair in map order: longitude first.
func (p LatLon) LngLat() [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}

func (p LatLon) String() string {
	return fmt.Sprintf("%g,%g", p.Lat, p.Lon)
}

// Record is a validated memory. Records are immutable once built.
type Record struct {
	ID          int    `json:"id"`
	Timestamp   string `json:"timestamp,omitempty"`
	Author      string `json:"author"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Age         string `json:"age,omitempty"`
	AvatarName  string `json:"avatar_name"`
	HashtagText string `json:"hashtags,omitempty"`
	GenreText   string `json:"genre,omitempty"`
	Year        string `json:"year,omitempty"`

	// Coordinates is the normalized "lat,lon" text; Position is its parsed form.
	Coordinates string `json:"coordinates"`
	Position    LatLon `json:"position"`

	AvatarURL string `json:"avatar_url"`

	// PlaceName is filled by reverse geocoding when enrichment is enabled.
	PlaceName string `json:"place_name,omitempty"`
}

// Rejection explains why a data row was not admitted.
type Rejection struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Rejection reasons.
const (
	ReasonCoordinates = "invalid_coordinates"
	ReasonAvatar      = "missing_avatar"
)

// Report summarizes one build of the canonical record set.
type Report struct {
	DataRows   int         `json:"data_rows"`
	Admitted   int         `json:"admitted"`
	Rejections []Rejection `json:"rejections,omitempty"`
	BuiltAt    time.Time   `json:"built_at"`
}

// AvatarPath is the asset path convention for avatar images.
type AvatarPath struct {
	Dir string
	Ext string
}

// DefaultAvatarPath matches the bundled front-end assets.
var DefaultAvatarPath = AvatarPath{Dir: "images/avatars/", Ext: ".png"}

// URL returns the image path for an avatar name, or "" for an empty name.
func (a AvatarPath) URL(name string) string {
	if name == "" {
		return ""
	}
	return a.Dir + name + a.Ext
}
