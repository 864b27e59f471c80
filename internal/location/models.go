package location

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidLocation is returned when an input carries no usable location
// signal at all.
var ErrInvalidLocation = errors.New("invalid location input")

// Point is the canonical coordinate pair. Coordinates are always carried in
// named fields; positional arrays exist only at the JSON boundary.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CanonicalLocation is a fully resolved location used by every downstream
// component.
type CanonicalLocation struct {
	Address string `json:"address"`
	PlaceID string `json:"place_id,omitempty"`
	Point
}

// Input is a caller-supplied location in any of the accepted shapes:
// a free-text string, a [lat, lng] array, or an object with address,
// place_id, lat/lng, latitude/longitude, or coordinates fields.
type Input struct {
	Address   string
	PlaceID   string
	Latitude  *float64
	Longitude *float64
}

// IsUsable reports whether the input carries at least one location signal.
func (in *Input) IsUsable() bool {
	return in.Address != "" || in.PlaceID != "" || in.HasCoordinates()
}

// HasCoordinates reports whether both coordinate fields were supplied.
func (in *Input) HasCoordinates() bool {
	return in.Latitude != nil && in.Longitude != nil
}

type inputObject struct {
	Address     string          `json:"address"`
	PlaceID     string          `json:"place_id"`
	Lat         *float64        `json:"lat"`
	Lng         *float64        `json:"lng"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// UnmarshalJSON accepts the supported input shapes. Arrays are interpreted as
// [lat, lng].
func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		in.Address = strings.TrimSpace(s)
		return nil

	case '[':
		lat, lng, err := parseCoordinateArray(data)
		if err != nil {
			return err
		}
		in.Latitude, in.Longitude = lat, lng
		return nil

	case '{':
		var obj inputObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		in.Address = strings.TrimSpace(obj.Address)
		in.PlaceID = strings.TrimSpace(obj.PlaceID)
		in.Latitude = firstNonNil(obj.Latitude, obj.Lat)
		in.Longitude = firstNonNil(obj.Longitude, obj.Lng)

		if !in.HasCoordinates() && len(obj.Coordinates) > 0 {
			lat, lng, err := parseCoordinates(obj.Coordinates)
			if err != nil {
				return err
			}
			in.Latitude, in.Longitude = lat, lng
		}
		return nil
	}

	return ErrInvalidLocation
}

// parseCoordinates handles both {"lat": .., "lng": ..} objects and
// [lat, lng] arrays inside a coordinates field.
func parseCoordinates(data json.RawMessage) (*float64, *float64, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, nil
	}

	if trimmed[0] == '[' {
		return parseCoordinateArray(trimmed)
	}

	var obj struct {
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, nil, err
	}
	return firstNonNil(obj.Lat, obj.Latitude), firstNonNil(obj.Lng, obj.Longitude), nil
}

func parseCoordinateArray(data []byte) (*float64, *float64, error) {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, nil, err
	}
	if len(arr) != 2 {
		return nil, nil, ErrInvalidLocation
	}
	return &arr[0], &arr[1], nil
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
