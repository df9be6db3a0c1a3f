package models

import "time"

// GeofenceStatus is the outcome of testing one building against a user position.
type GeofenceStatus struct {
	IsWithinGeofence bool      `json:"is_within_geofence"`
	DistanceMeters   float64   `json:"distance_meters"`
	Building         Building  `json:"building"`
	Timestamp        time.Time `json:"timestamp"`
}

// GeofenceResponse aggregates the statuses of one geofence check.
// Buildings is sorted ascending by distance.
type GeofenceResponse struct {
	UserCoordinates Coordinates      `json:"user_coordinates"`
	RadiusMeters    float64          `json:"radius_meters"`
	Timestamp       time.Time        `json:"timestamp"`
	Buildings       []GeofenceStatus `json:"buildings_within_geofence"`
}

// IsNearAnyBuilding reports whether any evaluated building contains the user.
func (r *GeofenceResponse) IsNearAnyBuilding() bool {
	for _, status := range r.Buildings {
		if status.IsWithinGeofence {
			return true
		}
	}
	return false
}

// NearestBuilding returns the closest evaluated building, if any.
func (r *GeofenceResponse) NearestBuilding() (GeofenceStatus, bool) {
	if len(r.Buildings) == 0 {
		return GeofenceStatus{}, false
	}
	return r.Buildings[0], true
}

// WithinCount returns the number of buildings whose geofence contains the user.
func (r *GeofenceResponse) WithinCount() int {
	count := 0
	for _, status := range r.Buildings {
		if status.IsWithinGeofence {
			count++
		}
	}
	return count
}
