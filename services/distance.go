package services

import (
	"math"
)

const earthRadiusKm = 6371

// Coordinate is a geographic point
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryQuote is the billable result of a distance calculation
type DeliveryQuote struct {
	DistanceKm float64 `json:"distance_km"` // raw great-circle distance
	BilledKm   int     `json:"billed_km"`   // rounded up to whole kilometers
	Fee        float64 `json:"fee"`
}

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ComputeDeliveryFee quotes the pickup/delivery surcharge for an order. A nil
// pickup coordinate (manual address entry without geocoding) quotes zero
// distance and zero fee rather than failing. The distance is always rounded
// UP to the next whole kilometer before billing, so a 0.1 km trip bills as
// 1 km.
func ComputeDeliveryFee(pickup *Coordinate, origin Coordinate, ratePerKm float64) DeliveryQuote {
	if pickup == nil {
		return DeliveryQuote{}
	}

	distance := HaversineKm(pickup.Lat, pickup.Lng, origin.Lat, origin.Lng)
	billed := int(math.Ceil(distance))

	return DeliveryQuote{
		DistanceKm: distance,
		BilledKm:   billed,
		Fee:        float64(billed) * ratePerKm,
	}
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
