package service

import (
	"fmt"
	"math"
	"strings"
)

const (
	earthRadiusMiles = 3959.0
	feetPerMile      = 5280
)

// SubwayStation is a station from the open-data subway dataset
type SubwayStation struct {
	Name      string
	Routes    string // space separated, e.g. "A C E"
	Latitude  float64
	Longitude float64
}

// BusStop is a stop from the open-data bus dataset with its routes aggregated
type BusStop struct {
	StopID    string
	Name      string
	Routes    string // comma separated, sorted
	Latitude  float64
	Longitude float64
}

// NearbyStop is the closest transit stop to a clinic
type NearbyStop struct {
	Name     string
	Routes   string
	Distance float64 // miles
}

// Feet returns the distance rounded to whole feet
func (n NearbyStop) Feet() int {
	return int(math.Round(n.Distance * feetPerMile))
}

// HaversineMiles returns the great-circle distance between two points in miles
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NearestStation returns the closest subway station, or nil if there are none
func NearestStation(lat, lon float64, stations []SubwayStation) *NearbyStop {
	var nearest *NearbyStop
	for _, s := range stations {
		d := HaversineMiles(lat, lon, s.Latitude, s.Longitude)
		if nearest == nil || d < nearest.Distance {
			nearest = &NearbyStop{Name: s.Name, Routes: s.Routes, Distance: d}
		}
	}
	return nearest
}

// NearestBusStop returns the closest bus stop, or nil if there are none
func NearestBusStop(lat, lon float64, stops []BusStop) *NearbyStop {
	var nearest *NearbyStop
	for _, s := range stops {
		d := HaversineMiles(lat, lon, s.Latitude, s.Longitude)
		if nearest == nil || d < nearest.Distance {
			nearest = &NearbyStop{Name: s.Name, Routes: s.Routes, Distance: d}
		}
	}
	return nearest
}

func formatDistance(n *NearbyStop) string {
	if feet := n.Feet(); feet < 1000 {
		return fmt.Sprintf("%d ft", feet)
	}
	return fmt.Sprintf("%.2f mi", n.Distance)
}

// FormatSubway renders a station as "A/C at 145 St (420 ft)"
func FormatSubway(n *NearbyStop) string {
	if n == nil {
		return ""
	}
	routes := strings.Join(strings.Fields(n.Routes), "/")
	return fmt.Sprintf("%s at %s (%s)", routes, n.Name, formatDistance(n))
}

// FormatBus renders a stop as "M1, M2 at 5 Av/E 23 St (0.12 mi)"
func FormatBus(n *NearbyStop) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%s at %s (%s)", n.Routes, n.Name, formatDistance(n))
}
