package chart

import "errors"

var (
	// ErrLocationNotFound is returned when a place query resolves to nothing.
	ErrLocationNotFound = errors.New("location not found")
	// ErrGeocodingTransport covers network, timeout and upstream status failures while geocoding.
	ErrGeocodingTransport = errors.New("geocoding transport error")
	// ErrChartComputation covers malformed birth input and ephemeris failures.
	ErrChartComputation = errors.New("chart computation error")
)
