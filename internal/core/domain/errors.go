package domain

import "errors"

// Failure taxonomy. Only PermissionDenied and LocationUnavailable reach the user as
// explicit status; everything else degrades to "showing last known".
var (
	ErrPermissionDenied    = errors.New("permission to access location was denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrGeocodeFailure      = errors.New("reverse geocoding failed")
	ErrSearchService       = errors.New("places search failed")
	ErrCacheIO             = errors.New("snapshot cache i/o failed")
)

// Input and action errors.
var (
	ErrInvalidCoordinate  = errors.New("coordinate out of range")
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrNoCoordinate       = errors.New("no known coordinate")
	ErrNotEmergencyNumber = errors.New("not a configured emergency number")
	ErrNoClients          = errors.New("no connected client")
)

// FailureKind is the taxonomy label of an error, used in logs and metrics.
type FailureKind string

const (
	KindNone                FailureKind = ""
	KindPermissionDenied    FailureKind = "PermissionDenied"
	KindLocationUnavailable FailureKind = "LocationUnavailable"
	KindGeocodeFailure      FailureKind = "GeocodeFailure"
	KindSearchService       FailureKind = "SearchServiceFailure"
	KindCacheIO             FailureKind = "CacheIOFailure"
	KindOther               FailureKind = "Other"
)

// KindOf classifies err. A nil error has KindNone.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrLocationUnavailable):
		return KindLocationUnavailable
	case errors.Is(err, ErrGeocodeFailure):
		return KindGeocodeFailure
	case errors.Is(err, ErrSearchService):
		return KindSearchService
	case errors.Is(err, ErrCacheIO):
		return KindCacheIO
	}
	return KindOther
}

// IsUserVisible reports whether err should be surfaced as explicit status.
func IsUserVisible(err error) bool {
	kind := KindOf(err)
	return kind == KindPermissionDenied || kind == KindLocationUnavailable
}

// UserMessage is the status line shown for a user-visible failure, or "" otherwise.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindPermissionDenied:
		return "Permission to access location was denied"
	case KindLocationUnavailable:
		return "Current location is unavailable"
	}
	return ""
}
