package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable: the upstream could not be reached, timed out or answered non-2xx.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedData: the upstream answered but no valid (date, value) rows could be read.
	ErrMalformedData = errors.New("malformed data")
	// ErrInsufficientRange: fewer than two rows where a latest-vs-previous delta is needed.
	ErrInsufficientRange = errors.New("insufficient range: at least 2 rows required")
	// ErrAnchorUnspecified: overlay requested without choosing first or last anchor.
	ErrAnchorUnspecified = errors.New("overlay anchor must be first or last")
	// ErrZeroAnchor: a series is zero at the anchor row and cannot be rebased.
	ErrZeroAnchor = errors.New("rebase anchor value is zero")
	// ErrUnknownAsset: overlay or price requested for an unconfigured asset.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrPricesDisabled: no live price source is configured.
	ErrPricesDisabled = errors.New("live prices disabled")
	// ErrUnknownComponent: component requested for a label outside the catalog.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrStartOutOfRange: start date precedes the earliest supported date.
	ErrStartOutOfRange = errors.New("start date out of range")
)

// SourceError classifies a failed fetch. errors.Is matches both Kind and the cause.
type SourceError struct {
	SeriesID string
	Kind     error
	Err      error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.SeriesID, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.SeriesID)
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable wraps err as ErrSourceUnavailable for seriesID.
func Unavailable(seriesID string, err error) error {
	return &SourceError{SeriesID: seriesID, Kind: ErrSourceUnavailable, Err: err}
}

// Malformed wraps err as ErrMalformedData for seriesID.
func Malformed(seriesID string, err error) error {
	return &SourceError{SeriesID: seriesID, Kind: ErrMalformedData, Err: err}
}
