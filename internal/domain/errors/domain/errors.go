// Package domain provides domain-specific error definitions and utilities.
package domain

import "errors"

// Source-related errors.
var (
	ErrEmptySource    = errors.New("source is empty")
	ErrSourceTooLarge = errors.New("source exceeds the configured size limit")
)

// Report-related errors.
var (
	ErrReportGeneration  = errors.New("report generation failed")
	ErrReportUnavailable = errors.New("report engine unavailable")
	ErrPersistence       = errors.New("report persistence failed")
)

// General domain errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
