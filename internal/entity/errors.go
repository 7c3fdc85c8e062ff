package entity

import "errors"

var (
	ErrDemandaNotFound    = errors.New("demanda not found")
	ErrInvalidDemandaID   = errors.New("invalid demanda id")
	ErrInvalidDemandaData = errors.New("invalid demanda data")
	ErrInvalidEmployeeID  = errors.New("invalid employee id")
	ErrMissingStatus      = errors.New("status is required")
)
