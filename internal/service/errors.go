package service

import "errors"

var (
	// ErrUnauthenticated means no identity was supplied; the workflow does
	// not start and nothing is written.
	ErrUnauthenticated = errors.New("no authenticated identity")

	// ErrInvalidInput covers an empty passenger list, a missing passenger
	// name, or an unknown room/passenger type, surfaced before any write.
	ErrInvalidInput = errors.New("invalid booking input")

	// ErrCodeCollision is returned when booking code generation kept
	// colliding after the bounded retry budget.
	ErrCodeCollision = errors.New("could not generate a unique booking code")
)
