// models/errors.go
package models

import "errors"

// Store and service level errors. Controllers translate these into HTTP
// status codes; anything else is an internal error and surfaces as a
// generic 500 with the cause logged server-side only.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
