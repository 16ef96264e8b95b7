package services

import "errors"

// ErrNotFound is returned when a referenced user, product or challenge
// does not exist. Callers surface it as a 404 rather than failing a
// whole batch.
var ErrNotFound = errors.New("not found")
