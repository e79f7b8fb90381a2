package common

import "errors"

// ErrRecordNotFound is returned by every store lookup that finds no row.
var ErrRecordNotFound = errors.New("record not found")
