package utils

import "errors"

// ErrorRecordNotFound is the domain-level not-found error. Model lookups
// translate gorm.ErrRecordNotFound into it so handlers can map a missing
// job, file or schedule to 404 without leaking storage internals.
var ErrorRecordNotFound = errors.New("record not found")
