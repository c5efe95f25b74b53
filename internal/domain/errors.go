package domain

import "errors"

// ErrStoreUnavailable wraps transport-level store failures so callers can
// distinguish "no data" from "couldn't ask". Retrying is a caller concern.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrMalformedRecord marks a record or incoming sample with an unknown
// type or missing fields. Such items are skipped and counted, never fatal
// to a batch.
var ErrMalformedRecord = errors.New("malformed record")
