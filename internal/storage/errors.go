package storage

import "shield/pkg/platform/sentinel"

// ErrNotFound keeps absent-key reporting consistent across adapters.
var ErrNotFound = sentinel.ErrNotFound
