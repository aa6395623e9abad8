package repositories

import "errors"

var ErrNotFound = errors.New("repository config not found")
