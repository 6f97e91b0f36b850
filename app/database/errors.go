package database

import "errors"

var ErrFeedNotFound = errors.New("feed not found")
