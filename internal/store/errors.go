package store

import "errors"

var (
	errUnknownUser = errors.New("user does not exist")
	errUnknownPlan = errors.New("plan does not exist")
)
