package server

import "gitlab.com/tozd/go/errors"

// Sentinel errors for server lifecycle conditions.
var (
	// ErrAlreadyRunning is returned by Start when the server is listening.
	ErrAlreadyRunning = errors.Base("server already running")

	// ErrPortInUse is returned by Start when the address is taken.
	ErrPortInUse = errors.Base("port already in use")
)
