package svc

import "errors"

// ErrNoChainsEnabled means the config enables no execution chain.
var ErrNoChainsEnabled = errors.New("no chains enabled")
