package wifiscand

import "errors"

var (
	ErrAdapterAbsent = errors.New("no wireless adapter found")
	ErrScanStart     = errors.New("adapter rejected scan request")
	ErrScanResults   = errors.New("could not read scan results")
	ErrPoolStopped   = errors.New("scan pool is not running")
)
