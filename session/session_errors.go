package session

import "errors"

var (
	OperationInFlightErr = errors.New("another session operation is in flight")
	NotAuthenticatedErr  = errors.New("not authenticated")
	EmptyTokenErr        = errors.New("backend returned an empty token")
)
