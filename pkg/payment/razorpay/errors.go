package razorpay

import "errors"

var (
	ErrInvalidConfig = errors.New("razorpay: key id and key secret are required")

	// ErrInvalidRequest is returned for 400 responses
	ErrInvalidRequest = errors.New("razorpay: invalid request")

	// ErrUnauthorized is returned when the API rejects the credentials
	ErrUnauthorized = errors.New("razorpay: unauthorized")

	ErrNotFound = errors.New("razorpay: resource not found")

	// ErrGateway covers 5xx and unexpected responses
	ErrGateway = errors.New("razorpay: gateway error")

	ErrNetworkError = errors.New("razorpay: network error")

	ErrInvalidSignature = errors.New("razorpay: invalid webhook signature")
)
