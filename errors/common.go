package errors

import "fmt"

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid request body", err)
}

func ValidationFailedErr(err error) error {
	return E(Invalid, "validation failed", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// UpstreamErr returns a formated error for a non-success API envelope
func UpstreamErr(code, message string) error {
	return E(Upstream, fmt.Sprintf("api responded %s: %s", code, message), nil)
}

// TransportErr wraps a network level failure against the given endpoint
func TransportErr(endpoint string, err error) error {
	return E(Transport, fmt.Sprintf("request to %s failed", endpoint), err)
}
