package backend

import "fmt"

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: bad status: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: bad status: %s: %s", e.Method, e.URL, e.Status, e.Detail)
}

// ContractError reports a response that is missing a field the client depends on.
type ContractError struct {
	Endpoint string
	Field    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s missing in %s response", e.Field, e.Endpoint)
}
