package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownPlace  = errors.New("unknown place")
	ErrAmbiguous     = errors.New("ambiguous match")
	ErrTableNotFound = errors.New("table not found")
)

// AmbiguousError is returned when the exact pass matches more than one hotel.
// Candidates lets the caller issue a more specific query.
type AmbiguousError struct {
	Query      string
	Candidates []HotelRecord
}

func (e *AmbiguousError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, fmt.Sprintf("%d:%s", c.ID, c.Name))
	}
	return fmt.Sprintf("%d candidates for %q, consider a more specific hotel name: %s",
		len(e.Candidates), e.Query, strings.Join(names, ", "))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// TransportError reports a failed remote fetch: a network failure, a non-success
// status, or a payload that is not a list (API-level error).
type TransportError struct {
	Endpoint string
	Status   int    // 0 when no response was received
	Message  string // API error message, if the payload carried one
	Err      error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("transport: ")
	b.WriteString(e.Endpoint)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": api error: ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }
