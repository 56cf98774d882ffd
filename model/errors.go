package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEventDoesNotExist  = errors.New("event does not exist")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrNotEventOwner      = errors.New("not the event owner")
	ErrToggleInFlight     = errors.New("toggle already in flight for this event")
	ErrPersistenceFailure = errors.New("persistence failure")
)

// ValidationError carries field-level messages for a rejected form
// submission. It is returned before any persistence call happens.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range fields {
		b.WriteString("; ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(v[f])
	}
	return b.String()
}
