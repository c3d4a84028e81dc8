// Package multierr collects several errors into one.
package multierr

import (
	e "errors"
	"fmt"
	"strings"

	"github.com/juju/errors"
)

type MultiErr struct {
	errors []error
}

func New() *MultiErr {
	return &MultiErr{}
}

// Add records err. nil errors are ignored.
func (m *MultiErr) Add(err error) {
	if err == nil {
		return
	}

	m.errors = append(m.errors, err)
}

// Err returns nil when no errors were added, the error itself when exactly
// one was added, and otherwise a new error listing the stacks of all of them.
func (m *MultiErr) Err() error {
	switch len(m.errors) {
	case 0:
		return nil
	case 1:
		return m.errors[0]
	}

	var sb strings.Builder

	for i, err := range m.errors {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(fmt.Sprintf("%d. ", i+1))
		sb.WriteString(errors.ErrorStack(err))
	}

	return errors.Errorf("There were multiple errors:\n%s", sb.String())
}

// Is unwraps juju annotations before comparing err with target.
func Is(err, target error) bool {
	return e.Is(errors.Cause(err), target)
}
