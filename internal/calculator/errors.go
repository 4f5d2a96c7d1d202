package calculator

import "fmt"

// ValidationError reports invalid calculator input: bad items, bad shares,
// a missing payer, and so on. Callers should treat it as a 4xx-class error.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) error {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantError reports a broken engine invariant, e.g. a residual that does
// not reconcile or a settlement whose balances do not sum to zero. It always
// indicates a calculator defect, never bad user input.
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) error {
	return InvariantError{Msg: fmt.Sprintf(format, args...)}
}
