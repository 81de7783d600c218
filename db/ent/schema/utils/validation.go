package utils

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrValidation = errors.New("validation failed")

func EnumValidator(allowed ...string) func(string) error {
	set := map[string]struct{}{}
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(s string) error {
		if _, ok := set[s]; ok {
			return nil
		}
		return fmt.Errorf("%w: %q is not allowed", ErrValidation, s)
	}
}

// OptionalMatch accepts the empty string or a full match of re.
func OptionalMatch(re *regexp.Regexp, msg string) func(string) error {
	return func(s string) error {
		if s == "" || re.MatchString(s) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrValidation, msg)
	}
}
