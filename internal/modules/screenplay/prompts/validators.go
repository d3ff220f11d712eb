package prompts

import (
	"fmt"
	"strings"
)

// Validator rejects an Input before it is rendered into a prompt.
type Validator func(Input) error

// MaxScenesPerRequest bounds how many scenes one prompt may ask for.
const MaxScenesPerRequest = 20

func RequireNonEmpty(field string, get func(Input) string) Validator {
	return check(field, get, "required", func(v string) bool { return strings.TrimSpace(v) != "" })
}

func RequirePositive(field string, get func(Input) int) Validator {
	return check(field, get, "must be positive", func(v int) bool { return v > 0 })
}

func RequireAtMost(field string, limit int, get func(Input) int) Validator {
	return check(field, get, fmt.Sprintf("must be at most %d", limit), func(v int) bool { return v <= limit })
}

func check[T any](field string, get func(Input) T, problem string, ok func(T) bool) Validator {
	return func(in Input) error {
		if get == nil {
			return fmt.Errorf("validator for %s: getter is nil", field)
		}
		if !ok(get(in)) {
			return fmt.Errorf("%s %s", field, problem)
		}
		return nil
	}
}
