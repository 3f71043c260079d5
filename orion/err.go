package orion

import "fmt"

// Handle panics if err is not nil. The panic value is an error wrapping err.
func Handle(err error, desc string, args ...any) {
	if err != nil {
		panic(fmt.Errorf("%s: %w", fmt.Sprintf(desc, args...), err))
	}
}
