package service

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"github.com/antarn88/userserver/internal/domain/user"
)

// ErrInvalidSortField rejects sort keys outside the allow-list below.
// The field name is resolved through typed comparators only; it is never
// interpolated into a query.
var ErrInvalidSortField = errors.New("unsupported sort field")

type comparator func(a, b user.User) int

var sortFields = map[string]comparator{
	"id": func(a, b user.User) int {
		return strings.Compare(a.ID, b.ID)
	},
	"name": func(a, b user.User) int {
		return strings.Compare(a.Name, b.Name)
	},
	"email": func(a, b user.User) int {
		return strings.Compare(a.Email, b.Email)
	},
	"age": func(a, b user.User) int {
		return cmp.Compare(a.Age, b.Age)
	},
}

// parseSortSpec resolves a sort spec like "name" or "-age" into a single
// comparator. Ordering is made deterministic by breaking ties on id
// ascending regardless of direction.
func parseSortSpec(spec string) (comparator, error) {
	field := spec
	desc := false

	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}

	byField, ok := sortFields[field]

	if !ok || field == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortField, spec)
	}

	return func(a, b user.User) int {
		c := byField(a, b)

		if desc {
			c = -c
		}

		if c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	}, nil
}
