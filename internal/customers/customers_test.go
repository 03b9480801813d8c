package customers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFilterWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    SearchFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty filter is a no-op",
			filter:    SearchFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "name matches first or last name case-insensitively",
			filter:    SearchFilter{Name: "Ali"},
			wantWhere: " WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1)",
			wantArgs:  []any{"%ali%"},
		},
		{
			name:      "email is an exact match",
			filter:    SearchFilter{Email: "a@b.com"},
			wantWhere: " WHERE email = $1",
			wantArgs:  []any{"a@b.com"},
		},
		{
			name:      "phone is a substring match",
			filter:    SearchFilter{Phone: "555"},
			wantWhere: " WHERE phone LIKE $1",
			wantArgs:  []any{"%555%"},
		},
		{
			name:      "all filters AND together",
			filter:    SearchFilter{Name: "Ali", Email: "a@b.com", Phone: "555"},
			wantWhere: " WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1) AND email = $2 AND phone LIKE $3",
			wantArgs:  []any{"%ali%", "a@b.com", "%555%"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			where, args := tc.filter.whereClause()
			assert.Equal(t, tc.wantWhere, where)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}
