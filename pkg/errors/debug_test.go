package errors

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestDumpNil(t *testing.T) {
	require.Equal(t, ErrorDump{}, Dump(nil))
}

func TestDumpFlattensChain(t *testing.T) {
	cause := fmt.Errorf("driver says no")
	err := Wrap(CodeDependency, cause, "create profile")

	d := Dump(err)
	require.Equal(t, CodeDependency, d.Code)
	require.Equal(t, "DEPENDENCY_ERROR: create profile", d.TopMessage)
	require.Len(t, d.Chain, 2)
	require.Empty(t, d.PGCode)
}

func TestDumpExtractsPostgresDetail(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23505",
		Constraint: "ux_taste_profiles_active",
		Table:      "taste_profiles",
		Message:    "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeDependency, pqErr, "create profile")

	d := Dump(err)
	require.Equal(t, "23505", d.PGCode)
	require.Equal(t, "ux_taste_profiles_active", d.PGConstraint)
	require.Equal(t, "taste_profiles", d.PGTable)
	require.Equal(t, "duplicate key value violates unique constraint", d.PGMessage)
}
