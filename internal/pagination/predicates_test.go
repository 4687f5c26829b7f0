package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPredicatesEmpty(t *testing.T) {
	var p Predicates

	sql, args := p.SQL()

	require.Empty(t, sql)
	require.Nil(t, args)
	require.Zero(t, p.Len())
}

func TestPredicatesComposeInOrder(t *testing.T) {
	var p Predicates
	p.Add("un.user_id = ?", "u1").
		AddIf(false, "un.is_read = ?", false).
		AddIf(true, "n.severity = ?", "warning").
		Add("n.created_at BETWEEN ? AND ?", "a", "b")

	sql, args := p.SQL()

	require.Equal(t, 3, p.Len())
	require.Equal(t, "(un.user_id = ?) AND (n.severity = ?) AND (n.created_at BETWEEN ? AND ?)", sql)
	require.Equal(t, []any{"u1", "warning", "a", "b"}, args)
}

func TestPredicatesSQLReturnsCopyOfArgs(t *testing.T) {
	var p Predicates
	p.Add("a = ?", 1)

	_, args := p.SQL()
	args[0] = 99

	_, again := p.SQL()
	require.Equal(t, []any{1}, again)
}
