package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	require.Equal(t, 3, TotalPages(25, 10))
	require.Equal(t, 0, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 11, TotalPages(101, 10))
	require.Equal(t, 0, TotalPages(5, 0))
}

func TestNewPagination(t *testing.T) {
	meta := NewPagination(2, 10, 25)
	require.Equal(t, Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3}, meta)
}
