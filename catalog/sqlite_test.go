package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteCatalog_Conformance(t *testing.T) {
	c, err := NewSQLiteCatalog(":memory:")
	require.NoError(t, err)
	defer c.Close()
	runConformance(t, c)
}

func TestSQLiteCatalog_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/catalog.db"

	c1, err := NewSQLiteCatalog(path)
	require.NoError(t, err)
	require.NoError(t, c1.Register(t.Context(), "orders", "/data/orders", 5))
	require.NoError(t, c1.Close())

	c2, err := NewSQLiteCatalog(path)
	require.NoError(t, err)
	defer c2.Close()

	e, err := c2.Lookup(t.Context(), "orders")
	require.NoError(t, err)
	require.Equal(t, "/data/orders", e.RootPath)
	require.EqualValues(t, 5, e.LastKnownVersion)
}
