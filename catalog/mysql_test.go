package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMySQLCatalog_Conformance runs the shared Catalog contract against a
// real MySQL/MariaDB server. Set TEST_MYSQL_DSN to run it, e.g.:
//
//	export TEST_MYSQL_DSN="user:pass@tcp(localhost:3306)/test_db"
func TestMySQLCatalog_Conformance(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL tests: TEST_MYSQL_DSN not set")
	}

	c, err := NewMySQLCatalog(dsn)
	require.NoError(t, err)
	defer c.Close()

	_, _ = c.db.Exec("DELETE FROM tables")
	runConformance(t, c)
}
