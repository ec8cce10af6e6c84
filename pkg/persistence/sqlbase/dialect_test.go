package sqlbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	query := `SELECT data FROM executions WHERE workflow_id = ? LIMIT ? OFFSET ?`

	assert.Equal(t, query, SQLite.Rebind(query))
	assert.Equal(t, `SELECT data FROM executions WHERE workflow_id = $1 LIMIT $2 OFFSET $3`, Postgres.Rebind(query))
	assert.Equal(t, "SELECT 1", Postgres.Rebind("SELECT 1"))
}
