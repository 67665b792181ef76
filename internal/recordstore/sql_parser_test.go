package recordstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		table   string
		columns []string
		limit   int
		offset  int
		wantErr bool
	}{
		{name: "simple select", query: "SELECT * FROM companies", table: "companies"},
		{name: "columns and where", query: "select id, name from people where name = 'eric'", table: "people", columns: []string{"id", "name"}},
		{name: "schema qualified", query: "SELECT * FROM crm.companies", table: "crm.companies"},
		{name: "trailing semicolon", query: "SELECT * FROM companies;", table: "companies"},
		{name: "limit", query: "SELECT * FROM companies ORDER BY name LIMIT 5", table: "companies", limit: 5},
		{name: "limit offset", query: "SELECT * FROM companies LIMIT 5 OFFSET 10", table: "companies", limit: 5, offset: 10},
		{name: "multiple statements", query: "SELECT * FROM a; DELETE FROM a", wantErr: true},
		{name: "not a select", query: "DELETE FROM companies", wantErr: true},
		{name: "join", query: "SELECT * FROM a JOIN b ON a.id = b.a_id", wantErr: true},
		{name: "subquery", query: "SELECT * FROM (SELECT * FROM a) t", wantErr: true},
		{name: "no from", query: "SELECT 1", wantErr: true},
		{name: "group by", query: "SELECT domain FROM companies GROUP BY domain", wantErr: true},
		{name: "distinct", query: "SELECT DISTINCT domain FROM companies", wantErr: true},
		{name: "computed column", query: "SELECT upper(name) FROM companies", wantErr: true},
		{name: "alias", query: "SELECT name AS n FROM companies", wantErr: true},
		{name: "empty", query: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.query)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, q.Table)
			assert.Equal(t, tt.columns, q.Columns)
			assert.Equal(t, tt.limit, q.Limit)
			assert.Equal(t, tt.offset, q.Offset)
		})
	}
}

func TestQueryClauses_QuotesPerDialect(t *testing.T) {
	q, err := ParseQuery("SELECT * FROM companies WHERE name = 'O''Hare' ORDER BY employees DESC")
	require.NoError(t, err)

	where, orderBy, err := q.clauses(PostgreSQL)
	require.NoError(t, err)
	assert.Contains(t, where, `"name"`)
	assert.Contains(t, where, `'O''Hare'`)
	assert.Contains(t, orderBy, `"employees"`)
	assert.Contains(t, orderBy, "DESC")

	where, _, err = q.clauses(MySQL)
	require.NoError(t, err)
	assert.Contains(t, where, "`name`")
}

func TestNarrow_AppliesQueryToRecords(t *testing.T) {
	_, store := setupTestStore(t)

	q, err := ParseQuery("SELECT id, domain, name FROM companies WHERE name <> '' ORDER BY name DESC LIMIT 5")
	require.NoError(t, err)
	require.NoError(t, store.Narrow(q))

	records, err := store.Records(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[0].ID, "Globex sorts before Acme Inc descending")
	assert.Equal(t, "1", records[1].ID)

	fields := store.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "name", fields[0].Metadata.FieldName)
	assert.Equal(t, "id", fields[1].Metadata.FieldName)
	assert.Equal(t, "domain", fields[2].Metadata.FieldName)

	_, err = store.Field("tags")
	assert.NoError(t, err, "hidden columns are still known")
}

func TestNarrow_LimitAndOffset(t *testing.T) {
	_, store := setupTestStore(t)

	q, err := ParseQuery("SELECT * FROM companies LIMIT 1 OFFSET 1")
	require.NoError(t, err)
	require.NoError(t, store.Narrow(q))

	records, err := store.Records(context.Background(), 500)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)
	assert.Len(t, store.Fields(), 5)

	records, err = store.Records(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records, "the caller's limit still caps the query")
}

func TestNarrow_Rejects(t *testing.T) {
	_, store := setupTestStore(t)

	q, err := ParseQuery("SELECT * FROM people")
	require.NoError(t, err)
	assert.Error(t, store.Narrow(q))

	q, err = ParseQuery("SELECT nope FROM companies")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Narrow(q), ErrUnknownField)
}
