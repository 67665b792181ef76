package recordstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE companies (
			id INTEGER PRIMARY KEY,
			employees INTEGER,
			name TEXT NOT NULL,
			domain TEXT,
			tags JSON
		)
	`)
	require.NoError(t, err)

	rows := []struct {
		id        int
		employees any
		name      string
		domain    any
		tags      any
	}{
		{1, 120, "Acme Inc", "acme.com", `["b2b"]`},
		{2, 0, "", nil, "[]"},
		{3, nil, "Globex", "", nil},
	}
	for _, r := range rows {
		_, err = db.Exec("INSERT INTO companies (id, employees, name, domain, tags) VALUES (?, ?, ?, ?, ?)",
			r.id, r.employees, r.name, r.domain, r.tags)
		require.NoError(t, err)
	}

	store, err := Open(context.Background(), db, SQLite, "companies")
	require.NoError(t, err)
	return db, store
}

func TestOpen_FieldsAndIdentifier(t *testing.T) {
	_, store := setupTestStore(t)

	assert.Equal(t, "company", store.ObjectNameSingular())
	assert.Equal(t, "id", store.IDField())

	fields := store.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, "name", fields[0].Metadata.FieldName, "label identifier comes first")
	assert.Equal(t, "companies.name", fields[0].FieldMetadataID)
	assert.Equal(t, FieldTypeText, fields[0].Type)
	assert.False(t, fields[0].ReadOnly)

	id, err := store.Field("id")
	require.NoError(t, err)
	assert.True(t, id.ReadOnly, "primary key is read-only")
	assert.Equal(t, FieldTypeNumber, id.Type)

	tags, err := store.Field("tags")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeRawJSON, tags.Type)

	_, err = store.Field("missing")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRecordsAndFieldValue(t *testing.T) {
	_, store := setupTestStore(t)

	records, err := store.Records(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "Acme Inc", records[0].Values["name"])

	assert.Equal(t, "Acme Inc", store.FieldValue("1", "name"))
	assert.Equal(t, int64(0), store.FieldValue("2", "employees"))
	assert.Nil(t, store.FieldValue("3", "employees"))
	assert.Nil(t, store.FieldValue("404", "name"), "unknown records read as nil")
}

func TestRecord_LoadsOnCacheMiss(t *testing.T) {
	_, store := setupTestStore(t)

	rec, err := store.Record(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Globex", rec.Values["name"])

	_, err = store.Record(context.Background(), "404")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecords_LoadedRecordsStayCached(t *testing.T) {
	db, store := setupTestStore(t)

	_, err := store.Records(context.Background(), 2)
	require.NoError(t, err)
	_, exp, ok := store.records.GetWithExpiration("1")
	require.True(t, ok)
	assert.True(t, exp.IsZero(), "loaded records never expire")

	_, err = store.Record(context.Background(), "3")
	require.NoError(t, err)
	_, exp, ok = store.records.GetWithExpiration("3")
	require.True(t, ok)
	assert.False(t, exp.IsZero(), "records fetched on a miss expire")

	// Loaded values are served without touching the database.
	require.NoError(t, db.Close())
	assert.Equal(t, "Acme Inc", store.FieldValue("1", "name"))
}

func TestStageValue_OverridesLoadedValue(t *testing.T) {
	db, store := setupTestStore(t)

	store.StageValue("1", "name", "Acme Corp")
	assert.Equal(t, "Acme Corp", store.FieldValue("1", "name"))

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM companies WHERE id = 1").Scan(&name))
	assert.Equal(t, "Acme Inc", name, "staged values are not persisted")
}

func TestStore_IsFieldValueEmpty(t *testing.T) {
	_, store := setupTestStore(t)
	_, err := store.Records(context.Background(), 10)
	require.NoError(t, err)

	name, err := store.Field("name")
	require.NoError(t, err)
	tags, err := store.Field("tags")
	require.NoError(t, err)

	assert.False(t, store.IsFieldValueEmpty(name, store.FieldValue("1", "name")))
	assert.True(t, store.IsFieldValueEmpty(name, store.FieldValue("2", "name")))
	assert.True(t, store.IsFieldValueEmpty(tags, store.FieldValue("2", "tags")))
	assert.True(t, store.IsFieldValueEmpty(tags, store.FieldValue("3", "tags")))
}

func TestOpen_SQLiteWithoutPrimaryKeyUsesRowID(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "rowid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE notes (title TEXT, body TEXT); INSERT INTO notes VALUES ('hello', 'world')`)
	require.NoError(t, err)

	store, err := Open(context.Background(), db, SQLite, "notes")
	require.NoError(t, err)

	records, err := store.Records(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "hello", store.FieldValue("1", "title"))
}

func TestOpen_UnknownTable(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = Open(context.Background(), db, SQLite, "nope")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "users", SQLite.quoteIdent("users"))
	assert.Equal(t, `"Users"`, PostgreSQL.quoteIdent("Users"))
	assert.Equal(t, "`order`", MySQL.quoteIdent("order"))
	assert.Equal(t, `"my""col"`, SQLite.quoteIdent(`my"col`))
	assert.Equal(t, "$2", PostgreSQL.placeholder(2))
	assert.Equal(t, "?", MySQL.placeholder(2))
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "company", singular("companies"))
	assert.Equal(t, "person", singular("person"))
	assert.Equal(t, "address", singular("addresses"))
	assert.Equal(t, "class", singular("class"))
	assert.Equal(t, "opportunity", singular("crm.opportunities"))
}
