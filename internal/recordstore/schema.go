package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type column struct {
	name      string
	sqlType   string
	nullable  bool
	key       bool
	generated bool
}

// loadColumns introspects a table's columns in definition order.
func loadColumns(ctx context.Context, db *sql.DB, dialect Dialect, table string) ([]column, error) {
	switch dialect {
	case SQLite:
		return loadColumnsSQLite(ctx, db, table)
	case PostgreSQL:
		return loadColumnsPostgreSQL(ctx, db, table)
	case MySQL:
		return loadColumnsMySQL(ctx, db, table)
	default:
		return nil, fmt.Errorf("unsupported database type: %v", dialect)
	}
}

func loadColumnsSQLite(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	// table_xinfo also reports generated columns (hidden = 2 or 3)
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_xinfo(%s)", SQLite.quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []column
	for rows.Next() {
		var (
			col       column
			cid       int
			notNull   int
			dfltValue sql.NullString
			pk        int
			hidden    int
		)
		if err := rows.Scan(&cid, &col.name, &col.sqlType, &notNull, &dfltValue, &pk, &hidden); err != nil {
			return nil, err
		}
		if hidden == 1 {
			continue
		}
		col.nullable = notNull == 0
		col.key = pk > 0
		col.generated = hidden == 2 || hidden == 3
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func loadColumnsPostgreSQL(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	schema := "public"
	rel := table
	if dot := strings.IndexByte(rel, '.'); dot != -1 {
		schema = rel[:dot]
		rel = rel[dot+1:]
	}

	rows, err := db.QueryContext(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable, c.is_generated,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
					AND tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND kcu.column_name = c.column_name
			)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`, schema, rel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []column
	for rows.Next() {
		var col column
		var nullable, generated string
		if err := rows.Scan(&col.name, &col.sqlType, &nullable, &generated, &col.key); err != nil {
			return nil, err
		}
		col.nullable = strings.EqualFold(nullable, "yes")
		col.generated = strings.EqualFold(generated, "always")
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func loadColumnsMySQL(ctx context.Context, db *sql.DB, table string) ([]column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_key, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []column
	for rows.Next() {
		var col column
		var nullable, key, extra string
		if err := rows.Scan(&col.name, &col.sqlType, &nullable, &key, &extra); err != nil {
			return nil, err
		}
		col.nullable = strings.EqualFold(nullable, "yes")
		col.key = key == "PRI"
		col.generated = strings.Contains(strings.ToUpper(extra), "GENERATED")
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
