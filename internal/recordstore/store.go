package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownField   = errors.New("unknown field")
)

const (
	recordTTL     = 5 * time.Minute
	cleanupPeriod = 10 * time.Minute
	sqliteRowID   = "rowid"
)

// Record is one row, keyed by its id column rendered as a string.
type Record struct {
	ID     string
	Values map[string]any
}

// Store serves the records of one table. Loaded rows are cached; committed
// edits are staged in memory on top of the cached values.
type Store struct {
	db                 *sql.DB
	dialect            Dialect
	table              string
	objectNameSingular string
	idColumn           string
	fields             []FieldDefinition
	// visible narrows fields to a query's columns; nil shows them all.
	visible []FieldDefinition

	where, orderBy string
	limit, offset  int

	records *cache.Cache

	mu     sync.RWMutex
	staged map[string]map[string]any // record id -> field name -> value
}

// Open introspects table and returns a store for its records.
func Open(ctx context.Context, db *sql.DB, dialect Dialect, table string) (*Store, error) {
	if table == "" {
		return nil, fmt.Errorf("table name is required")
	}

	columns, err := loadColumns(ctx, db, dialect, table)
	if err != nil {
		return nil, fmt.Errorf("failed to load table schema: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("failed to load table schema: table %s not found", table)
	}

	s := &Store{
		db:                 db,
		dialect:            dialect,
		table:              table,
		objectNameSingular: singular(table),
		records:            cache.New(recordTTL, cleanupPeriod),
		staged:             make(map[string]map[string]any),
	}

	for _, col := range columns {
		if col.key && s.idColumn == "" {
			s.idColumn = col.name
		}
		def := FieldDefinition{
			FieldMetadataID: table + "." + col.name,
			Label:           labelize(col.name),
			Type:            fieldTypeFromSQL(col.sqlType),
			Metadata: FieldMetadata{
				FieldName:          col.name,
				ObjectNameSingular: s.objectNameSingular,
				Nullable:           col.nullable,
			},
			ReadOnly: col.key || col.generated,
		}
		if def.Type == FieldTypeSelect || def.Type == FieldTypeMultiSelect {
			def.Metadata.Options = enumOptions(col.sqlType)
		}
		s.fields = append(s.fields, def)
	}

	if s.idColumn == "" {
		if dialect != SQLite {
			return nil, fmt.Errorf("failed to load table schema: no primary key found on %s", table)
		}
		s.idColumn = sqliteRowID
	}
	s.fields = labelIdentifierFirst(s.fields)

	return s, nil
}

// Table returns the table the store reads from.
func (s *Store) Table() string { return s.table }

// IDField is the column records are keyed by; "rowid" for SQLite tables
// without a primary key.
func (s *Store) IDField() string { return s.idColumn }

// ObjectNameSingular names one record of the table, e.g. "company".
func (s *Store) ObjectNameSingular() string { return s.objectNameSingular }

// Fields returns the field definitions in display order; the label
// identifier field comes first.
func (s *Store) Fields() []FieldDefinition {
	src := s.fields
	if s.visible != nil {
		src = s.visible
	}
	fields := make([]FieldDefinition, len(src))
	copy(fields, src)
	return fields
}

// Narrow restricts the records and fields the store serves to q. Call it
// before Records.
func (s *Store) Narrow(q *Query) error {
	if !strings.EqualFold(q.Table, s.table) {
		return fmt.Errorf("query reads %s, not %s", q.Table, s.table)
	}

	var visible []FieldDefinition
	for _, name := range q.Columns {
		def, err := s.Field(name)
		if err != nil {
			return err
		}
		visible = append(visible, def)
	}

	where, orderBy, err := q.clauses(s.dialect)
	if err != nil {
		return err
	}

	if visible != nil {
		s.visible = labelIdentifierFirst(visible)
	}
	s.where, s.orderBy = where, orderBy
	s.limit, s.offset = q.Limit, q.Offset
	return nil
}

// Field looks up a field definition by column name.
func (s *Store) Field(name string) (FieldDefinition, error) {
	for _, f := range s.fields {
		if f.Metadata.FieldName == name {
			return f, nil
		}
	}
	return FieldDefinition{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.table, name)
}

// Records loads up to limit records, filtered and ordered by the query the
// store was narrowed to and by id otherwise. Loaded records stay cached for
// the life of the store; records fetched one by one through Record expire
// after recordTTL.
func (s *Store) Records(ctx context.Context, limit int) ([]Record, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", s.selectList(), s.dialect.quoteQualified(s.table))
	if s.where != "" {
		b.WriteString(" WHERE " + s.where)
	}
	orderBy := s.quotedID()
	if s.orderBy != "" {
		orderBy = s.orderBy
	}
	if s.limit > 0 && s.limit < limit {
		limit = s.limit
	}
	fmt.Fprintf(&b, " ORDER BY %s LIMIT %d", orderBy, limit)
	if s.offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", s.offset)
	}
	query := b.String()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", s.objectNameSingular, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		s.records.Set(rec.ID, rec, cache.NoExpiration)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load %s records: %w", s.objectNameSingular, err)
	}
	return records, nil
}

// Record returns the record with the given id, from cache when possible.
func (s *Store) Record(ctx context.Context, id string) (Record, error) {
	if cached, ok := s.records.Get(id); ok {
		return cached.(Record), nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		s.selectList(), s.dialect.quoteQualified(s.table), s.quotedID(), s.dialect.placeholder(1))

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return Record{}, fmt.Errorf("failed to load %s %s: %w", s.objectNameSingular, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %s %s", ErrRecordNotFound, s.objectNameSingular, id)
	}
	rec, err := s.scan(rows)
	if err != nil {
		return Record{}, err
	}
	s.records.Set(rec.ID, rec, cache.DefaultExpiration)
	return rec, nil
}

// FieldValue returns the current value of a field: a staged edit if there
// is one, otherwise the loaded value. Unknown records read as nil.
func (s *Store) FieldValue(recordID, fieldName string) any {
	s.mu.RLock()
	if values, ok := s.staged[recordID]; ok {
		if v, ok := values[fieldName]; ok {
			s.mu.RUnlock()
			return v
		}
	}
	s.mu.RUnlock()

	rec, err := s.Record(context.Background(), recordID)
	if err != nil {
		return nil
	}
	return rec.Values[fieldName]
}

// IsFieldValueEmpty applies the emptiness rules of the field's type.
func (s *Store) IsFieldValueEmpty(def FieldDefinition, value any) bool {
	return IsFieldValueEmpty(def, value)
}

// StageValue records a committed edit. Staged values are not written back
// to the database.
func (s *Store) StageValue(recordID, fieldName string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.staged[recordID]
	if !ok {
		values = make(map[string]any)
		s.staged[recordID] = values
	}
	values[fieldName] = value
}

func (s *Store) quotedID() string {
	if s.idColumn == sqliteRowID {
		return sqliteRowID
	}
	return s.dialect.quoteIdent(s.idColumn)
}

func (s *Store) selectList() string {
	cols := make([]string, 0, len(s.fields)+1)
	cols = append(cols, s.quotedID())
	for _, f := range s.fields {
		cols = append(cols, s.dialect.quoteIdent(f.Metadata.FieldName))
	}
	return strings.Join(cols, ", ")
}

func (s *Store) scan(rows *sql.Rows) (Record, error) {
	values := make([]any, len(s.fields)+1)
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Record{}, fmt.Errorf("failed to scan %s: %w", s.objectNameSingular, err)
	}

	rec := Record{
		ID:     fmt.Sprint(normalize(values[0])),
		Values: make(map[string]any, len(s.fields)),
	}
	for i, f := range s.fields {
		rec.Values[f.Metadata.FieldName] = normalize(values[i+1])
	}
	return rec, nil
}

// normalize turns driver byte slices into strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// labelIdentifierFirst moves the field that names a record (name, title or
// label) to the front; it becomes the identifier column.
func labelIdentifierFirst(fields []FieldDefinition) []FieldDefinition {
	idx := -1
	for i, f := range fields {
		switch strings.ToLower(f.Metadata.FieldName) {
		case "name", "title", "label":
			idx = i
		}
		if idx >= 0 {
			break
		}
	}
	if idx <= 0 {
		return fields
	}
	reordered := append([]FieldDefinition{fields[idx]}, fields[:idx]...)
	return append(reordered, fields[idx+1:]...)
}

func singular(table string) string {
	name := table
	if dot := strings.LastIndexByte(name, '.'); dot != -1 {
		name = name[dot+1:]
	}
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "sses"):
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "ss"):
		return name
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}
