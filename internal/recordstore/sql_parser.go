package recordstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/format"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// Query is a SELECT reduced to what a record table can show: one base table,
// plain columns, a filter, an order and a limit. Records opened from a query
// are still addressed through the base table.
type Query struct {
	Table string
	// Columns lists the selected columns; nil selects every column.
	Columns []string
	Limit   int
	Offset  int

	where   ast.ExprNode
	orderBy *ast.OrderByClause
}

// ParseQuery parses sqlStr and rejects anything a record table cannot show
// faithfully: several statements, joins, subqueries, aggregates, DISTINCT
// and computed columns.
func ParseQuery(sqlStr string) (*Query, error) {
	sqlStr = strings.TrimSpace(sqlStr)
	if sqlStr == "" {
		return nil, fmt.Errorf("empty query")
	}

	stmtNodes, _, err := parser.New().Parse(sqlStr, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL: %w", err)
	}
	if len(stmtNodes) != 1 {
		return nil, fmt.Errorf("expected a single statement, got %d", len(stmtNodes))
	}

	stmt, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok {
		return nil, fmt.Errorf("expected SELECT statement, got %T", stmtNodes[0])
	}
	if stmt.From == nil || stmt.From.TableRefs == nil {
		return nil, fmt.Errorf("query has no FROM clause")
	}

	join := stmt.From.TableRefs
	if join.Right != nil {
		return nil, fmt.Errorf("joins are not supported, records need a single base table")
	}
	source, ok := join.Left.(*ast.TableSource)
	if !ok {
		return nil, fmt.Errorf("unsupported FROM clause")
	}
	table, ok := source.Source.(*ast.TableName)
	if !ok {
		return nil, fmt.Errorf("subqueries are not supported, records need a single base table")
	}

	if stmt.Distinct {
		return nil, fmt.Errorf("DISTINCT is not supported, every row must be a record")
	}
	if stmt.GroupBy != nil || stmt.Having != nil {
		return nil, fmt.Errorf("GROUP BY is not supported, every row must be a record")
	}

	q := &Query{
		Table:   table.Name.O,
		where:   stmt.Where,
		orderBy: stmt.OrderBy,
	}
	if table.Schema.O != "" {
		q.Table = table.Schema.O + "." + table.Name.O
	}

	if q.Columns, err = selectedColumns(stmt.Fields); err != nil {
		return nil, err
	}
	if stmt.Limit != nil {
		if q.Limit, err = limitValue(stmt.Limit.Count); err != nil {
			return nil, err
		}
		if q.Offset, err = limitValue(stmt.Limit.Offset); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func selectedColumns(fields *ast.FieldList) ([]string, error) {
	if fields == nil {
		return nil, nil
	}
	var columns []string
	for _, f := range fields.Fields {
		if f.WildCard != nil {
			return nil, nil
		}
		col, ok := f.Expr.(*ast.ColumnNameExpr)
		if !ok {
			return nil, fmt.Errorf("only plain columns can be selected")
		}
		if f.AsName.O != "" {
			return nil, fmt.Errorf("column aliases are not supported: %s", f.AsName.O)
		}
		columns = append(columns, col.Name.Name.O)
	}
	return columns, nil
}

func limitValue(expr ast.ExprNode) (int, error) {
	if expr == nil {
		return 0, nil
	}
	text, err := restore(expr, MySQL)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("LIMIT must be a non-negative number, got %s", text)
	}
	return n, nil
}

// restore renders node as SQL for dialect.
func restore(node ast.Node, dialect Dialect) (string, error) {
	flags := format.RestoreStringSingleQuotes | format.RestoreKeyWordUppercase |
		format.RestoreSpacesAroundBinaryOperation | format.RestoreStringWithoutCharset
	if dialect == MySQL {
		flags |= format.RestoreNameBackQuotes
	} else {
		flags |= format.RestoreNameDoubleQuotes
	}

	var b strings.Builder
	if err := node.Restore(format.NewRestoreCtx(flags, &b)); err != nil {
		return "", fmt.Errorf("failed to render SQL: %w", err)
	}
	return b.String(), nil
}

// clauses renders the filter and the order of q for dialect. Either may be
// empty.
func (q *Query) clauses(dialect Dialect) (where, orderBy string, err error) {
	if q.where != nil {
		if where, err = restore(q.where, dialect); err != nil {
			return "", "", err
		}
	}
	if q.orderBy != nil {
		items := make([]string, 0, len(q.orderBy.Items))
		for _, item := range q.orderBy.Items {
			text, err := restore(item, dialect)
			if err != nil {
				return "", "", err
			}
			items = append(items, text)
		}
		orderBy = strings.Join(items, ", ")
	}
	return where, orderBy, nil
}
