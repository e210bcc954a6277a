// Package database builds parameterized list queries from typed filter
// options. Repositories pass column names and operators; identifiers are
// quoted through pgx and every value travels as a bind parameter.
package database

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison operator of a Condition.
type ConditionType string

const (
	Equal ConditionType = "="
	ILike ConditionType = "ILIKE"

	// custom marks a raw SQL fragment built by WhereRawCond.
	custom ConditionType = "CUSTOM"
)

const (
	// unsetLimit and unsetOffset mark paging values never supplied by the
	// caller, so an explicit 0 still produces a clause.
	unsetLimit  = -1
	unsetOffset = -1
)

// Condition is a single WHERE predicate.
type Condition struct {
	Field string
	Type  ConditionType
	Value any

	raw *string
}

// WhereCond builds a field/operator/value predicate.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a raw SQL predicate. Placeholders inside raw are
// written as $1..$n relative to the fragment and renumbered when the full
// query is assembled.
func WhereRawCond(raw string, params ...any) Condition {
	var value any = params
	if len(params) == 0 {
		value = nil
	}
	return Condition{Type: custom, raw: &raw, Value: value}
}

// ListQueryOptions collects the parts of a list query.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions applies the given options over defaults for table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  unsetLimit,
		Offset: unsetOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition appends a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// sanitizeIdentifier quotes an identifier, splitting qualified names like
// "table.column" so each part is quoted on its own.
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildListQuery assembles the SQL string and bind arguments from options.
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, args, nextParam := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	if options.OrderBy != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(sanitizeIdentifier(options.OrderBy))
		dir := strings.ToUpper(options.OrderDir)
		if dir == "ASC" || dir == "DESC" {
			query.WriteString(" ")
			query.WriteString(dir)
		}
	}

	if options.Limit != unsetLimit {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", nextParam))
		args = append(args, options.Limit)
		nextParam++
	}
	if options.Offset != unsetOffset {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", nextParam))
		args = append(args, options.Offset)
	}

	return query.String(), args
}

func buildSelectClause(options *ListQueryOptions) string {
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeIdentifier(col)
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(cols, ", "))
}

func buildWhereClause(inputConditions []Condition, startParam int) (string, []any, int) {
	predicates := make([]string, 0, len(inputConditions))
	args := []any{}
	param := startParam

	for _, cond := range inputConditions {
		var predicate string
		var condArgs []any
		if cond.Type == custom {
			predicate, condArgs, param = renderRawCondition(cond, param)
		} else {
			predicate, condArgs, param = renderCondition(cond, param)
		}
		if predicate != "" {
			predicates = append(predicates, predicate)
			args = append(args, condArgs...)
		}
	}

	if len(predicates) == 0 {
		return "", args, param
	}
	return "WHERE " + strings.Join(predicates, " AND "), args, param
}

func renderCondition(cond Condition, param int) (string, []any, int) {
	if cond.Field == "" {
		return "", nil, param
	}
	predicate := fmt.Sprintf("%s %s $%d", sanitizeIdentifier(cond.Field), cond.Type, param)
	return predicate, []any{cond.Value}, param + 1
}

var rawPlaceholderRe = regexp.MustCompile(`\$(\d+)`)

// renderRawCondition renumbers the fragment-local placeholders of a raw
// condition into the position they get in the assembled query. The fragment
// itself is trusted and not sanitized.
func renderRawCondition(cond Condition, param int) (string, []any, int) {
	if cond.raw == nil || *cond.raw == "" {
		return "", nil, param
	}

	params, _ := cond.Value.([]any)
	args := []any{}
	seen := make(map[int]int)

	predicate := rawPlaceholderRe.ReplaceAllStringFunc(*cond.raw, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := seen[n]; !ok {
			seen[n] = param
			args = append(args, params[n-1])
			param++
		}
		return fmt.Sprintf("$%d", seen[n])
	})

	return predicate, args, param
}
