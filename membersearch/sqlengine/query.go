package sqlengine

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	colMemberID       = "member_id"
	colMemberUserName = "username"
	colMemberAge      = "age"
	colMemberTeamID   = "team_id"
	colTeamID         = "team_id"
	colTeamName       = "name"
)

type sqlQueryString = string

// buildSelectQuery renders the projection query: root LEFT JOIN joined entity, filtered, optionally ordered and windowed.
func (s Searcher) buildSelectQuery(
	filter membersearch.Filter,
	orders []membersearch.Order,
	window *membersearch.PageRequest,
) (sqlQueryString, []any, error) {
	projection := membersearch.MemberProjectionShape

	selectStmt := s.builder().
		From(s.table(projection.Root())).
		Select(s.selectExpressions(projection)...)

	selectStmt = s.addJoin(projection, selectStmt)
	selectStmt = s.addWhereClause(filter, selectStmt)

	orderExpressions, orderErr := s.orderExpressions(orders)
	if orderErr != nil {
		return "", nil, errors.Join(membersearch.ErrBuildingQueryFailed, orderErr)
	}

	if len(orderExpressions) > 0 {
		selectStmt = selectStmt.Order(orderExpressions...)
	}

	if window != nil {
		selectStmt = selectStmt.Offset(uint(window.Offset)).Limit(uint(window.Limit))
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(membersearch.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// buildCountQuery renders COUNT(member.id) with the same filter. The join is only added when the
// filter references the joined entity: a many-to-one left join never changes the number of root rows.
func (s Searcher) buildCountQuery(filter membersearch.Filter) (sqlQueryString, []any, error) {
	projection := membersearch.MemberProjectionShape

	selectStmt := s.builder().
		From(s.table(projection.Root())).
		Select(goqu.COUNT(s.column(membersearch.Source{Entity: projection.Root(), Attribute: membersearch.AttributeID})))

	if filter.References(projection.Joined()) {
		selectStmt = s.addJoin(projection, selectStmt)
	}

	selectStmt = s.addWhereClause(filter, selectStmt)

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(membersearch.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (s Searcher) builder() *goqu.SelectDataset {
	return goqu.Dialect(s.dialect).From().Prepared(true)
}

// addJoin left joins the projection's joined entity on the root's foreign key to it.
func (s Searcher) addJoin(projection membersearch.Projection, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	joined := projection.Joined()

	return selectStmt.LeftJoin(
		s.table(joined),
		goqu.On(s.foreignKey(projection.Root()).Eq(s.column(membersearch.Source{Entity: joined, Attribute: membersearch.AttributeID}))),
	)
}

func (s Searcher) addWhereClause(filter membersearch.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	if filter.MatchesAll() {
		return selectStmt
	}

	predicateExpressions := make([]exp.Expression, 0, len(filter.Predicates()))

	for _, predicate := range filter.Predicates() {
		col := s.column(predicate.Source())

		switch predicate.Operator() {
		case membersearch.OperatorEquals:
			predicateExpressions = append(predicateExpressions, col.Eq(predicate.Value()))
		case membersearch.OperatorAtLeast:
			predicateExpressions = append(predicateExpressions, col.Gte(predicate.Value()))
		case membersearch.OperatorAtMost:
			predicateExpressions = append(predicateExpressions, col.Lte(predicate.Value()))
		}
	}

	return selectStmt.Where(goqu.And(predicateExpressions...))
}

// selectExpressions turns the projection declaration into select expressions in field order.
func (s Searcher) selectExpressions(projection membersearch.Projection) []any {
	fields := projection.Fields()
	expressions := make([]any, 0, len(fields))

	for _, field := range fields {
		col := s.column(field.Source())

		if field.Aliased() {
			expressions = append(expressions, col.As(field.Name()))
			continue
		}

		expressions = append(expressions, col)
	}

	return expressions
}

func (s Searcher) orderExpressions(orders []membersearch.Order) ([]exp.OrderedExpression, error) {
	orderExpressions := make([]exp.OrderedExpression, 0, len(orders))

	for _, order := range orders {
		field, ok := membersearch.MemberProjectionShape.Field(order.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %q", membersearch.ErrUnknownOrderField, order.Field)
		}

		col := s.column(field.Source())

		if order.Descending {
			orderExpressions = append(orderExpressions, col.Desc())
			continue
		}

		orderExpressions = append(orderExpressions, col.Asc())
	}

	return orderExpressions, nil
}

func (s Searcher) table(entity membersearch.Entity) exp.IdentifierExpression {
	if entity == membersearch.EntityTeam {
		return goqu.T(s.teamTableName)
	}

	return goqu.T(s.memberTableName)
}

// column maps a source attribute to its qualified physical column.
func (s Searcher) column(source membersearch.Source) exp.IdentifierExpression {
	var col string

	switch source {
	case membersearch.SourceMemberID:
		col = colMemberID
	case membersearch.SourceMemberUserName:
		col = colMemberUserName
	case membersearch.SourceMemberAge:
		col = colMemberAge
	case membersearch.SourceTeamID:
		col = colTeamID
	case membersearch.SourceTeamName:
		col = colTeamName
	}

	return s.table(source.Entity).Col(col)
}

// foreignKey is the column of the root entity that references the joined entity.
func (s Searcher) foreignKey(root membersearch.Entity) exp.IdentifierExpression {
	return s.table(root).Col(colMemberTeamID)
}
