package membersearch

import (
	"fmt"
	"strings"
)

// Operator is the comparison a Predicate applies.
type Operator string

const (
	OperatorEquals  Operator = "="
	OperatorAtLeast Operator = ">="
	OperatorAtMost  Operator = "<="
	noOperator      Operator = ""
)

/***** Predicate *****/

// Predicate is either absent (the zero value) or exactly one comparison of a source attribute against a value.
type Predicate struct {
	source   Source
	operator Operator
	value    any
}

// Eq builds an equality Predicate.
func Eq(source Source, value any) Predicate {
	return Predicate{source: source, operator: OperatorEquals, value: value}
}

// Gte builds a "greater than or equal" Predicate.
func Gte(source Source, value int) Predicate {
	return Predicate{source: source, operator: OperatorAtLeast, value: value}
}

// Lte builds a "less than or equal" Predicate.
func Lte(source Source, value int) Predicate {
	return Predicate{source: source, operator: OperatorAtMost, value: value}
}

func (p Predicate) IsAbsent() bool {
	return p.operator == noOperator
}

func (p Predicate) Source() Source {
	return p.source
}

func (p Predicate) Operator() Operator {
	return p.operator
}

func (p Predicate) Value() any {
	return p.value
}

// Matches evaluates the Predicate against a projection row with SQL semantics:
// a comparison involving NULL never matches. An absent Predicate matches every row.
func (p Predicate) Matches(row MemberProjection) bool {
	if p.IsAbsent() {
		return true
	}

	actual, notNull := row.valueOf(p.source)
	if !notNull {
		return false
	}

	switch p.operator {
	case OperatorEquals:
		return actual == p.value
	case OperatorAtLeast, OperatorAtMost:
		a, aOK := actual.(int)
		v, vOK := p.value.(int)
		if !aOK || !vOK {
			return false
		}
		if p.operator == OperatorAtLeast {
			return a >= v
		}
		return a <= v
	default:
		return false
	}
}

func (p Predicate) String() string {
	if p.IsAbsent() {
		return "<absent>"
	}

	if s, ok := p.value.(string); ok {
		return fmt.Sprintf("%s.%s %s '%s'", p.source.Entity, p.source.Attribute, p.operator, s)
	}

	return fmt.Sprintf("%s.%s %s %v", p.source.Entity, p.source.Attribute, p.operator, p.value)
}

/***** Fragments *****/

// UserNameEquals returns member.userName = value, or an absent Predicate when the username is absent or blank.
func UserNameEquals(cond SearchCondition) Predicate {
	userName, ok := cond.UserName().Get()
	if !ok || isBlank(userName) {
		return Predicate{}
	}

	return Eq(SourceMemberUserName, userName)
}

// TeamNameEquals returns team.name = value, or an absent Predicate when the team name is absent or blank.
func TeamNameEquals(cond SearchCondition) Predicate {
	teamName, ok := cond.TeamName().Get()
	if !ok || isBlank(teamName) {
		return Predicate{}
	}

	return Eq(SourceTeamName, teamName)
}

// AgeAtLeast returns member.age >= value, or an absent Predicate when no lower bound is set.
// Zero is a legitimate bound.
func AgeAtLeast(cond SearchCondition) Predicate {
	age, ok := cond.AgeGoe().Get()
	if !ok {
		return Predicate{}
	}

	return Gte(SourceMemberAge, age)
}

// AgeAtMost returns member.age <= value, or an absent Predicate when no upper bound is set.
func AgeAtMost(cond SearchCondition) Predicate {
	age, ok := cond.AgeLoe().Get()
	if !ok {
		return Predicate{}
	}

	return Lte(SourceMemberAge, age)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
