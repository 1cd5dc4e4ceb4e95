package membersearch

import (
	"slices"
)

// Entity names one of the two joined row sets.
type Entity string

// Attribute names a property of an Entity, independent of the physical column name.
type Attribute string

const (
	EntityMember Entity = "member"
	EntityTeam   Entity = "team"

	AttributeID       Attribute = "id"
	AttributeUserName Attribute = "userName"
	AttributeAge      Attribute = "age"
	AttributeName     Attribute = "name"
)

// Source addresses one attribute of one entity.
type Source struct {
	Entity    Entity
	Attribute Attribute
}

var (
	SourceMemberID       = Source{Entity: EntityMember, Attribute: AttributeID}
	SourceMemberUserName = Source{Entity: EntityMember, Attribute: AttributeUserName}
	SourceMemberAge      = Source{Entity: EntityMember, Attribute: AttributeAge}
	SourceTeamID         = Source{Entity: EntityTeam, Attribute: AttributeID}
	SourceTeamName       = Source{Entity: EntityTeam, Attribute: AttributeName}
)

// ProjectionField declares one output field and where its value comes from.
type ProjectionField struct {
	name   string
	source Source
}

func (pf ProjectionField) Name() string {
	return pf.name
}

func (pf ProjectionField) Source() Source {
	return pf.source
}

// Aliased reports whether the output name differs from the source attribute name,
// i.e. whether the query has to rename the column (member.id -> memberId).
func (pf ProjectionField) Aliased() bool {
	return pf.name != string(pf.source.Attribute)
}

// Projection is the ordered, constant list of output fields plus the join path that feeds them.
// It issues no queries; engines use it to build the select list and to scan rows.
type Projection struct {
	fields []ProjectionField
	root   Entity
	joined Entity
}

// Fields returns the output fields in select order.
func (p Projection) Fields() []ProjectionField {
	return slices.Clone(p.fields)
}

// Root is the entity the query selects from.
func (p Projection) Root() Entity {
	return p.root
}

// Joined is the entity reached by the left (outer) join from Root.
func (p Projection) Joined() Entity {
	return p.joined
}

// Field looks up an output field by name.
func (p Projection) Field(name string) (ProjectionField, bool) {
	for _, f := range p.fields {
		if f.name == name {
			return f, true
		}
	}

	return ProjectionField{}, false
}

const (
	FieldMemberID = "memberId"
	FieldUserName = "userName"
	FieldAge      = "age"
	FieldTeamID   = "teamId"
	FieldTeamName = "teamName"
)

// MemberProjectionShape is the projection of MemberProjection:
// member LEFT JOIN team, member.id aliased to memberId, team.id to teamId, team.name to teamName.
var MemberProjectionShape = Projection{
	fields: []ProjectionField{
		{name: FieldMemberID, source: SourceMemberID},
		{name: FieldUserName, source: SourceMemberUserName},
		{name: FieldAge, source: SourceMemberAge},
		{name: FieldTeamID, source: SourceTeamID},
		{name: FieldTeamName, source: SourceTeamName},
	},
	root:   EntityMember,
	joined: EntityTeam,
}
