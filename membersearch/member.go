package membersearch

// Member is the queried entity. Its lifecycle is owned by the store; this package only reads it.
type Member struct {
	ID       int64
	UserName *string // nullable, members can be created without a username
	Age      int
	TeamID   *int64 // many-to-one, may be unset
}

// Team is the entity a Member optionally belongs to.
type Team struct {
	ID   int64
	Name string
}

// MemberProjection is the flat result shape of a member search.
// TeamID and TeamName are nil for members without a team.
type MemberProjection struct {
	MemberID int64   `json:"memberId"`
	UserName *string `json:"userName"`
	Age      int     `json:"age"`
	TeamID   *int64  `json:"teamId"`
	TeamName *string `json:"teamName"`
}

// valueOf resolves a Source against the projection; false means SQL NULL.
func (p MemberProjection) valueOf(src Source) (any, bool) {
	switch src {
	case SourceMemberID:
		return p.MemberID, true
	case SourceMemberUserName:
		if p.UserName == nil {
			return nil, false
		}
		return *p.UserName, true
	case SourceMemberAge:
		return p.Age, true
	case SourceTeamID:
		if p.TeamID == nil {
			return nil, false
		}
		return *p.TeamID, true
	case SourceTeamName:
		if p.TeamName == nil {
			return nil, false
		}
		return *p.TeamName, true
	default:
		return nil, false
	}
}
