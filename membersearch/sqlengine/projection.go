package sqlengine

import (
	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// scanTargets returns the scan destinations for one row, in the select order of membersearch.MemberProjectionShape.
// Nullable columns scan into pointer fields, so a member without a team yields nil TeamID and TeamName.
func scanTargets(row *membersearch.MemberProjection) []any {
	fields := membersearch.MemberProjectionShape.Fields()
	targets := make([]any, 0, len(fields))

	for _, field := range fields {
		switch field.Name() {
		case membersearch.FieldMemberID:
			targets = append(targets, &row.MemberID)
		case membersearch.FieldUserName:
			targets = append(targets, &row.UserName)
		case membersearch.FieldAge:
			targets = append(targets, &row.Age)
		case membersearch.FieldTeamID:
			targets = append(targets, &row.TeamID)
		case membersearch.FieldTeamName:
			targets = append(targets, &row.TeamName)
		}
	}

	return targets
}
