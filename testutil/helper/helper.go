package helper

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

// Roster is a set of teams and members to seed a test database with.
type Roster struct {
	Teams   []membersearch.Team
	Members []membersearch.Member
}

func Str(s string) *string {
	return &s
}

func ID(id int64) *int64 {
	return &id
}

// StandardRoster is two teams with two members each:
//
//	member1 (10, teamA), member2 (20, teamA), member3 (30, teamB), member4 (40, teamB)
func StandardRoster() Roster {
	return Roster{
		Teams: []membersearch.Team{
			{ID: 1, Name: "teamA"},
			{ID: 2, Name: "teamB"},
		},
		Members: []membersearch.Member{
			{ID: 1, UserName: Str("member1"), Age: 10, TeamID: ID(1)},
			{ID: 2, UserName: Str("member2"), Age: 20, TeamID: ID(1)},
			{ID: 3, UserName: Str("member3"), Age: 30, TeamID: ID(2)},
			{ID: 4, UserName: Str("member4"), Age: 40, TeamID: ID(2)},
		},
	}
}

// StandardRosterWithLoners extends StandardRoster with a member without a team and a member without a username.
func StandardRosterWithLoners() Roster {
	roster := StandardRoster()
	roster.Members = append(roster.Members,
		membersearch.Member{ID: 5, UserName: Str("loner"), Age: 0, TeamID: nil},
		membersearch.Member{ID: 6, UserName: nil, Age: 35, TeamID: ID(2)},
	)

	return roster
}

// GeneratedRoster creates numTeams teams and numMembers members with ages 0..99, spread evenly over the teams.
// Every tenth member has no team. The same arguments always produce the same roster.
func GeneratedRoster(numTeams, numMembers int) Roster {
	rng := rand.New(rand.NewPCG(uint64(numTeams), uint64(numMembers)))
	roster := Roster{
		Teams:   make([]membersearch.Team, 0, numTeams),
		Members: make([]membersearch.Member, 0, numMembers),
	}

	for i := 1; i <= numTeams; i++ {
		roster.Teams = append(roster.Teams, membersearch.Team{ID: int64(i), Name: fmt.Sprintf("team%04d", i)})
	}

	for i := 1; i <= numMembers; i++ {
		member := membersearch.Member{ID: int64(i), UserName: Str(fmt.Sprintf("member%07d", i)), Age: rng.IntN(100)}
		if i%10 != 0 && numTeams > 0 {
			member.TeamID = ID(int64(rng.IntN(numTeams) + 1))
		}

		roster.Members = append(roster.Members, member)
	}

	return roster
}

// GivenUniqueTeamName returns a team name that no fixture uses.
func GivenUniqueTeamName(t testing.TB) string {
	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return "team-" + id.String()
}

// seedBatchSize keeps multi-row inserts below the bind variable limit of SQLite.
const seedBatchSize = 1000

// GivenRosterWasSeeded inserts the roster's teams and members.
func GivenRosterWasSeeded(t testing.TB, ctx context.Context, db *sql.DB, dialect string, roster Roster) {
	builder := goqu.Dialect(dialect)

	if len(roster.Teams) > 0 {
		rows := make([]any, 0, len(roster.Teams))
		for _, team := range roster.Teams {
			rows = append(rows, goqu.Record{"team_id": team.ID, "name": team.Name})
		}

		execInsertInBatches(t, ctx, db, builder, "team", rows)
	}

	if len(roster.Members) > 0 {
		rows := make([]any, 0, len(roster.Members))
		for _, member := range roster.Members {
			rows = append(rows, goqu.Record{
				"member_id": member.ID,
				"username":  nullable(member.UserName),
				"age":       member.Age,
				"team_id":   nullable(member.TeamID),
			})
		}

		execInsertInBatches(t, ctx, db, builder, "member", rows)
	}
}

// CleanUp removes all members and teams.
func CleanUp(t testing.TB, ctx context.Context, db *sql.DB, dialect string) {
	builder := goqu.Dialect(dialect)

	for _, table := range []string{"member", "team"} {
		query, args, err := builder.Delete(table).Prepared(true).ToSQL()
		require.NoError(t, err, "error cleaning up the %s table", table)

		_, err = db.ExecContext(ctx, query, args...)
		require.NoError(t, err, "error cleaning up the %s table", table)
	}
}

func execInsertInBatches(t testing.TB, ctx context.Context, db *sql.DB, builder goqu.DialectWrapper, table string, rows []any) {
	for start := 0; start < len(rows); start += seedBatchSize {
		end := min(start+seedBatchSize, len(rows))
		execInsert(t, ctx, db, builder.Insert(table).Rows(rows[start:end]...))
	}
}

func execInsert(t testing.TB, ctx context.Context, db *sql.DB, insert *goqu.InsertDataset) {
	query, args, err := insert.Prepared(true).ToSQL()
	require.NoError(t, err, "error in arranging test data")

	_, err = db.ExecContext(ctx, query, args...)
	require.NoError(t, err, "error in arranging test data")
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}

	return *v
}

// Projections returns what a search over the roster must produce for each member, in member order.
func (r Roster) Projections() []membersearch.MemberProjection {
	teamNames := make(map[int64]string, len(r.Teams))
	for _, team := range r.Teams {
		teamNames[team.ID] = team.Name
	}

	projections := make([]membersearch.MemberProjection, 0, len(r.Members))

	for _, member := range r.Members {
		projection := membersearch.MemberProjection{
			MemberID: member.ID,
			UserName: member.UserName,
			Age:      member.Age,
		}

		if member.TeamID != nil {
			if name, ok := teamNames[*member.TeamID]; ok {
				projection.TeamID = ID(*member.TeamID)
				projection.TeamName = Str(name)
			}
		}

		projections = append(projections, projection)
	}

	return projections
}

// ExpectedMatches evaluates the filter in memory against the roster's projections.
func (r Roster) ExpectedMatches(filter membersearch.Filter) []membersearch.MemberProjection {
	matches := make([]membersearch.MemberProjection, 0)

	for _, projection := range r.Projections() {
		if filter.Matches(projection) {
			matches = append(matches, projection)
		}
	}

	return matches
}

// UserNames extracts the usernames of projections, "<nil>" for members without one.
func UserNames(projections []membersearch.MemberProjection) []string {
	names := make([]string, 0, len(projections))

	for _, projection := range projections {
		if projection.UserName == nil {
			names = append(names, "<nil>")
			continue
		}

		names = append(names, *projection.UserName)
	}

	return names
}
