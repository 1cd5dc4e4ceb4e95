// Package membersearch searches members by a partially filled SearchCondition.
//
// A condition is turned into Predicate fragments (one per present criterion), which are
// composed into a Filter. Engines (see package sqlengine) execute the Filter as a projection
// query over member LEFT JOIN team and return either all matches or one Page of them.
// For pages, a CountStrategy decides whether the total needs a separate count query.
//
// Absent criteria never constrain the result:
//
//	cond := membersearch.NewSearchCondition(
//		membersearch.WithTeamName("teamB"),
//		membersearch.WithAgeGoe(35),
//		membersearch.WithAgeLoe(40),
//	)
//	filter := membersearch.FragmentFilterStrategy{}.BuildFilter(cond)
package membersearch
