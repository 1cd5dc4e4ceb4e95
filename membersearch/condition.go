package membersearch

import (
	"errors"
	"fmt"
)

// SearchCondition holds the optional criteria of a member search.
// Every field is independently optional; the zero value matches all members.
// A SearchCondition is immutable once constructed.
type SearchCondition struct {
	userName Optional[string]
	teamName Optional[string]
	ageGoe   Optional[int]
	ageLoe   Optional[int]
}

// ConditionOption sets one criterion while constructing a SearchCondition.
type ConditionOption func(*SearchCondition)

// NewSearchCondition builds a SearchCondition from the supplied options.
func NewSearchCondition(options ...ConditionOption) SearchCondition {
	cond := SearchCondition{}

	for _, option := range options {
		option(&cond)
	}

	return cond
}

// WithUserName requires the member's username to equal userName.
func WithUserName(userName string) ConditionOption {
	return func(c *SearchCondition) {
		c.userName = Some(userName)
	}
}

// WithTeamName requires the member's team name to equal teamName.
func WithTeamName(teamName string) ConditionOption {
	return func(c *SearchCondition) {
		c.teamName = Some(teamName)
	}
}

// WithAgeGoe requires the member's age to be greater than or equal to age.
func WithAgeGoe(age int) ConditionOption {
	return func(c *SearchCondition) {
		c.ageGoe = Some(age)
	}
}

// WithAgeLoe requires the member's age to be less than or equal to age.
func WithAgeLoe(age int) ConditionOption {
	return func(c *SearchCondition) {
		c.ageLoe = Some(age)
	}
}

// WithOptionalUserName copies an Optional as-is, which is handy when binding request parameters.
func WithOptionalUserName(userName Optional[string]) ConditionOption {
	return func(c *SearchCondition) {
		c.userName = userName
	}
}

// WithOptionalTeamName copies an Optional team name as-is.
func WithOptionalTeamName(teamName Optional[string]) ConditionOption {
	return func(c *SearchCondition) {
		c.teamName = teamName
	}
}

// WithOptionalAgeGoe copies an Optional lower age bound as-is.
func WithOptionalAgeGoe(age Optional[int]) ConditionOption {
	return func(c *SearchCondition) {
		c.ageGoe = age
	}
}

// WithOptionalAgeLoe copies an Optional upper age bound as-is.
func WithOptionalAgeLoe(age Optional[int]) ConditionOption {
	return func(c *SearchCondition) {
		c.ageLoe = age
	}
}

func (c SearchCondition) UserName() Optional[string] {
	return c.userName
}

func (c SearchCondition) TeamName() Optional[string] {
	return c.teamName
}

func (c SearchCondition) AgeGoe() Optional[int] {
	return c.ageGoe
}

func (c SearchCondition) AgeLoe() Optional[int] {
	return c.ageLoe
}

// Validate reports internally inconsistent criteria.
// The search engine never calls it: an inverted age range simply matches nothing.
// Callers that want to reject such input up front (e.g. an HTTP layer) use it.
func (c SearchCondition) Validate() error {
	goe, hasGoe := c.ageGoe.Get()
	loe, hasLoe := c.ageLoe.Get()

	if hasGoe && hasLoe && goe > loe {
		return errors.Join(
			ErrInvalidConditionValue,
			fmt.Errorf("%w: ageGoe %d > ageLoe %d", ErrInvertedAgeRange, goe, loe),
		)
	}

	return nil
}

/***** JSON binding *****/

type searchConditionJSON struct {
	UserName Optional[string] `json:"userName"`
	TeamName Optional[string] `json:"teamName"`
	AgeGoe   Optional[int]    `json:"ageGoe"`
	AgeLoe   Optional[int]    `json:"ageLoe"`
}

// MarshalJSON renders absent criteria as null.
func (c SearchCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchConditionJSON{
		UserName: c.userName,
		TeamName: c.teamName,
		AgeGoe:   c.ageGoe,
		AgeLoe:   c.ageLoe,
	})
}

// UnmarshalJSON treats missing and null criteria as absent.
func (c *SearchCondition) UnmarshalJSON(data []byte) error {
	var raw searchConditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = SearchCondition{
		userName: raw.UserName,
		teamName: raw.TeamName,
		ageGoe:   raw.AgeGoe,
		ageLoe:   raw.AgeLoe,
	}

	return nil
}
