package membersearch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

func Test_SearchCondition_When_ZeroValue_Then_AllFieldsAreAbsent(t *testing.T) {
	// arrange
	var cond membersearch.SearchCondition

	// act + assert
	assert.False(t, cond.UserName().IsPresent())
	assert.False(t, cond.TeamName().IsPresent())
	assert.False(t, cond.AgeGoe().IsPresent())
	assert.False(t, cond.AgeLoe().IsPresent())
	assert.Equal(t, membersearch.NewSearchCondition(), cond)
}

func Test_SearchCondition_Validate_When_AgeRangeIsInverted_Then_ItFails(t *testing.T) {
	// arrange
	cond := membersearch.NewSearchCondition(membersearch.WithAgeGoe(40), membersearch.WithAgeLoe(35))

	// act
	err := cond.Validate()

	// assert
	assert.ErrorIs(t, err, membersearch.ErrInvalidConditionValue)
	assert.ErrorIs(t, err, membersearch.ErrInvertedAgeRange)
	assert.ErrorContains(t, err, "ageGoe 40 > ageLoe 35")
}

func Test_SearchCondition_Validate_When_AgeRangeIsSingleValueOrOpen_Then_ItPasses(t *testing.T) {
	assert.NoError(t, membersearch.NewSearchCondition(membersearch.WithAgeGoe(35), membersearch.WithAgeLoe(35)).Validate())
	assert.NoError(t, membersearch.NewSearchCondition(membersearch.WithAgeGoe(35)).Validate())
	assert.NoError(t, membersearch.NewSearchCondition().Validate())
}

func Test_SearchCondition_UnmarshalJSON_When_FieldsAreMissingOrNull_Then_TheyAreAbsent(t *testing.T) {
	// arrange
	body := []byte(`{"teamName":"teamB","ageGoe":0,"ageLoe":null}`)

	// act
	var cond membersearch.SearchCondition
	err := json.Unmarshal(body, &cond)

	// assert
	require.NoError(t, err)
	assert.False(t, cond.UserName().IsPresent())
	assert.Equal(t, "teamB", cond.TeamName().OrElse(""))
	assert.True(t, cond.AgeGoe().IsPresent(), "zero is a present age")
	assert.Equal(t, 0, cond.AgeGoe().OrElse(-1))
	assert.False(t, cond.AgeLoe().IsPresent())
}

func Test_SearchCondition_UnmarshalJSON_When_TypeIsWrong_Then_ItFails(t *testing.T) {
	// act
	var cond membersearch.SearchCondition
	err := json.Unmarshal([]byte(`{"ageGoe":"old"}`), &cond)

	// assert
	assert.Error(t, err)
}

func Test_SearchCondition_MarshalJSON_When_FieldsAreAbsent_Then_TheyRenderAsNull(t *testing.T) {
	// arrange
	cond := membersearch.NewSearchCondition(membersearch.WithUserName("member1"))

	// act
	out, err := json.Marshal(cond)

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"userName":"member1","teamName":null,"ageGoe":null,"ageLoe":null}`, string(out))
}

func Test_Optional_When_BuiltFromPointer_Then_PresenceFollowsNil(t *testing.T) {
	// arrange
	age := 0

	// act
	present := membersearch.FromPtr(&age)
	absent := membersearch.FromPtr[int](nil)

	// assert
	assert.True(t, present.IsPresent())
	assert.Equal(t, 0, *present.Ptr())
	assert.False(t, absent.IsPresent())
	assert.Nil(t, absent.Ptr())
	assert.Equal(t, 7, absent.OrElse(7))
	assert.Equal(t, membersearch.None[int](), absent)
}

func Test_SearchCondition_When_OptionalOptionsAreUsed_Then_PresenceIsCopied(t *testing.T) {
	// act
	cond := membersearch.NewSearchCondition(
		membersearch.WithOptionalUserName(membersearch.None[string]()),
		membersearch.WithOptionalTeamName(membersearch.Some("teamA")),
		membersearch.WithOptionalAgeGoe(membersearch.Some(0)),
		membersearch.WithOptionalAgeLoe(membersearch.None[int]()),
	)

	// assert
	assert.Equal(t, membersearch.NewSearchCondition(membersearch.WithTeamName("teamA"), membersearch.WithAgeGoe(0)), cond)
}
