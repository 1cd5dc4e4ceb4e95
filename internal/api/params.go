package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	paramUserName = "userName"
	paramTeamName = "teamName"
	paramAgeGoe   = "ageGoe"
	paramAgeLoe   = "ageLoe"
	paramOffset   = "offset"
	paramLimit    = "limit"
	paramPage     = "page"
	paramSize     = "size"
	paramSort     = "sort"
)

type pagingLimits struct {
	defaultLimit int
	maxLimit     int
}

// conditionFromQuery binds the search criteria. A missing or empty parameter is an absent criterion.
func conditionFromQuery(query url.Values) (membersearch.SearchCondition, error) {
	options := make([]membersearch.ConditionOption, 0, 4)

	if userName := query.Get(paramUserName); userName != "" {
		options = append(options, membersearch.WithUserName(userName))
	}

	if teamName := query.Get(paramTeamName); teamName != "" {
		options = append(options, membersearch.WithTeamName(teamName))
	}

	ageGoe, err := optionalInt(query, paramAgeGoe)
	if err != nil {
		return membersearch.SearchCondition{}, errors.Join(membersearch.ErrInvalidConditionValue, err)
	}

	ageLoe, err := optionalInt(query, paramAgeLoe)
	if err != nil {
		return membersearch.SearchCondition{}, errors.Join(membersearch.ErrInvalidConditionValue, err)
	}

	options = append(options, membersearch.WithOptionalAgeGoe(ageGoe), membersearch.WithOptionalAgeLoe(ageLoe))
	cond := membersearch.NewSearchCondition(options...)

	if err := cond.Validate(); err != nil {
		return membersearch.SearchCondition{}, err
	}

	return cond, nil
}

// ordersFromQuery parses every sort parameter, e.g. sort=teamName&sort=age,desc.
func ordersFromQuery(query url.Values) ([]membersearch.Order, error) {
	return parseOrders(query[paramSort])
}

func parseOrders(raw []string) ([]membersearch.Order, error) {
	orders := make([]membersearch.Order, 0, len(raw))

	for _, s := range raw {
		order, err := membersearch.ParseOrder(s)
		if err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	if err := membersearch.ValidateOrders(membersearch.MemberProjectionShape, orders...); err != nil {
		return nil, err
	}

	return orders, nil
}

// pageFromQuery accepts offset/limit or page/size. page/size wins when both are given.
func pageFromQuery(query url.Values, limits pagingLimits) (membersearch.PageRequest, error) {
	orders, err := ordersFromQuery(query)
	if err != nil {
		return membersearch.PageRequest{}, err
	}

	limit, err := intOrDefault(query, paramLimit, limits.defaultLimit)
	if err != nil {
		return membersearch.PageRequest{}, err
	}

	offset, err := intOrDefault(query, paramOffset, 0)
	if err != nil {
		return membersearch.PageRequest{}, err
	}

	if query.Has(paramPage) || query.Has(paramSize) {
		size, sizeErr := intOrDefault(query, paramSize, limits.defaultLimit)
		if sizeErr != nil {
			return membersearch.PageRequest{}, sizeErr
		}

		number, numberErr := intOrDefault(query, paramPage, 0)
		if numberErr != nil {
			return membersearch.PageRequest{}, numberErr
		}

		if number < 0 {
			return membersearch.PageRequest{}, fmt.Errorf("%w: page must not be negative, got %d", membersearch.ErrInvalidPageRequest, number)
		}

		if size > 0 && number > math.MaxInt/size {
			return membersearch.PageRequest{}, fmt.Errorf("%w: page %d of size %d is out of range", membersearch.ErrInvalidPageRequest, number, size)
		}

		offset, limit = number*size, size
	}

	return limits.apply(membersearch.PageRequest{Offset: offset, Limit: limit, Orders: orders})
}

// apply validates page and caps its limit at maxLimit.
func (l pagingLimits) apply(page membersearch.PageRequest) (membersearch.PageRequest, error) {
	if err := page.Validate(); err != nil {
		return membersearch.PageRequest{}, err
	}

	if page.Limit > l.maxLimit {
		page.Limit = l.maxLimit
	}

	return page, nil
}

func optionalInt(query url.Values, name string) (membersearch.Optional[int], error) {
	raw := query.Get(name)
	if raw == "" {
		return membersearch.None[int](), nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return membersearch.None[int](), fmt.Errorf("%s must be an integer, got %q", name, raw)
	}

	return membersearch.Some(v), nil
}

func intOrDefault(query url.Values, name string, fallback int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", membersearch.ErrInvalidPageRequest, name, raw)
	}

	return v, nil
}
