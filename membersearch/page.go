package membersearch

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPageLimit is used when a PageRequest carries no usable limit.
const DefaultPageLimit = 20

/***** Order *****/

// Order sorts the content query by one projection field.
type Order struct {
	Field      string
	Descending bool
}

// Asc orders ascending by field.
func Asc(field string) Order {
	return Order{Field: field}
}

// Desc orders descending by field.
func Desc(field string) Order {
	return Order{Field: field, Descending: true}
}

// ParseOrder parses "field" or "field,asc|desc".
func ParseOrder(s string) (Order, error) {
	field, direction, _ := strings.Cut(s, ",")
	field = strings.TrimSpace(field)

	if field == "" {
		return Order{}, fmt.Errorf("%w: empty field in %q", ErrUnknownOrderField, s)
	}

	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
		return Asc(field), nil
	case "desc":
		return Desc(field), nil
	default:
		return Order{}, fmt.Errorf("%w: invalid direction in %q", ErrInvalidPageRequest, s)
	}
}

// ValidateOrders checks that every Order names a field of the projection.
func ValidateOrders(projection Projection, orders ...Order) error {
	for _, o := range orders {
		if _, ok := projection.Field(o.Field); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOrderField, o.Field)
		}
	}

	return nil
}

/***** PageRequest *****/

// PageRequest is the offset/limit window of a paged search plus an optional ordering.
type PageRequest struct {
	Offset int
	Limit  int
	Orders []Order
}

// PageOf builds a PageRequest from a zero-based page number and a page size.
func PageOf(pageNumber, pageSize int, orders ...Order) PageRequest {
	return PageRequest{Offset: pageNumber * pageSize, Limit: pageSize, Orders: orders}
}

// Normalized clamps a negative offset to 0 and a limit below 1 to DefaultPageLimit.
func (pr PageRequest) Normalized() PageRequest {
	if pr.Offset < 0 {
		pr.Offset = 0
	}

	if pr.Limit < 1 {
		pr.Limit = DefaultPageLimit
	}

	return pr
}

// Validate rejects values that Normalized would have to clamp.
func (pr PageRequest) Validate() error {
	var errs []error

	if pr.Offset < 0 {
		errs = append(errs, fmt.Errorf("offset must not be negative, got %d", pr.Offset))
	}

	if pr.Limit < 1 {
		errs = append(errs, fmt.Errorf("limit must be at least 1, got %d", pr.Limit))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidPageRequest}, errs...)...)
	}

	return nil
}

/***** Page *****/

// Page is one window of search results plus the total number of matching rows.
type Page[T any] struct {
	Content []T
	Total   int64
	Offset  int
	Limit   int

	// CountQueryIssued tells whether Total came from a count query or was derived from the content.
	CountQueryIssued bool
}

// Size is the requested page size.
func (p Page[T]) Size() int {
	return p.Limit
}

// NumberOfElements is the number of rows in this page.
func (p Page[T]) NumberOfElements() int {
	return len(p.Content)
}

// Number is the zero-based page number.
func (p Page[T]) Number() int {
	if p.Limit < 1 {
		return 0
	}

	return p.Offset / p.Limit
}

func (p Page[T]) TotalPages() int {
	if p.Limit < 1 || p.Total <= 0 {
		return 0
	}

	limit := int64(p.Limit)

	return int((p.Total + limit - 1) / limit)
}

func (p Page[T]) HasNext() bool {
	return int64(p.Offset+len(p.Content)) < p.Total
}

func (p Page[T]) IsLast() bool {
	return !p.HasNext()
}
