package membersearch

import (
	"errors"
)

// Errors a caller is expected to branch on with errors.Is.
var (
	ErrInvalidConditionValue = errors.New("invalid search condition value")
	ErrInvertedAgeRange      = errors.New("ageGoe is greater than ageLoe")
	ErrInvalidPageRequest    = errors.New("invalid page request")
	ErrUnknownOrderField     = errors.New("unknown order field")

	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrStoreQueryRejected = errors.New("store rejected query")
)

// Errors that describe which step of a search failed. They are joined with one of the above.
var (
	ErrQueryingMembersFailed = errors.New("querying members failed")
	ErrCountingMembersFailed = errors.New("counting members failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrBuildingQueryFailed   = errors.New("building query failed")
)

// Configuration errors returned by constructors.
var (
	ErrNilDatabaseConnection  = errors.New("database connection must not be nil")
	ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
	ErrUnknownCountStrategy   = errors.New("unknown count strategy")
	ErrUnknownFilterStrategy  = errors.New("unknown filter strategy")
)
