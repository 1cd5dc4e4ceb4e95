package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

const (
	codeInvalidCondition = "INVALID_CONDITION"
	codeInvalidPage      = "INVALID_PAGE"
	codeInvalidOrder     = "INVALID_ORDER"
	codeInvalidBody      = "INVALID_BODY"
	codeStoreUnavailable = "STORE_UNAVAILABLE"
	codeInternalError    = "INTERNAL_ERROR"

	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

var errInvalidBody = errors.New("invalid request body")

// ErrorResponse is the error envelope of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageResponse is the JSON shape of a paged search result.
type PageResponse struct {
	Content          []membersearch.MemberProjection `json:"content"`
	TotalElements    int64                           `json:"totalElements"`
	TotalPages       int                             `json:"totalPages"`
	Number           int                             `json:"number"`
	Size             int                             `json:"size"`
	Offset           int                             `json:"offset"`
	NumberOfElements int                             `json:"numberOfElements"`
	First            bool                            `json:"first"`
	Last             bool                            `json:"last"`
	Empty            bool                            `json:"empty"`
	CountQueryIssued bool                            `json:"countQueryIssued"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// NewPageResponse flattens a Page into its JSON shape.
func NewPageResponse(page membersearch.Page[membersearch.MemberProjection]) PageResponse {
	return PageResponse{
		Content:          page.Content,
		TotalElements:    page.Total,
		TotalPages:       page.TotalPages(),
		Number:           page.Number(),
		Size:             page.Size(),
		Offset:           page.Offset,
		NumberOfElements: page.NumberOfElements(),
		First:            page.Offset == 0,
		Last:             page.IsLast(),
		Empty:            page.NumberOfElements() == 0,
		CountQueryIssued: page.CountQueryIssued,
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// respondError maps the error taxonomy of membersearch to status codes.
// Client errors carry the error text on one line, server errors a fixed message.
func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, code, message := http.StatusInternalServerError, codeInternalError, "internal server error"

	switch {
	case errors.Is(err, errInvalidBody):
		statusCode, code, message = http.StatusBadRequest, codeInvalidBody, clientMessage(err)
	case errors.Is(err, membersearch.ErrInvalidConditionValue):
		statusCode, code, message = http.StatusBadRequest, codeInvalidCondition, clientMessage(err)
	case errors.Is(err, membersearch.ErrUnknownOrderField):
		statusCode, code, message = http.StatusBadRequest, codeInvalidOrder, clientMessage(err)
	case errors.Is(err, membersearch.ErrInvalidPageRequest):
		statusCode, code, message = http.StatusBadRequest, codeInvalidPage, clientMessage(err)
	case errors.Is(err, membersearch.ErrStoreUnavailable):
		statusCode, code, message = http.StatusServiceUnavailable, codeStoreUnavailable, "member store unavailable"
	}

	if statusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "member search request failed", "error", err.Error(), "status", statusCode)
	}

	respondJSON(w, r, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// clientMessage flattens the lines of joined errors into "outer: inner".
func clientMessage(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
