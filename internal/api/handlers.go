package api

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/dynamic-member-search-go/membersearch"
)

var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// SearchRequest is the body of POST /v1/members/search. Without Page the result is unpaged.
type SearchRequest struct {
	Condition membersearch.SearchCondition `json:"condition"`
	Page      *PageRequestBody             `json:"page"`
	Sort      []string                     `json:"sort"`
}

type PageRequestBody struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (h *handler) searchV1(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cond, err := conditionFromQuery(query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	orders, err := ordersFromQuery(query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	content, err := h.searcher.Search(r.Context(), cond, orders...)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, content)
}

func (h *handler) searchV2(w http.ResponseWriter, r *http.Request) {
	h.searchPage(w, r, h.countingSearcher)
}

func (h *handler) searchV3(w http.ResponseWriter, r *http.Request) {
	h.searchPage(w, r, h.searcher)
}

func (h *handler) searchPage(w http.ResponseWriter, r *http.Request, searcher membersearch.Searcher) {
	query := r.URL.Query()

	cond, err := conditionFromQuery(query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	page, err := pageFromQuery(query, h.paging)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := searcher.SearchPage(r.Context(), cond, page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, NewPageResponse(result))
}

func (h *handler) searchByBody(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if err := strictJSON.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %s", errInvalidBody, err.Error()))
		return
	}

	if err := body.Condition.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	orders, err := parseOrders(body.Sort)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if body.Page == nil {
		content, searchErr := h.searcher.Search(r.Context(), body.Condition, orders...)
		if searchErr != nil {
			h.respondError(w, r, searchErr)
			return
		}

		respondJSON(w, r, http.StatusOK, content)
		return
	}

	page, err := h.paging.apply(membersearch.PageRequest{Offset: body.Page.Offset, Limit: body.Page.Limit, Orders: orders})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.searcher.SearchPage(r.Context(), body.Condition, page)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, NewPageResponse(result))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "health check failed", "error", err.Error())
			respondJSON(w, r, http.StatusServiceUnavailable, HealthResponse{Status: statusUnavailable})
			return
		}
	}

	respondJSON(w, r, http.StatusOK, HealthResponse{Status: statusOK})
}
