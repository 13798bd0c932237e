package handler

import (
	"net/http"
	"strconv"
	"time"
)

type queryStringValues struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	Limit     int
	Offset    int
}

func retrieveUrlQueryValues(r *http.Request) *queryStringValues {
	var queryValues = &queryStringValues{}

	// Parse start_date if provided
	startDateStr := r.URL.Query().Get("start_date")
	if startDateStr != "" {
		parsedStart, err := time.Parse("2006-01-02", startDateStr)
		if err == nil {
			queryValues.StartDate = &parsedStart
		}
	}

	// Parse end_date if provided
	endDateStr := r.URL.Query().Get("end_date")
	if endDateStr != "" {
		parsedEnd, err := time.Parse("2006-01-02", endDateStr)
		if err == nil {
			queryValues.EndDate = &parsedEnd
		}
	}

	// Parse pagination params
	limitStr := r.URL.Query().Get("limit")
	pageStr := r.URL.Query().Get("page")

	// Default pagination values
	page := 1
	limit := 10

	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			limit = parsedLimit
		}
	}
	queryValues.Limit = limit

	if pageStr != "" {
		if parsedPage, err := strconv.Atoi(pageStr); err == nil {
			page = parsedPage
		}
	}
	queryValues.Page = page
	queryValues.Offset = (page - 1) * limit

	// search params
	searchQuery := r.URL.Query().Get("search")
	queryValues.Search = searchQuery

	return queryValues
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
