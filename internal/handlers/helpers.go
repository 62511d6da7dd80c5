package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/narvaro/internal/scope"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug.Printf("Error encoding response: %v", err)
	}
}

// parseSelection reads the year/group/unit/week pickers off the query
// string. Missing or "all" values select everything on that axis.
func parseSelection(r *http.Request) scope.Selection {
	q := r.URL.Query()

	sel := scope.Selection{
		Group: q.Get("group"),
		Unit:  q.Get("unit"),
	}
	if sel.Group == "all" {
		sel.Group = ""
	}

	if year := q.Get("year"); year != "" && year != "all" {
		if n, err := strconv.Atoi(year); err == nil {
			sel.Year = n
		}
	}
	if week := q.Get("week"); week != "" && week != "all" {
		if n, err := strconv.Atoi(week); err == nil {
			sel.Week = n
		}
	}
	return sel
}
