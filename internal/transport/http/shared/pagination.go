package shared

import (
	"net/http"
	"strconv"
)

const totalCountHeader = "X-Total-Count"

// Page is a limit/offset window read from the query string. Malformed values
// fall back to the defaults; limit is clamped to the ceiling.
type Page struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Page {
	page := Page{Limit: defaultLimit}
	query := r.URL.Query()
	if v, ok := queryInt(query.Get("limit")); ok && v > 0 {
		page.Limit = v
	}
	if v, ok := queryInt(query.Get("offset")); ok && v >= 0 {
		page.Offset = v
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}

// SetTotal reports the unpaged row count. A negative total (count failed)
// leaves the header unset.
func SetTotal(w http.ResponseWriter, total int) {
	if total < 0 {
		return
	}
	w.Header().Set(totalCountHeader, strconv.Itoa(total))
}

func queryInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
