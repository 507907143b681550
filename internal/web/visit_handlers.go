package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/evcraddock/realty-crm/internal/visit"
)

// handleVisits routes /visits/ requests.
func (s *Server) handleVisits(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/visits/")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			s.listVisits(w, r)
		case http.MethodPost:
			s.createVisit(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	case len(parts) == 1 && parts[0] == "calendar":
		s.visitCalendar(w, r)
		return
	case len(parts) == 1 && parts[0] == "today":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		visits, err := s.visits.Today()
		respond(w, r, visits, err, http.StatusOK)
		return
	case len(parts) == 2 && parts[0] == "statistics" && parts[1] == "summary":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		sum, err := s.visits.Summary()
		respond(w, r, sum, err, http.StatusOK)
		return
	}

	id, ok := parseID(w, parts[0], "visit")
	if !ok {
		return
	}

	// /visits/{id}/status
	if len(parts) == 2 && parts[1] == "status" {
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		s.updateVisitStatus(w, r, id)
		return
	}
	if len(parts) != 1 {
		apiError(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := s.visits.Get(id)
		respond(w, r, v, err, http.StatusOK)
	case http.MethodPut, http.MethodPatch:
		var p visit.Patch
		if decodeJSON(w, r, &p) {
			v, err := s.visits.Update(id, p)
			respond(w, r, v, err, http.StatusOK)
		}
	case http.MethodDelete:
		respondDeleted(w, r, s.visits.Delete(id))
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) createVisit(w http.ResponseWriter, r *http.Request) {
	var in visit.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ClientID < 1 || in.PropertyID < 1 {
		apiError(w, "client_id and property_id are required", http.StatusBadRequest)
		return
	}
	v, err := s.visits.Create(in)
	respond(w, r, v, err, http.StatusCreated)
}

// listVisits applies the status, client_id, property_id, date_from, date_to,
// limit and offset query parameters.
func (s *Server) listVisits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f visit.Filter

	f.Status = visit.Status(q.Get("status"))

	ints := []struct {
		name string
		dst  *int64
	}{
		{"client_id", &f.ClientID},
		{"property_id", &f.PropertyID},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			id, ok := parseID(w, v, strings.TrimSuffix(p.name, "_id"))
			if !ok {
				return
			}
			*p.dst = id
		}
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				apiError(w, p.name+" must be an integer", http.StatusBadRequest)
				return
			}
			*p.dst = n
		}
	}
	if q.Get("limit") != "" && f.Limit == 0 {
		// An explicit zero is out of range rather than "use the default".
		f.Limit = -1
	}

	validator := s.visits.Validator()
	if v := q.Get("date_from"); v != "" {
		t, err := validator.ParseRangeBound("date_from", v, false)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := validator.ParseRangeBound("date_to", v, true)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f.DateTo = &t
	}

	visits, err := s.visits.List(f)
	respond(w, r, visits, err, http.StatusOK)
}

// visitCalendar defaults month and year to the current month.
func (s *Server) visitCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	now := s.visits.Validator().Now().In(s.visits.Validator().Location())
	month, year := int(now.Month()), now.Year()

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"month", &month}, {"year", &year}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				apiError(w, p.name+" must be an integer", http.StatusBadRequest)
				return
			}
			*p.dst = n
		}
	}

	visits, err := s.visits.Calendar(month, year)
	respond(w, r, visits, err, http.StatusOK)
}

// updateVisitStatus takes the status from the query string or a JSON body.
func (s *Server) updateVisitStatus(w http.ResponseWriter, r *http.Request, id int64) {
	status := r.URL.Query().Get("status")
	if status == "" && r.ContentLength != 0 {
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		status = req.Status
	}
	if status == "" {
		apiError(w, "status is required", http.StatusBadRequest)
		return
	}

	v, err := s.visits.UpdateStatus(id, status)
	respond(w, r, v, err, http.StatusOK)
}
