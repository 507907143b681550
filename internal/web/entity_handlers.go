package web

import (
	"net/http"

	"github.com/evcraddock/realty-crm/internal/client"
	"github.com/evcraddock/realty-crm/internal/negotiation"
	"github.com/evcraddock/realty-crm/internal/property"
)

// handleProperties routes /properties/ and /properties/{id}.
func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/properties/")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			list, err := s.properties.List()
			respond(w, r, list, err, http.StatusOK)
		case http.MethodPost:
			var in property.Input
			if decodeJSON(w, r, &in) {
				p, err := s.properties.Create(in)
				respond(w, r, p, err, http.StatusCreated)
			}
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 1 {
		apiError(w, "not found", http.StatusNotFound)
		return
	}
	id, ok := parseID(w, parts[0], "property")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.properties.GetByID(id)
		respond(w, r, p, err, http.StatusOK)
	case http.MethodPut:
		var in property.Input
		if decodeJSON(w, r, &in) {
			p, err := s.properties.Update(id, in)
			respond(w, r, p, err, http.StatusOK)
		}
	case http.MethodDelete:
		respondDeleted(w, r, s.properties.Delete(id))
	default:
		methodNotAllowed(w)
	}
}

// handleClients routes /clients/ and /clients/{id}.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/clients/")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			list, err := s.clients.List()
			respond(w, r, list, err, http.StatusOK)
		case http.MethodPost:
			var in client.Input
			if decodeJSON(w, r, &in) {
				c, err := s.clients.Create(in)
				respond(w, r, c, err, http.StatusCreated)
			}
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 1 {
		apiError(w, "not found", http.StatusNotFound)
		return
	}
	id, ok := parseID(w, parts[0], "client")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.clients.GetByID(id)
		respond(w, r, c, err, http.StatusOK)
	case http.MethodPut:
		var in client.Input
		if decodeJSON(w, r, &in) {
			c, err := s.clients.Update(id, in)
			respond(w, r, c, err, http.StatusOK)
		}
	case http.MethodDelete:
		respondDeleted(w, r, s.clients.Delete(id))
	default:
		methodNotAllowed(w)
	}
}

// handleNegotiations routes /negotiations/ and /negotiations/{id}.
func (s *Server) handleNegotiations(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/negotiations/")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			list, err := s.negotiations.List()
			respond(w, r, list, err, http.StatusOK)
		case http.MethodPost:
			var in negotiation.Input
			if decodeJSON(w, r, &in) {
				n, err := s.negotiations.Create(in)
				respond(w, r, n, err, http.StatusCreated)
			}
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 1 {
		apiError(w, "not found", http.StatusNotFound)
		return
	}
	id, ok := parseID(w, parts[0], "negotiation")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		n, err := s.negotiations.GetByID(id)
		respond(w, r, n, err, http.StatusOK)
	case http.MethodPut:
		var in negotiation.Input
		if decodeJSON(w, r, &in) {
			n, err := s.negotiations.Update(id, in)
			respond(w, r, n, err, http.StatusOK)
		}
	case http.MethodDelete:
		respondDeleted(w, r, s.negotiations.Delete(id))
	default:
		methodNotAllowed(w)
	}
}

func respond(w http.ResponseWriter, r *http.Request, data interface{}, err error, code int) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	apiJSON(w, data, code)
}

func respondDeleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	deleted(w)
}
