package apiclient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/evcraddock/realty-crm/internal/clock"
	"github.com/evcraddock/realty-crm/internal/config"
	"github.com/evcraddock/realty-crm/internal/db"
	"github.com/evcraddock/realty-crm/internal/visit"
	"github.com/evcraddock/realty-crm/internal/web"
)

func TestListVisitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/visits/" {
			t.Errorf("path = %q, want /visits/", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("status") != "Agendada" || q.Get("client_id") != "7" || q.Get("limit") != "5" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		if q.Has("offset") {
			t.Error("zero offset should be omitted")
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Error("expected Bearer tok")
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]*visit.Visit{{ID: 1, ClientID: 7, Status: visit.Scheduled}}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	visits, err := c.ListVisits(VisitListOptions{Status: "Agendada", ClientID: 7, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visits) != 1 || visits[0].ClientID != 7 {
		t.Errorf("visits = %+v", visits)
	}
}

func TestUpdateVisitStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/visits/3/status" || r.URL.Query().Get("status") != "Realizada" {
			t.Errorf("url = %s", r.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(&visit.Visit{ID: 3, Status: visit.Completed}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	v, err := New(srv.URL, "tok").UpdateVisitStatus(3, "Realizada")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.Status != visit.Completed {
		t.Errorf("status = %q", v.Status)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if err := json.NewEncoder(w).Encode(map[string]string{"error": "Token expired"}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, "old").Me()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Token expired" {
		t.Errorf("error = %+v", apiErr)
	}
}

func TestAPIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL, "").Ping()
	if err == nil || err.Error() != "server error: Bad Gateway" {
		t.Errorf("err = %v", err)
	}
}

// TestAgainstServer drives the real API handler end to end.
func TestAgainstServer(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	cfg := &config.Config{JWTSecret: "k", TokenTTL: time.Hour, BcryptCost: 4, Location: time.UTC}
	clk := clock.NewFixed(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	srv := httptest.NewServer(web.NewServer(d, cfg, clk))
	defer srv.Close()

	if _, err := d.Exec(`INSERT INTO clients (name, phone, email, interest_type) VALUES ('Ana', '1', 'a@b.co', 'Compra')`); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec(`INSERT INTO properties (type, location, value, status) VALUES ('Casa', 'Centro', 1, 'Disponível')`); err != nil {
		t.Fatal(err)
	}

	anon := New(srv.URL+"/", "")
	if err := anon.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	// Register through the public endpoint.
	if err := anon.send(http.MethodPost, "/users/register", map[string]string{
		"username": "admin", "email": "admin@example.com", "password": "123456",
	}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := anon.Login("admin", "nope"); err == nil {
		t.Fatal("expected login failure")
	}
	tok, err := anon.Login("admin", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	c := New(srv.URL, tok.AccessToken)
	me, err := c.Me()
	if err != nil || me.Username != "admin" {
		t.Fatalf("me: %v %+v", err, me)
	}

	created, err := c.CreateVisit(visit.Input{ClientID: 1, PropertyID: 1, ScheduledDatetime: "2025-06-02T15:00:00Z"})
	if err != nil {
		t.Fatalf("create visit: %v", err)
	}

	today, err := c.TodayVisits()
	if err != nil || len(today) != 1 || today[0].ID != created.ID {
		t.Fatalf("today: %v %+v", err, today)
	}

	cal, err := c.Calendar(6, 2025)
	if err != nil || len(cal) != 1 {
		t.Fatalf("calendar: %v %+v", err, cal)
	}

	if _, err := c.UpdateVisitStatus(created.ID, "Realizada"); err != nil {
		t.Fatalf("status: %v", err)
	}

	sum, err := c.VisitSummary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 1 || sum.Completed != 1 || sum.CompletionRatePercent != 100 {
		t.Errorf("summary = %+v", sum)
	}

	clients, err := c.ListClients()
	if err != nil || len(clients) != 1 {
		t.Fatalf("clients: %v %+v", err, clients)
	}
	props, err := c.ListProperties()
	if err != nil || len(props) != 1 {
		t.Fatalf("properties: %v %+v", err, props)
	}

	if err := c.DeleteVisit(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var apiErr *APIError
	if err := c.DeleteVisit(created.ID); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: %v", err)
	}
}
