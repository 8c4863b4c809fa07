// Package cloudflaretest provides an in-memory Cloudflare API for tests.
package cloudflaretest

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
)

type Zone struct {
	ID        string
	Name      string
	AccountID string
}

type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

type Tunnel struct {
	ID        string
	AccountID string
	Name      string
	Secret    string
	ConfigSrc string
	Token     string
}

type Call struct {
	Method string
	Path   string
}

// Server serves the zone, DNS record and cfd_tunnel endpoints against in-memory state.
type Server struct {
	*httptest.Server

	Token string
	// OmitTunnelToken leaves the token out of tunnel creation responses, forcing a token lookup.
	OmitTunnelToken bool
	// FailPath makes every request whose route template matches respond with HTTP 500.
	FailPath string

	mu      sync.Mutex
	zones   []Zone
	records map[string][]Record
	tunnels map[string]Tunnel
	calls   []Call
}

func NewServer(token string) *Server {
	s := &Server{
		Token:   token,
		records: make(map[string][]Record),
		tunnels: make(map[string]Tunnel),
	}

	router := mux.NewRouter()
	router.Use(s.record, s.authorize)
	router.HandleFunc("/zones", s.listZones).Methods(http.MethodGet)
	router.HandleFunc("/zones/{zone}", s.getZone).Methods(http.MethodGet)
	router.HandleFunc("/zones/{zone}/dns_records", s.listRecords).Methods(http.MethodGet)
	router.HandleFunc("/zones/{zone}/dns_records", s.createRecord).Methods(http.MethodPost)
	router.HandleFunc("/zones/{zone}/dns_records/{id}", s.deleteRecord).Methods(http.MethodDelete)
	router.HandleFunc("/accounts/{account}/cfd_tunnel", s.createTunnel).Methods(http.MethodPost)
	router.HandleFunc("/accounts/{account}/cfd_tunnel/{id}/token", s.getTunnelToken).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{account}/cfd_tunnel/{id}", s.deleteTunnel).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(router)
	return s
}

func (s *Server) AddZone(id, name, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones = append(s.zones, Zone{ID: id, Name: name, AccountID: accountID})
}

func (s *Server) AddRecord(zoneID string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[zoneID] = append(s.records[zoneID], record)
}

func (s *Server) AddTunnel(tunnel Tunnel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tunnels[tunnel.ID] = tunnel
}

func (s *Server) Records(zoneID string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record{}, s.records[zoneID]...)
}

func (s *Server) Tunnels() []Tunnel {
	s.mu.Lock()
	defer s.mu.Unlock()

	tunnels := make([]Tunnel, 0, len(s.tunnels))
	for _, t := range s.tunnels {
		tunnels = append(tunnels, t)
	}
	sort.Slice(tunnels, func(i, j int) bool { return tunnels[i].Name < tunnels[j].Name })
	return tunnels
}

// Calls returns the requests served so far, keyed by their route template.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call{}, s.calls...)
}

// CountCalls counts requests matching method and route template,
// e.g. ("POST", "/zones/{zone}/dns_records").
func (s *Server) CountCalls(method, route string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == route {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: route})
		s.mu.Unlock()

		if s.FailPath != "" && s.FailPath == route {
			fail(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.Token || s.Token == "" {
			fail(w, http.StatusUnauthorized, "Authentication error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listZones(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 20
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}

	var result []map[string]interface{}
	for _, z := range s.zones {
		result = append(result, zoneJSON(z))
	}

	totalPages := (len(result) + perPage - 1) / perPage
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(result) {
		start = len(result)
	}
	if end > len(result) {
		end = len(result)
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"errors":  []interface{}{},
		"result":  append([]map[string]interface{}{}, result[start:end]...),
		"result_info": map[string]interface{}{
			"page":        page,
			"per_page":    perPage,
			"total_pages": totalPages,
			"count":       end - start,
			"total_count": len(result),
		},
	})
}

func (s *Server) getZone(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := mux.Vars(r)["zone"]
	for _, z := range s.zones {
		if z.ID == id {
			success(w, zoneJSON(z))
			return
		}
	}
	fail(w, http.StatusNotFound, "Invalid zone identifier")
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zone := mux.Vars(r)["zone"]
	recordType := r.URL.Query().Get("type")
	name := r.URL.Query().Get("name")

	result := []Record{}
	for _, record := range s.records[zone] {
		if (recordType == "" || record.Type == recordType) && (name == "" || record.Name == name) {
			result = append(result, record)
		}
	}
	success(w, result)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var record Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	zone := mux.Vars(r)["zone"]
	for _, existing := range s.records[zone] {
		if existing.Name == record.Name {
			fail(w, http.StatusBadRequest, "An A, AAAA, or CNAME record with that host already exists.")
			return
		}
	}

	record.ID = uuid.New().String()
	s.records[zone] = append(s.records[zone], record)
	success(w, record)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vars := mux.Vars(r)
	records := s.records[vars["zone"]]
	for i, record := range records {
		if record.ID == vars["id"] {
			s.records[vars["zone"]] = append(records[:i:i], records[i+1:]...)
			success(w, map[string]string{"id": record.ID})
			return
		}
	}
	fail(w, http.StatusNotFound, "Record not found")
}

func (s *Server) createTunnel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Secret    string `json:"tunnel_secret"`
		ConfigSrc string `json:"config_src"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	tunnel := Tunnel{
		ID:        id,
		AccountID: mux.Vars(r)["account"],
		Name:      req.Name,
		Secret:    req.Secret,
		ConfigSrc: req.ConfigSrc,
		Token:     fmt.Sprintf("token-%s", id),
	}
	s.tunnels[id] = tunnel

	result := map[string]interface{}{"id": tunnel.ID, "name": tunnel.Name}
	if !s.OmitTunnelToken {
		result["token"] = tunnel.Token
	}
	success(w, result)
}

func (s *Server) getTunnelToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tunnel, ok := s.tunnels[mux.Vars(r)["id"]]
	if !ok {
		fail(w, http.StatusNotFound, "Tunnel not found")
		return
	}
	success(w, tunnel.Token)
}

func (s *Server) deleteTunnel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vars := mux.Vars(r)
	tunnel, ok := s.tunnels[vars["id"]]
	if !ok || tunnel.AccountID != vars["account"] {
		fail(w, http.StatusNotFound, "Tunnel not found")
		return
	}
	delete(s.tunnels, tunnel.ID)
	success(w, map[string]interface{}{"id": tunnel.ID, "name": tunnel.Name})
}

func zoneJSON(z Zone) map[string]interface{} {
	return map[string]interface{}{
		"id":     z.ID,
		"name":   z.Name,
		"status": "active",
		"account": map[string]string{
			"id":   z.AccountID,
			"name": "Test Account",
		},
	}
}

func success(w http.ResponseWriter, result interface{}) {
	respond(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"errors":   []interface{}{},
		"messages": []interface{}{},
		"result":   result,
	})
}

func fail(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]interface{}{
		"success": false,
		"errors":  []map[string]interface{}{{"code": status, "message": message}},
		"result":  nil,
	})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
