package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"themeplane/model"
	"themeplane/storage"
	"themeplane/theme"
	"themeplane/tokens"
)

type Server struct {
	manager  *theme.Manager
	store    *storage.Store
	ws       *WSConnectionManager
	upgrader websocket.Upgrader

	mu      sync.Mutex
	current model.Selection
}

// NewServer creates the dev-server API around a theme manager and snapshot
// store. initial is the selection served before any apply.
func NewServer(manager *theme.Manager, store *storage.Store, initial model.Selection) *Server {
	return &Server{
		manager: manager,
		store:   store,
		ws:      NewWSConnectionManager(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		current: initial,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/current", s.handleCurrent)
	mux.HandleFunc("/api/apply", s.handleApply)
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/tokens", s.handleTokens)
	mux.HandleFunc("/api/snapshots", s.handleSnapshots)
	mux.HandleFunc("/api/export/tokens.css", s.handleExportCSS)
	mux.HandleFunc("/api/export/tokens.json", s.handleExportJSON)
	mux.HandleFunc("/api/export/tokens.csv", s.handleExportCSV)
	mux.HandleFunc("/ws", s.handleWS)
}

// Current returns the currently applied selection.
func (s *Server) Current() model.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// NotifyReload broadcasts a reload event to all connected preview clients.
func (s *Server) NotifyReload() {
	s.ws.Broadcast(model.Event{
		Type: model.EventReload,
		Time: time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"themes":  len(s.manager.ListThemes()),
		"clients": s.ws.Count(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Current())
}

// ---------- apply ----------

type applyRequest struct {
	Theme   string `json:"theme"`
	Variant string `json:"variant"`
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	info := s.manager.GetTheme(req.Theme)
	if info == nil {
		http.Error(w, "unknown theme", http.StatusNotFound)
		return
	}
	if req.Variant == "" {
		req.Variant = s.manager.DefaultVariant(req.Theme)
	}
	if _, ok := info.Variants[req.Variant]; !ok {
		http.Error(w, "unknown variant", http.StatusNotFound)
		return
	}

	sel := model.Selection{Theme: req.Theme, Variant: req.Variant}
	s.mu.Lock()
	s.current = sel
	s.mu.Unlock()

	s.ws.Broadcast(model.Event{
		Type:    model.EventApply,
		Theme:   sel.Theme,
		Variant: sel.Variant,
		Time:    time.Now().UTC(),
	})

	// Record what was applied so selections can be compared later.
	if snap, err := s.snapshotFrom(sel.Theme, sel.Variant); err == nil {
		if err := s.store.SaveSnapshot(snap); err != nil {
			log.Printf("save snapshot: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, sel)
}

// ---------- validate ----------

type validateResponse struct {
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors"`
	Warnings     []string `json:"warnings,omitempty"`
	DanglingRefs []string `json:"dangling_refs,omitempty"`
}

// handleValidate checks one posted token document. Findings are advisory, so
// the response is 200 regardless of the document's validity. With refs=1 the
// response also lists the properties whose reference resolves to no token.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	format := theme.FormatJSON
	if r.URL.Query().Get("format") == "toml" {
		format = theme.FormatTOML
	}

	doc, warnings, err := theme.DecodeDocument(body, format)
	if err != nil {
		http.Error(w, "invalid document", http.StatusBadRequest)
		return
	}

	report := tokens.Validate(doc)
	resp := validateResponse{
		Valid:    report.Valid(),
		Errors:   append([]string{}, report.Errors...),
		Warnings: warnings,
	}

	if r.URL.Query().Get("refs") == "1" {
		merged, err := tokens.Merge([]tokens.Document{doc})
		if err != nil {
			log.Printf("validate merge: %v", err)
		}
		resp.DanglingRefs = tokens.CheckReferences(merged)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ---------- tokens ----------

type tokensResponse struct {
	Theme      string            `json:"theme"`
	Variant    string            `json:"variant"`
	Dark       bool              `json:"dark"`
	Generated  int               `json:"generated"`
	Base       map[string]string `json:"base"`
	Properties map[string]string `json:"properties"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	themeName, variant := s.selectionFor(r.URL.Query())

	merged, _, err := s.manager.ResolveTheme(themeName, variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, tokensResponse{
		Theme:      themeName,
		Variant:    variant,
		Dark:       merged.Dark,
		Generated:  merged.Generated,
		Base:       merged.Base,
		Properties: merged.Properties,
	})
}

// ---------- snapshots ----------

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()

		now := time.Now()
		from := now.AddDate(0, 0, -30)
		to := now

		if v := q.Get("from"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "invalid from", http.StatusBadRequest)
				return
			}
			from = t
		}
		if v := q.Get("to"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				http.Error(w, "invalid to", http.StatusBadRequest)
				return
			}
			to = t
		}

		snaps, err := s.store.ListSnapshots(from, to)
		if err != nil {
			http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snaps)

	case http.MethodPost:
		themeName, variant := s.selectionFor(r.URL.Query())

		snap, err := s.snapshotFrom(themeName, variant)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err := s.store.SaveSnapshot(snap); err != nil {
			http.Error(w, "failed to save snapshot", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, snap)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) snapshotFrom(themeName, variant string) (model.Snapshot, error) {
	return theme.BuildSnapshot(s.manager, themeName, variant)
}

// ---------- export ----------

func (s *Server) handleExportCSS(w http.ResponseWriter, r *http.Request) {
	themeName, variant := s.selectionFor(r.URL.Query())

	merged, _, err := s.manager.ResolveTheme(themeName, variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	css := theme.RenderCSS(merged)
	if scope := r.URL.Query().Get("scope"); scope != "" {
		css = theme.RenderCSSScoped(scope, merged)
	}

	filename := fmt.Sprintf("%s-%s-tokens-%s.css", themeName, variant, time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write([]byte(css))
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	themeName, variant := s.selectionFor(r.URL.Query())

	merged, _, err := s.manager.ResolveTheme(themeName, variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("%s-%s-tokens-%s.json", themeName, variant, time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, theme.FlatTokens(merged))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	themeName, variant := s.selectionFor(r.URL.Query())

	merged, _, err := s.manager.ResolveTheme(themeName, variant)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	flat := theme.FlatTokens(merged)
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)

	filename := fmt.Sprintf("%s-%s-tokens-%s.csv", themeName, variant, time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Token", "Value"}); err != nil {
		log.Printf("write CSV header error: %v", err)
		return
	}
	for _, name := range names {
		if err := writer.Write([]string{name, flat[name]}); err != nil {
			log.Printf("write CSV row error: %v", err)
			return
		}
	}
}

// ---------- websocket ----------

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	s.ws.Add(conn)

	cur := s.Current()
	if err := s.ws.WriteJSON(conn, model.Event{
		Type:    model.EventApply,
		Theme:   cur.Theme,
		Variant: cur.Variant,
		Time:    time.Now().UTC(),
	}); err != nil {
		log.Printf("websocket hello: %v", err)
	}

	// Clients only listen; the read loop just detects disconnects.
	go func() {
		defer func() {
			s.ws.Remove(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ---------- helpers ----------

// selectionFor resolves theme/variant query parameters, defaulting to the
// applied selection and the theme's default variant.
func (s *Server) selectionFor(q url.Values) (string, string) {
	themeName := q.Get("theme")
	variant := q.Get("variant")

	if themeName == "" {
		cur := s.Current()
		themeName = cur.Theme
		if variant == "" {
			variant = cur.Variant
		}
	}
	if variant == "" {
		variant = s.manager.DefaultVariant(themeName)
	}

	return themeName, variant
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON error: %v", err)
	}
}
