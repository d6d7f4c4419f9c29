package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomehq/tome/internal/catalog"
	"github.com/tomehq/tome/internal/engine"
	"github.com/tomehq/tome/internal/query"
)

// entrySummary is the list-view projection of an entry.
type entrySummary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	Purpose    string   `json:"purpose"`
	Tags       []string `json:"tags"`
	Languages  []string `json:"languages"`
	Updated    string   `json:"updated"`
}

// entryDetail adds scenarios, references and the variant payloads.
type entryDetail struct {
	entrySummary
	WhenToUse []string                 `json:"when_to_use,omitempty"`
	Related   []string                 `json:"related,omitempty"`
	Variants  map[string][]variantView `json:"variants"`
}

type variantView struct {
	Name        string `json:"name"`
	Library     string `json:"library"`
	Recommended bool   `json:"recommended"`
	Body        string `json:"body,omitempty"`
}

func summarize(e *catalog.Entry) entrySummary {
	return entrySummary{
		ID:         e.ID,
		Title:      e.Title,
		Category:   e.Category,
		Difficulty: e.Difficulty,
		Purpose:    e.Purpose,
		Tags:       e.Tags,
		Languages:  e.Languages(),
		Updated:    e.Updated.UTC().Format("2006-01-02"),
	}
}

func detail(e *catalog.Entry) entryDetail {
	variants := make(map[string][]variantView, len(e.Variants))
	for _, lang := range e.Languages() {
		views := make([]variantView, 0, len(e.Variants[lang]))
		for _, v := range e.Variants[lang] {
			views = append(views, variantView{
				Name:        v.Name,
				Library:     v.Library,
				Recommended: v.Recommended,
				Body:        v.Body,
			})
		}
		variants[lang] = views
	}
	return entryDetail{
		entrySummary: summarize(e),
		WhenToUse:    e.WhenToUse,
		Related:      e.Related,
		Variants:     variants,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{"status": "ok"}
	if snap, ok := s.engine.Snapshot(); ok {
		health["fingerprint"] = snap.Catalog.Fingerprint()
	}
	writeData(w, http.StatusOK, health)
}

// snapshotOr503 fetches the published snapshot or answers 503, which is
// what a probe should see between process start and first refresh.
func (s *Server) snapshotOr503(w http.ResponseWriter) (*engine.Snapshot, bool) {
	snap, ok := s.engine.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, codeNotReady, "catalog not loaded yet")
		return nil, false
	}
	return snap, true
}

func filtersFromQuery(r *http.Request) query.Filters {
	q := r.URL.Query()
	return query.Filters{
		Language:      q.Get("language"),
		Category:      q.Get("category"),
		MaxDifficulty: q.Get("max_difficulty"),
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotOr503(w)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid k value %q", raw))
			return
		}
		limit = n
	}

	req := query.Request{
		Need:    r.URL.Query().Get("q"),
		Filters: filtersFromQuery(r),
		Limit:   limit,
	}
	results, err := query.Search(snap.Index, snap.Catalog, req)
	if err != nil {
		var ferr *query.FilterError
		if errors.As(err, &ferr) {
			writeError(w, http.StatusBadRequest, codeInvalidFilter, ferr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "query failed")
		return
	}
	if results == nil {
		results = []query.Result{}
	}
	writeData(w, http.StatusOK, results)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotOr503(w)
	if !ok {
		return
	}

	// Filter mode gives the ordered id list; project to summaries.
	results, err := query.Search(snap.Index, snap.Catalog, query.Request{Filters: filtersFromQuery(r)})
	if err != nil {
		var ferr *query.FilterError
		if errors.As(err, &ferr) {
			writeError(w, http.StatusBadRequest, codeInvalidFilter, ferr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "listing failed")
		return
	}

	summaries := make([]entrySummary, 0, len(results))
	for _, res := range results {
		if e, found := snap.Catalog.Get(res.EntryID); found {
			summaries = append(summaries, summarize(e))
		}
	}
	writeData(w, http.StatusOK, summaries)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotOr503(w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "*")
	e, found := snap.Catalog.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, codeUnknownEntry, fmt.Sprintf("no entry with id %q", id))
		return
	}
	writeData(w, http.StatusOK, detail(e))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Validate()
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Stats()
	if err != nil {
		s.respondEngineError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (s *Server) respondEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, codeNotReady, "catalog not loaded yet")
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
}

// refreshSummary is what a refresh call reports back.
type refreshSummary struct {
	Entries     int       `json:"entries"`
	LoadErrors  int       `json:"load_errors"`
	Warnings    int       `json:"warnings"`
	Fingerprint string    `json:"fingerprint"`
	BuiltAt     time.Time `json:"built_at"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Refresh(r.Context())
	if err != nil {
		s.log.Errorw("refresh failed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, codeInternal, "refresh failed")
		return
	}
	writeData(w, http.StatusOK, refreshSummary{
		Entries:     snap.Catalog.Len(),
		LoadErrors:  len(snap.Errors),
		Warnings:    len(snap.Warnings),
		Fingerprint: snap.Catalog.Fingerprint(),
		BuiltAt:     snap.BuiltAt,
	})
}
