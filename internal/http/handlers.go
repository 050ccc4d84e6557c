package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jizhang/internal/codec"
	"jizhang/internal/core"
	"jizhang/internal/engine"
	"jizhang/internal/format"
)

type eventRequest struct {
	Text     string `json:"text"`
	MemberID string `json:"member_id"`
}

type eventResponse struct {
	Kind  string `json:"kind"`
	Reply string `json:"reply"`
}

var kindNames = map[engine.ResultKind]string{
	engine.ResultHelp:     "help",
	engine.ResultIdentity: "identity",
	engine.ResultEntry:    "entry",
	engine.ResultRecent:   "recent",
	engine.ResultMonth:    "month",
	engine.ResultWeek:     "week",
	engine.ResultReset:    "reset",
	engine.ResultError:    "error",
}

// handleEvent runs one chat event through the engine and returns the
// rendered reply alongside the result kind.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.MemberID == "" {
		http.Error(w, "member_id is required", http.StatusBadRequest)
		return
	}

	res := s.engine.Handle(r.Context(), engine.Event{Text: req.Text, MemberID: req.MemberID})

	status := http.StatusOK
	if res.Kind == engine.ResultError {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(eventResponse{
		Kind:  kindNames[res.Kind],
		Reply: format.Render(res, s.loc),
	})
}

// handleExport streams the whole ledger as a CSV backup, oldest first.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := s.ledger.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		http.Error(w, "export failed", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=ledger-%s.csv", time.Now().In(s.loc).Format("20060102")))
	if err := codec.Write(w, records); err != nil {
		slog.ErrorContext(r.Context(), "Export write failed", "error", err)
	}
}

type importResponse struct {
	Imported  int  `json:"imported"`
	Skipped   int  `json:"skipped"`
	Fallbacks int  `json:"fallbacks"`
	Cleared   bool `json:"cleared"`
}

// handleImport restores records from a CSV body. With ?clear=1 the
// ledger is wiped first; otherwise rows are appended.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	clearFirst := r.URL.Query().Get("clear") == "1"

	res, err := codec.Read(r.Body, s.loc, time.Now())
	if err != nil {
		http.Error(w, "invalid CSV body", http.StatusBadRequest)
		return
	}

	drafts := make([]core.Draft, 0, len(res.Rows))
	for _, row := range res.Rows {
		drafts = append(drafts, row.Draft)
	}

	imported, err := s.ledger.BulkImport(r.Context(), drafts, clearFirst)
	if err != nil {
		slog.ErrorContext(r.Context(), "Import failed", "error", err, "imported", imported)
		http.Error(w, "import failed", http.StatusServiceUnavailable)
		return
	}

	slog.InfoContext(r.Context(), "Import completed",
		"imported", imported,
		"skipped", res.Skipped,
		"fallbacks", res.Fallbacks,
		"cleared", clearFirst)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(importResponse{
		Imported:  imported,
		Skipped:   res.Skipped,
		Fallbacks: res.Fallbacks,
		Cleared:   clearFirst,
	})
}
