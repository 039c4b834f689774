package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/scout/internal/contracts"
	"github.com/wonny/scout/internal/paper"
	"github.com/wonny/scout/internal/scanner"
	"github.com/wonny/scout/internal/scoring"
	"github.com/wonny/scout/internal/trader"
	"github.com/wonny/scout/pkg/logger"
)

// ScanHandler serves the scan pipeline's read-only monitoring endpoints.
// 쓰기 없음 — 파이프라인 조작은 API 로 열지 않는다.
type ScanHandler struct {
	pipeline *scanner.Pipeline
	adaptive *scanner.AdaptiveLayer
	loop     *trader.Loop
	scorer   *scoring.System
	provider contracts.MarketDataProvider
	ledger   *paper.Repository
	logger   *logger.Logger
}

// NewScanHandler creates the scan handler. loop/ledger may be nil when the
// process runs scan-only (관찰 모드).
func NewScanHandler(
	pipeline *scanner.Pipeline,
	adaptive *scanner.AdaptiveLayer,
	loop *trader.Loop,
	scorer *scoring.System,
	provider contracts.MarketDataProvider,
	ledger *paper.Repository,
	log *logger.Logger,
) *ScanHandler {
	return &ScanHandler{
		pipeline: pipeline,
		adaptive: adaptive,
		loop:     loop,
		scorer:   scorer,
		provider: provider,
		ledger:   ledger,
		logger:   log,
	}
}

// GetStatus returns pipeline timing and stage counts.
func (h *ScanHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.Status())
}

// GetCandidates returns the latest stage outputs.
// ?stage=fast|deep (기본 deep)
func (h *ScanHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	stage := r.URL.Query().Get("stage")

	var candidates []*contracts.StockCandidate
	if stage == "fast" {
		candidates = h.pipeline.FastCandidates()
	} else {
		candidates = h.pipeline.DeepCandidates()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stage":      stage,
		"count":      len(candidates),
		"candidates": candidates,
	})
}

// GetWatchlist returns the scored deep scan output the trading loop saw last.
func (h *ScanHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	if h.loop == nil {
		writeError(w, http.StatusServiceUnavailable, "trading loop not running")
		return
	}

	watchlist := h.loop.Watchlist()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(watchlist),
		"watchlist": watchlist,
	})
}

// GetMarketCondition returns the current market regime classification.
func (h *ScanHandler) GetMarketCondition(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"condition": h.adaptive.MarketCondition(ctx),
	})
}

// ScoreStock scores one ticker on demand from live data.
// ?scan_type=default|volume_based|price_change|ai_driven
func (h *ScanHandler) ScoreStock(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if code == "" {
		writeError(w, http.StatusBadRequest, "stock code required")
		return
	}

	scanType := scoring.ScanType(r.URL.Query().Get("scan_type"))
	if scanType == "" {
		scanType = scoring.ScanTypeDefault
	}

	// 감시 목록에 이미 있으면 보강된 스냅샷을 그대로 쓴다
	candidate := h.findCandidate(code)
	if candidate == nil {
		writeError(w, http.StatusNotFound, "stock not in current candidate set")
		return
	}

	result, err := h.scorer.Calculate(candidate, scanType)
	if err != nil {
		h.logger.WithError(err).WithField("code", code).Error("On-demand scoring failed")
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetPaperSummary returns today's paper-trading aggregate.
func (h *ScanHandler) GetPaperSummary(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "paper ledger not configured")
		return
	}

	summary, err := h.ledger.GetDailySummary(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Paper summary query failed")
		writeError(w, http.StatusInternalServerError, "summary query failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *ScanHandler) findCandidate(code string) *contracts.StockCandidate {
	for _, c := range h.pipeline.DeepCandidates() {
		if c.Code == code {
			return c
		}
	}
	for _, c := range h.pipeline.FastCandidates() {
		if c.Code == code {
			return c
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
