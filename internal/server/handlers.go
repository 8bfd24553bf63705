package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/bobmcallan/giftscan/internal/common"
	"github.com/bobmcallan/giftscan/internal/models"
)

// scheduledResponse is returned by every trigger endpoint once a run is
// enqueued. Downstream failures after this point are observable only via
// logs and the destination channel.
type scheduledResponse struct {
	Message string `json:"message"`
}

const scheduledMessage = "Job has been started successfully"

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleDiscountedStocks handles GET /discounted_stocks?telegram_chat_id=<id>
func (s *Server) handleDiscountedStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.scheduleRun(w, r, models.RunScopeAll, "", true)
}

// handleAllStocksStatus handles GET /all_stocks_status?telegram_chat_id=<id>
func (s *Server) handleAllStocksStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	s.scheduleRun(w, r, models.RunScopeAll, "", false)
}

// handleIndustry handles GET /industry/{industry}?telegram_chat_id=<id>&only_discount=<bool>
func (s *Server) handleIndustry(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	industry := PathParam(r, "/industry/", "")
	if unescaped, err := url.PathUnescape(industry); err == nil {
		industry = unescaped
	}
	if industry == "" {
		WriteError(w, http.StatusBadRequest, "industry is required")
		return
	}

	onlyDiscount := true
	if v := r.URL.Query().Get("only_discount"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "only_discount must be a boolean")
			return
		}
		onlyDiscount = parsed
	}

	s.scheduleRun(w, r, models.RunScopeIndustry, industry, onlyDiscount)
}

// scheduleRun resolves the candidate list and enqueues a background run.
// Symbol store failures surface here as a 500; anything after the enqueue is
// fire-and-forget.
func (s *Server) scheduleRun(w http.ResponseWriter, r *http.Request, scope, industry string, onlyDiscounted bool) {
	chatID := r.URL.Query().Get("telegram_chat_id")
	if chatID == "" {
		WriteError(w, http.StatusBadRequest, "telegram_chat_id is required")
		return
	}

	var (
		records []*models.SymbolRecord
		err     error
	)
	if scope == models.RunScopeIndustry {
		records, err = s.app.SymbolStore.ListByIndustry(r.Context(), industry)
	} else {
		records, err = s.app.SymbolStore.List(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	run := &models.Run{
		Scope:          scope,
		Industry:       industry,
		ChatID:         chatID,
		OnlyDiscounted: onlyDiscounted,
		Symbols:        records,
	}
	if err := s.app.Runner.Schedule(run); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, scheduledResponse{Message: scheduledMessage})
}
