package service

import (
	"net/http"

	"paper_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
)

type AccountView interface {
	Account() models.Account
	History() []models.Trade
	Performance(lastPrices map[string]float64) models.Performance
}

type PriceView interface {
	LastPrices() map[string]float64
}

type SignalView interface {
	Signals() []models.Signal
}

type Handlers struct {
	state   *State
	account AccountView
	prices  PriceView
	signals SignalView
	metrics http.Handler
}

func NewHandlers(state *State, account AccountView, prices PriceView, signals SignalView, metrics http.Handler) *Handlers {
	return &Handlers{
		state:   state,
		account: account,
		prices:  prices,
		signals: signals,
		metrics: metrics,
	}
}

func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/livez", h.livez).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/account", h.getAccount).Methods(http.MethodGet)
	r.HandleFunc("/trades", h.getTrades).Methods(http.MethodGet)
	r.HandleFunc("/signals", h.getSignals).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}
	return r
}

func (h *Handlers) livez(w http.ResponseWriter, _ *http.Request) {
	// liveness: процесс жив
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) readyz(w http.ResponseWriter, _ *http.Request) {
	// readiness: раннер крутится
	if !h.state.Ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type healthResponse struct {
	Ready         bool  `json:"ready"`
	WSConnected   bool  `json:"wsConnected"`
	UptimeSec     int64 `json:"uptimeSec"`
	LastCycleUnix int64 `json:"lastCycleUnix"`
	Cycles        int64 `json:"cycles"`
}

func (h *Handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Ready:       h.state.Ready(),
		WSConnected: h.state.WSConnected(),
		UptimeSec:   int64(h.state.Uptime().Seconds()),
		Cycles:      h.state.Cycles(),
	}
	if t := h.state.LastCycle(); !t.IsZero() {
		resp.LastCycleUnix = t.Unix()
	}
	writeJSON(w, resp)
}

type accountResponse struct {
	Cash        float64            `json:"cash"`
	Positions   map[string]float64 `json:"positions"`
	LastPrices  map[string]float64 `json:"lastPrices"`
	Performance models.Performance `json:"performance"`
}

func (h *Handlers) getAccount(w http.ResponseWriter, _ *http.Request) {
	acc := h.account.Account()
	prices := h.prices.LastPrices()
	writeJSON(w, accountResponse{
		Cash:        acc.Cash,
		Positions:   acc.Positions,
		LastPrices:  prices,
		Performance: h.account.Performance(prices),
	})
}

func (h *Handlers) getTrades(w http.ResponseWriter, r *http.Request) {
	trades := h.account.History()
	if sym := r.URL.Query().Get("symbol"); sym != "" {
		filtered := make([]models.Trade, 0, len(trades))
		for _, t := range trades {
			if t.Symbol == sym {
				filtered = append(filtered, t)
			}
		}
		trades = filtered
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	writeJSON(w, trades)
}

func (h *Handlers) getSignals(w http.ResponseWriter, _ *http.Request) {
	sigs := h.signals.Signals()
	if sigs == nil {
		sigs = []models.Signal{}
	}
	writeJSON(w, sigs)
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
