package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakeplatform/core/events"
	"stakeplatform/native/staking"
)

type configSource interface {
	Config() (staking.GlobalConfig, error)
}

type configView struct {
	Owner            string `json:"owner"`
	StakingToken     string `json:"stakingToken"`
	RewardToken      string `json:"rewardToken"`
	RewardPercentage uint64 `json:"rewardPercentage"`
	RewardDelay      uint64 `json:"rewardDelay"`
	UnstakeDelay     uint64 `json:"unstakeDelay"`
	Locked           bool   `json:"locked"`
}

type eventView struct {
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// newRouter serves the read-only operator surface: health, prometheus
// metrics, the live configuration, and the in-memory event log. A nil limiter
// disables throttling.
func newRouter(cfg configSource, log *events.Log, limiter *clientLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := cfg.Config()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, configView{
			Owner:            snapshot.Owner.Hex(),
			StakingToken:     snapshot.StakingToken.Hex(),
			RewardToken:      snapshot.RewardToken.Hex(),
			RewardPercentage: snapshot.RewardPercentage,
			RewardDelay:      snapshot.RewardDelay,
			UnstakeDelay:     snapshot.UnstakeDelay,
			Locked:           snapshot.Locked,
		})
	})

	r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
		var after uint64
		if raw := r.URL.Query().Get("after"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid after parameter", http.StatusBadRequest)
				return
			}
			after = parsed
		}
		records := log.Since(after)
		out := make([]eventView, 0, len(records))
		for _, rec := range records {
			out = append(out, eventView{Seq: rec.Seq, Type: rec.Event.Type, Attributes: rec.Event.Attributes})
		}
		writeJSON(w, out)
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
