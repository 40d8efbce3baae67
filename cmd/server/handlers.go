package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/seacost/internal/calc"
	"github.com/Simplici0/seacost/internal/db"
	"github.com/Simplici0/seacost/internal/scenario"
	"github.com/Simplici0/seacost/internal/summary"
)

const maxBodyBytes = 1 << 20

type calculateResponse struct {
	Results    calc.Results    `json:"results"`
	Validation calc.Validation `json:"validation"`
}

type batchCreatedResponse struct {
	Batch      db.Batch        `json:"batch"`
	Results    calc.Results    `json:"results"`
	Validation calc.Validation `json:"validation"`
}

type defaultsResponse struct {
	Form   calc.FormData       `json:"form"`
	Fields []calc.Field        `json:"fields"`
	Engine calc.EngineSettings `json:"engine"`
}

type scenariosRequest struct {
	Form        json.RawMessage      `json:"form"`
	Variations  []scenario.Variation `json:"variations"`
	Sensitivity *struct {
		Field string    `json:"field"`
		Steps []float64 `json:"steps"`
	} `json:"sensitivity"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, defaultsResponse{
		Form:   calc.DefaultForm(),
		Fields: calc.Fields(),
		Engine: calc.Engine(),
	})
}

func (s *server) handleProductTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.ListProductTypes(r.Context())
	if err != nil {
		log.Printf("list product types: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load product types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeFormBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calc.Validate(form))
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeFormBody(w, r)
	if !ok {
		return
	}

	results, err := s.calculate(r.Context(), form)
	if err != nil {
		writeCalculateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{Results: results, Validation: calc.Validate(form)})
}

func (s *server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	var req scenariosRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid scenarios request")
		return
	}
	if len(req.Form) == 0 {
		writeError(w, http.StatusBadRequest, "missing form")
		return
	}
	form, err := calc.DecodeForm(bytes.NewReader(req.Form))
	if err != nil {
		writeError(w, http.StatusBadRequest, "form must be a JSON object")
		return
	}

	variations := req.Variations
	if req.Sensitivity != nil {
		variations = append(variations, scenario.Sensitivity(req.Sensitivity.Field, req.Sensitivity.Steps)...)
	}

	report, err := scenario.Run(r.Context(), s.calculate, form, variations, s.scenarioLimit)
	switch {
	case errors.Is(err, scenario.ErrUnknownField), errors.Is(err, scenario.ErrInvalidVariation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeCalculateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleBatchesList(w http.ResponseWriter, r *http.Request) {
	batches, err := s.store.ListBatches(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("list batches: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load batches")
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *server) handleBatchesCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeFormBody(w, r)
	if !ok {
		return
	}

	results, err := s.calculate(r.Context(), form)
	if err != nil {
		writeCalculateError(w, err)
		return
	}

	batch, err := s.store.SaveBatch(r.Context(), form, results)
	if err != nil {
		log.Printf("save batch: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save batch")
		return
	}
	writeJSON(w, http.StatusCreated, batchCreatedResponse{
		Batch:      batch,
		Results:    results,
		Validation: calc.Validate(form),
	})
}

func (s *server) handleBatchDetail(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadBatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleBatchSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadBatch(w, r)
	if !ok {
		return
	}
	form, results, err := db.DecodeSnapshot(snap)
	if err != nil {
		log.Printf("decode batch %s: %v", snap.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to read batch")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, summary.Text(form, results))
}

func (s *server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteBatch(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, db.ErrBatchNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		log.Printf("delete batch: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete batch")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) loadBatch(w http.ResponseWriter, r *http.Request) (db.Snapshot, bool) {
	snap, err := s.store.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, db.ErrBatchNotFound) {
		writeError(w, http.StatusNotFound, "batch not found")
		return db.Snapshot{}, false
	}
	if err != nil {
		log.Printf("load batch: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load batch")
		return db.Snapshot{}, false
	}
	return snap, true
}

// calculate runs form on a pooled Host.
func (s *server) calculate(ctx context.Context, form calc.FormData) (calc.Results, error) {
	h, err := s.hosts.acquire(ctx)
	if err != nil {
		return calc.Results{}, err
	}
	defer s.hosts.release(h)
	return h.Calculate(ctx, form)
}

func decodeFormBody(w http.ResponseWriter, r *http.Request) (calc.FormData, bool) {
	form, err := calc.DecodeForm(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return calc.FormData{}, false
	}
	return form, true
}

func writeCalculateError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusServiceUnavailable, "calculation cancelled")
		return
	}
	log.Printf("calculate: %v", err)
	writeError(w, http.StatusInternalServerError, "calculation failed")
}

// writeJSON encodes v before writing the header so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"failed to encode response"}`+"\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
