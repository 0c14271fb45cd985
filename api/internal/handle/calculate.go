package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
)

const (
	// InvalidInputMessage is returned for every request that fails input checks.
	InvalidInputMessage = "Format data input tidak valid."
	systemErrorPrefix   = "Terjadi kesalahan sistem: "

	maxBodyBytes = 1 << 20
)

// Calculate serves POST /api/calculate.
func (h *Handle) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, types.FailureResult("Metode tidak diizinkan."))
		return
	}

	req, err := decodeCalculation(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		zap.L().Info("rejected calculation input",
			zap.String("request_id", advisor.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, advisor.ValidationError(err))
		return
	}

	ctx, cancel := withRequestTimeout(r)
	defer cancel()

	out, err := h.calc.Calculate(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// writeError maps advisor failures onto the fixed failure payload.
func writeError(w http.ResponseWriter, err error) {
	if advisor.KindOf(err) == advisor.KindValidation {
		writeJSON(w, http.StatusUnprocessableEntity, types.FailureResult(InvalidInputMessage))
		return
	}
	writeJSON(w, http.StatusInternalServerError, types.FailureResult(systemErrorPrefix+err.Error()))
}

// withRequestTimeout lets callers shorten the deadline with X-Request-Timeout
// (seconds). The advisor's own model timeout still applies, so the header
// can never extend it.
func withRequestTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			return context.WithTimeout(r.Context(), time.Duration(v)*time.Second)
		}
	}
	return context.WithCancel(r.Context())
}

func decodeCalculation(body io.Reader) (types.CalculationRequest, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		return types.CalculationRequest{}, eris.Wrap(err, "decode body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return types.CalculationRequest{}, errors.New("unexpected data after JSON object")
	}
	if raw == nil {
		return types.CalculationRequest{}, errors.New("body must be a JSON object")
	}

	var req types.CalculationRequest
	crop, ok := raw["crop"]
	if !ok {
		return req, errors.New("crop is required")
	}
	if err := decodeString(crop, &req.Crop); err != nil {
		return req, eris.Wrap(err, "crop")
	}

	var err error
	if req.LandSize, err = decodeNumber(raw, "land_size"); err != nil {
		return req, err
	}
	if req.Target, err = decodeNumber(raw, "target"); err != nil {
		return req, err
	}
	return req, req.Validate()
}

func decodeString(raw json.RawMessage, dst *string) error {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || b[0] != '"' {
		return errors.New("must be a string")
	}
	return json.Unmarshal(b, dst)
}

// decodeNumber accepts a JSON number or a string holding one.
func decodeNumber(raw map[string]json.RawMessage, key string) (float64, error) {
	v, ok := raw[key]
	if !ok {
		return 0, eris.Errorf("%s is required", key)
	}
	b := bytes.TrimSpace(v)
	if len(b) == 0 {
		return 0, eris.Errorf("%s is required", key)
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, eris.Wrapf(err, "%s", key)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, eris.Wrapf(err, "%s must be a number", key)
		}
		return f, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return 0, eris.Wrapf(err, "%s must be a number", key)
		}
		return f, nil
	default:
		return 0, eris.Errorf("%s must be a number", key)
	}
}
