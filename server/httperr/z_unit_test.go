// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httperr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/gausslab/dto"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/spec"
)

func TestStatusCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"warn":           {errs.NewWarn("bad n"), http.StatusBadRequest},
		"fatal":          {errs.NewFatal("catalog broken"), http.StatusInternalServerError},
		"foreign":        {fmt.Errorf("plain"), http.StatusInternalServerError},
		"deadline":       {errs.Wrap(context.DeadlineExceeded, "sim"), http.StatusGatewayTimeout},
		"canceled":       {context.Canceled, http.StatusRequestTimeout},
		"limit":          {dto.LimitErr("n", 10, 11), http.StatusRequestEntityTooLarge},
		"representable":  {errs.WrapWarn(spec.ErrNotRepresentable, "mu"), http.StatusUnprocessableEntity},
		"wrapped limit":  {errs.Wrap(dto.LimitErr("samples", 1, 2), "sim"), http.StatusRequestEntityTooLarge},
		"validate range": {(&spec.SimSetting{Mu: 1e300, Sigma: 1, Precision: spec.Float32}).Validate(), http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), name)
	}
}

func TestErrsWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, dto.LimitErr("n", 10, 11))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, body.Status)
	assert.Equal(t, "warn", body.Level)
	assert.Contains(t, body.Error, "n must be at most 10")

	rec = httptest.NewRecorder()
	Errs(rec, nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestJSONNonFinite(t *testing.T) {
	rec := httptest.NewRecorder()
	err := JSON(rec, map[string]any{"samples": []float64{1, math.Inf(1)}})
	require.ErrorIs(t, err, spec.ErrNotRepresentable)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "+Inf")

	rec = httptest.NewRecorder()
	require.NoError(t, JSON(rec, map[string]float64{"mean": 1.5}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mean":1.5}`, rec.Body.String())
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Log(log, "sample", errs.NewWarn("bad mu"))
	assert.Empty(t, buf.String())

	Log(log, "sample", dto.LimitErr("n", 1, 2), slog.String("req_id", "7"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "req_id=7")

	buf.Reset()
	Log(log, "sim", errs.NewFatal("boom"))
	assert.True(t, strings.Contains(buf.String(), "level=ERROR"), buf.String())

	Log(nil, "noop", errs.NewFatal("boom"))
}
