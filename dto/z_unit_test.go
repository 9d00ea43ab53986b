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
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/spec"
)

func TestDecodeSampleRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sample?mu=1.5&sigma=-2&method=mp&precision=f32&generator=MT19937&n=10&seed=-3", nil)
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Mu == nil || *req.Mu != 1.5 || req.Sigma == nil || *req.Sigma != -2 {
		t.Fatalf("unexpected mu/sigma: %+v", req)
	}
	if req.N != 10 || req.Seed == nil || *req.Seed != -3 {
		t.Fatalf("unexpected request: %+v", req)
	}
	ss, err := req.Setting(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ss.Method != normal.MarsagliaPolar || ss.Precision != spec.Float32 || ss.Generator != core.KindMT19937 {
		t.Fatalf("unexpected setting: %+v", ss)
	}
	if ss.Samples != 10 || ss.Mu != 1.5 || ss.Sigma != -2 || *ss.Seed != -3 {
		t.Fatalf("unexpected setting: %+v", ss)
	}
}

func TestSampleRequestDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sample?n=1", nil)
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss, err := req.Setting(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ss.Mu != 0 || ss.Sigma != 1 || ss.Method != normal.BoxMuller || ss.Precision != spec.Float64 || ss.Generator != core.KindPCG64 {
		t.Fatalf("unexpected defaults: %+v", ss)
	}
	if ss.Seed != nil {
		t.Fatalf("seed should stay nil")
	}
	if st, err := req.StartState(); err != nil || st != nil {
		t.Fatalf("expected no start state, got %v %v", st, err)
	}
}

func TestSampleRequestRange(t *testing.T) {
	for _, n := range []int{0, -1, 11} {
		req := &SampleRequest{N: n}
		if _, err := req.Setting(10); err == nil {
			t.Fatalf("n=%d should be rejected", n)
		}
	}
	if _, err := (&SampleRequest{N: 11}).Setting(10); !errors.Is(err, ErrLimit) {
		t.Fatalf("n over limit should carry ErrLimit, got %v", err)
	}
	if _, err := (&SampleRequest{N: 0}).Setting(10); errors.Is(err, ErrLimit) {
		t.Fatalf("n=0 is not a limit error")
	}
	inf := math.Inf(1)
	if _, err := (&SampleRequest{N: 1, Mu: &inf}).Setting(10); err == nil {
		t.Fatalf("non-finite mu should be rejected")
	}
	req := &SampleRequest{N: 1, Method: "ziggurat"}
	if _, err := req.Setting(10); err == nil {
		t.Fatalf("unknown method should be rejected")
	}
}

func TestDecodeSampleRequestPOST(t *testing.T) {
	payload := map[string]any{
		"mu":        3,
		"sigma":     4,
		"method":    "marsaglia-polar",
		"n":         5,
		"start_b64": "AAEC",
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/sample", bytes.NewReader(data))
	req, err := DecodeSampleRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *req.Mu != 3 || *req.Sigma != 4 || req.N != 5 {
		t.Fatalf("unexpected request: %+v", req)
	}
	st, err := req.StartState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(st, []byte{0, 1, 2}) {
		t.Fatalf("unexpected start state: %v", st)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"n":1,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/sample", bytes.NewReader(data))
	if _, err := DecodeSampleRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	r = httptest.NewRequest(http.MethodPost, "/sim", bytes.NewReader(data))
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeRejectsMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/sample", nil)
	if _, err := DecodeSampleRequest(r); err == nil {
		t.Fatalf("expected error for DELETE")
	}
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatalf("expected error for DELETE")
	}
}

func TestDecodeSimRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sim?pid=2&seed=5&workers=3&samples=100", nil)
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.PID != 2 || *req.Seed != 5 || req.Workers != 3 || req.Samples != 100 {
		t.Fatalf("unexpected request: %+v", req)
	}

	seed := int64(1)
	ss := &spec.SimSetting{PID: 2, Seed: &seed, Workers: 1, Samples: 10}
	req.Apply(ss)
	if *ss.Seed != 5 || ss.Workers != 3 || ss.Samples != 100 {
		t.Fatalf("overrides not applied: %+v", ss)
	}
	if seed != 1 {
		t.Fatalf("original seed pointer must not be modified")
	}

	r = httptest.NewRequest(http.MethodGet, "/sim", nil)
	if _, err := DecodeSimRequest(r); err == nil {
		t.Fatalf("pid should be required")
	}
}

func TestDecodeSimRequestPOSTSetting(t *testing.T) {
	data := []byte(`{"setting":{"name":"x","mu":1,"sigma":2,"method":"polar","generator":"xoshiro256"}}`)
	r := httptest.NewRequest(http.MethodPost, "/sim", bytes.NewReader(data))
	req, err := DecodeSimRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Setting == nil || req.Setting.Method != normal.MarsagliaPolar || req.Setting.Generator != core.KindXoshiro256 {
		t.Fatalf("unexpected setting: %+v", req.Setting)
	}
}

func TestNewSampleResult(t *testing.T) {
	ss := &spec.SimSetting{Mu: 1, Sigma: 2, Method: normal.BoxMuller, Precision: spec.Float64, Generator: core.KindPCG64}
	res := NewSampleResult(ss, 9, []float64{1, 3}, []byte{1}, []byte{2})
	if res.N != 2 || res.Mean != 2 || res.Seed != 9 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Method != "box-muller" || res.State.StartB64 != "AQ==" || res.State.AfterB64 != "Ag==" {
		t.Fatalf("unexpected result: %+v", res)
	}
}
