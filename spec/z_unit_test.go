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
package spec

import (
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/stats"
)

func TestYAMLDefaults(t *testing.T) {
	raw := []byte("pid: 3\nmu: 1.5\nsigma: -2\nmethod: MP\n")
	ss, err := GetSimSettingByYAML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if ss.Name != "preset-3" || ss.Method != normal.MarsagliaPolar {
		t.Fatalf("unexpected name/method: %+v", ss)
	}
	if ss.Precision != Float64 || ss.Generator != core.KindPCG64 {
		t.Fatalf("unexpected precision/generator: %+v", ss)
	}
	if ss.Samples != DefaultSamples || ss.Workers != 1 || ss.Bins != stats.DefaultBins || ss.Seed != nil {
		t.Fatalf("unexpected defaults: %+v", ss)
	}
}

func TestJSONSetting(t *testing.T) {
	raw := []byte(`{"pid":1,"name":"x","mu":0,"sigma":1,"method":"box-muller","precision":"float32","generator":"ChaCha8","samples":10,"workers":2,"seed":9}`)
	ss, err := GetSimSettingByJSON(raw)
	if err != nil {
		t.Fatal(err)
	}
	if ss.Precision != Float32 || ss.Generator != core.KindChaCha8 || *ss.Seed != 9 {
		t.Fatalf("unexpected setting: %+v", ss)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"precision": "precision: half\n",
		"generator": "generator: lcg\n",
		"samples":   "samples: -1\n",
		"workers":   "workers: 1000\n",
		"bins":      "bins: -3\n",
		"method":    "method: ziggurat\n",
		"mu":        "mu: .inf\n",
		"sigma":     "sigma: .nan\n",
	}
	for name, raw := range cases {
		if _, err := GetSimSettingByYAML([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestValidateErrorLevel(t *testing.T) {
	ss := &SimSetting{Samples: -1}
	err := ss.Validate()
	if errs.Level(err) != errs.Warn {
		t.Fatalf("validation error should be Warn, got %v", errs.Level(err))
	}
}

func TestValidateFloat32Range(t *testing.T) {
	for _, ss := range []*SimSetting{
		{Mu: 1e300, Sigma: 1, Precision: Float32},
		{Mu: 0, Sigma: -1e39, Precision: "f32"},
	} {
		err := ss.Validate()
		if !errors.Is(err, ErrNotRepresentable) || errs.Level(err) != errs.Warn {
			t.Fatalf("mu=%v sigma=%v: expected warn ErrNotRepresentable, got %v", ss.Mu, ss.Sigma, err)
		}
	}
	// float32 邊界值本身可表示
	ok := &SimSetting{Mu: math.MaxFloat32, Sigma: 1, Precision: Float32}
	if err := ok.Validate(); err != nil {
		t.Fatalf("max float32 should pass: %v", err)
	}
	// float64 不受 float32 範圍限制
	wide := &SimSetting{Mu: 1e300, Sigma: 1}
	if err := wide.Validate(); err != nil {
		t.Fatalf("float64 mu=1e300 should pass: %v", err)
	}
}

func TestParsePrecision(t *testing.T) {
	if p, err := ParsePrecision("F32"); err != nil || p != Float32 {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if p, err := ParsePrecision(""); err != nil || p != Float64 {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if _, err := ParsePrecision("float16"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClone(t *testing.T) {
	seed := int64(5)
	ss := &SimSetting{Name: "a", Seed: &seed}
	c := ss.Clone()
	*c.Seed = 6
	c.Name = "b"
	if *ss.Seed != 5 || ss.Name != "a" {
		t.Fatalf("clone should not share state")
	}
}
