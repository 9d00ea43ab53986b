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
package recorder

import (
	"testing"

	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/spec"
)

func newSetting(t *testing.T, sigma float64) *spec.SimSetting {
	t.Helper()
	ss := &spec.SimSetting{Name: "rec", Mu: 1, Sigma: sigma, Samples: 100}
	if err := ss.Validate(); err != nil {
		t.Fatal(err)
	}
	return ss
}

func TestRecordAndDone(t *testing.T) {
	ss := newSetting(t, 2)
	r, err := NewSampleRecorder(ss, 7)
	if err != nil {
		t.Fatal(err)
	}
	g := core.NewPCG64WithSeed(7)
	for i := 0; i < 20000; i++ {
		r.Record(normal.Sample(ss.Mu, ss.Sigma, g, ss.Method))
	}
	rep := r.Done()
	if rep.Summary.Samples != 20000 || rep.Summary.Seed != 7 || rep.Summary.Method != "box-muller" {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
	if rep.Dist == nil || rep.Dist.GOF.DF == 0 {
		t.Fatalf("expected goodness-of-fit for sigma != 0")
	}
	if !rep.Pass(0.1) {
		t.Fatalf("mean=%v std=%v", rep.Summary.Mean, rep.Summary.Std)
	}
}

func TestZeroSigmaHasNoDist(t *testing.T) {
	ss := newSetting(t, 0)
	r, _ := NewSampleRecorder(ss, 1)
	for i := 0; i < 10; i++ {
		r.Record(ss.Mu)
	}
	rep := r.Done()
	if rep.Dist != nil {
		t.Fatalf("sigma = 0 should not produce a distribution report")
	}
	if rep.Summary.Std != 0 || rep.Summary.Mean != 1 || !rep.Pass(0) {
		t.Fatalf("point mass should pass exactly: %+v", rep.Summary)
	}
}

func TestMerge(t *testing.T) {
	ss := newSetting(t, 1)
	parts := make([]*SampleRecorder, 3)
	g := core.NewPCG32WithSeed(3)
	total := 0
	for i := range parts {
		parts[i], _ = NewSampleRecorder(ss, 3)
		for j := 0; j < 1000*(i+1); j++ {
			parts[i].Record(normal.Sample(ss.Mu, ss.Sigma, g, normal.MarsagliaPolar))
			total++
		}
	}
	m, err := MergeSampleRecorder(parts)
	if err != nil {
		t.Fatal(err)
	}
	if m.Moments.N != int64(total) || m.Hist.Total() != int64(total) || m.Workers != 3 {
		t.Fatalf("unexpected merge: N=%d hist=%d workers=%d", m.Moments.N, m.Hist.Total(), m.Workers)
	}

	other := newSetting(t, 1)
	other.Name = "different"
	o, _ := NewSampleRecorder(other, 3)
	if _, err := MergeSampleRecorder([]*SampleRecorder{parts[0], o}); err == nil {
		t.Fatalf("expected error for different settings")
	}
	if _, err := MergeSampleRecorder(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
