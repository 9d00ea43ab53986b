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
package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/gausslab/presets"
	"github.com/zintix-labs/gausslab/spec"
)

func TestValidFileName(t *testing.T) {
	good := []string{"a.yaml", "b.YML", "c.json"}
	for _, f := range good {
		if err := validFileName(f); err != nil {
			t.Fatalf("%q should be valid: %v", f, err)
		}
	}
	bad := []string{"", "dir/a.yaml", "a.txt", ".yaml", "c:\\a.json"}
	for _, f := range bad {
		if err := validFileName(f); err == nil {
			t.Fatalf("%q should be invalid", f)
		}
	}
}

func TestRegisterAndLookup(t *testing.T) {
	c, err := New(presets.FS)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Register(Entry{PID: 2, Name: " Shifted-Polar ", ConfigName: "shifted_polar.yaml"}, Entry{PID: 1, Name: "standard", ConfigName: "standard.yaml"}); err != nil {
		t.Fatal(err)
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids should be sorted: %v", ids)
	}
	if e, ok := c.GetByName("SHIFTED-POLAR"); !ok || e.PID != 2 {
		t.Fatalf("lookup by name failed: %+v %v", e, ok)
	}
	ss, err := c.SimSettingById(2)
	if err != nil {
		t.Fatal(err)
	}
	if ss.Mu != 3 || ss.Sigma != 4 || ss.Workers != 4 || ss.Seed == nil || *ss.Seed != 2 {
		t.Fatalf("unexpected setting: %+v", ss)
	}
	if _, err := c.SimSettingByName("standard"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SimSettingById(99); err == nil {
		t.Fatalf("expected error for unknown id")
	}

	if err := c.Register(Entry{PID: 1, Name: "other", ConfigName: "point_mass.yaml"}); err != ErrDupID {
		t.Fatalf("expected ErrDupID, got %v", err)
	}
	if err := c.Register(Entry{PID: 9, Name: "standard", ConfigName: "point_mass.yaml"}); err != ErrDupName {
		t.Fatalf("expected ErrDupName, got %v", err)
	}
	if err := c.Register(Entry{PID: 9, Name: "x", ConfigName: "missing.yaml"}); err == nil {
		t.Fatalf("expected error for missing config")
	}
	c.Freeze()
	if err := c.Register(Entry{PID: 5, Name: "point-mass", ConfigName: "point_mass.yaml"}); err == nil {
		t.Fatalf("register after freeze should fail")
	}
}

func TestMultiFSRejectsNestedAndDuplicates(t *testing.T) {
	nested := fstest.MapFS{"sub/a.yaml": {Data: []byte("pid: 1")}}
	if _, err := New(nested); err == nil {
		t.Fatalf("nested fs should be rejected")
	}
	a := fstest.MapFS{"a.yaml": {Data: []byte("pid: 1")}}
	b := fstest.MapFS{"a.yaml": {Data: []byte("pid: 2")}}
	if _, err := New(a, b); err == nil {
		t.Fatalf("duplicate file across fs should be rejected")
	}
	if _, err := New(); err == nil {
		t.Fatalf("no fs should be rejected")
	}
}

func TestJSONPreset(t *testing.T) {
	src := fstest.MapFS{
		"j.json":    {Data: []byte(`{"pid":7,"name":"json","mu":1,"sigma":2,"method":"polar","precision":"f32"}`)},
		"notes.txt": {Data: []byte("ignored")},
	}
	c, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Register(Entry{PID: 7, Name: "json", ConfigName: "j.json"}); err != nil {
		t.Fatal(err)
	}
	ss, err := c.SimSettingById(7)
	if err != nil {
		t.Fatal(err)
	}
	if ss.Precision != spec.Float32 || ss.Samples != spec.DefaultSamples || ss.Generator != "pcg64" {
		t.Fatalf("defaults not applied: %+v", ss)
	}
	sum := NewSummary(ss)
	if sum.Method != "marsaglia-polar" || sum.PID != 7 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
