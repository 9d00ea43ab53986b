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
package corefmt

import (
	"bytes"
	"testing"

	"github.com/zintix-labs/gausslab/sdk/core"
)

func TestBlobFrameRoundTrip(t *testing.T) {
	g := core.NewPCG64WithSeed(1)
	state, err := g.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteBlobFrame(&buf, state); err != nil {
		t.Fatal(err)
	}
	got, err := ReadBlobFrame(&buf, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, state) {
		t.Fatalf("frame payload mismatch")
	}
	dec, err := DecodeBlobFrame(EncodeBlobFrame(state))
	if err != nil || !bytes.Equal(dec, state) {
		t.Fatalf("in-memory frame mismatch: %v", err)
	}
}

func TestBlobFrameErrors(t *testing.T) {
	if _, err := DecodeBlobFrame(nil); err == nil {
		t.Fatalf("expected error for empty frame")
	}
	if _, err := DecodeBlobFrame([]byte{10, 1, 2}); err == nil {
		t.Fatalf("expected error for truncated frame")
	}
	if _, err := ReadBlobFrame(bytes.NewReader(EncodeBlobFrame(make([]byte, 64))), 8); err == nil {
		t.Fatalf("expected maxBytes error")
	}
}

func TestBase64(t *testing.T) {
	s := EncodeBase64([]byte{0, 1, 2, 255})
	b, err := DecodeBase64(s)
	if err != nil || !bytes.Equal(b, []byte{0, 1, 2, 255}) {
		t.Fatalf("round trip failed: %v %v", b, err)
	}
	if _, err := DecodeBase64("***"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
}
