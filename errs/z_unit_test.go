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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapKeepsLevel(t *testing.T) {
	inner := NewWarn("sigma must be finite")
	outer := Wrap(inner, "invalid preset")
	if outer.ErrLv != Warn {
		t.Fatalf("expected warn, got %s", outer.ErrLv)
	}
	if !errors.Is(outer, inner) {
		t.Fatalf("expected errors.Is to reach inner error")
	}
}

func TestWrapForeignIsFatal(t *testing.T) {
	e := Wrap(io.ErrUnexpectedEOF, "read preset")
	if e.ErrLv != Fatal {
		t.Fatalf("expected fatal, got %s", e.ErrLv)
	}
	if Level(e) != Fatal {
		t.Fatalf("Level mismatch")
	}
	if Level(nil) != None {
		t.Fatalf("nil should be None")
	}
}

func TestWrapWarnAndExtra(t *testing.T) {
	e := WrapWithExtra(WrapWarn(io.EOF, "bad yaml"), "load", "normal.yaml")
	if e.ErrLv != Warn {
		t.Fatalf("expected warn, got %s", e.ErrLv)
	}
	msg := e.Error()
	if !strings.Contains(msg, "extra: normal.yaml") || !strings.Contains(msg, "errlv=warn") {
		t.Fatalf("unexpected message: %s", msg)
	}
	if _, ok := AsErr(io.EOF); ok {
		t.Fatalf("plain error should not be *E")
	}
}
