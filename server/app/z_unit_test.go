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

package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComp struct {
	stop     chan struct{}
	runErr   error
	shutdown atomic.Int32
}

func newFakeComp(runErr error) *fakeComp {
	return &fakeComp{stop: make(chan struct{}), runErr: runErr}
}

func (f *fakeComp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.stop
	return nil
}

func (f *fakeComp) Shutdown(context.Context) error {
	if f.shutdown.Add(1) == 1 {
		close(f.stop)
	}
	return nil
}

func TestReloadRunsAllHooks(t *testing.T) {
	var buf bytes.Buffer
	a := New(slog.New(slog.NewTextHandler(&buf, nil)))
	var calls []string
	a.OnReload("presets", func() error { calls = append(calls, "presets"); return errors.New("bad yaml") })
	a.OnReload("other", func() error { calls = append(calls, "other"); return nil })

	err := a.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad yaml")
	assert.Equal(t, []string{"presets", "other"}, calls)
	assert.True(t, strings.Contains(buf.String(), "hook=presets"), buf.String())

	assert.NoError(t, New(nil).Reload())
}

func TestLoopReloadThenStop(t *testing.T) {
	c := newFakeComp(nil)
	a := NewWith(nil, c)
	reloaded := make(chan struct{}, 1)
	a.OnReload("presets", func() error { reloaded <- struct{}{}; return nil })

	quit := make(chan os.Signal, 1)
	hup := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	done := make(chan error, 1)
	go func() { done <- a.loop(quit, hup, errCh) }()

	hup <- syscall.SIGHUP
	<-reloaded
	quit <- syscall.SIGTERM
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), c.shutdown.Load())
}

func TestRunReturnsComponentError(t *testing.T) {
	bad := newFakeComp(errors.New("listen failed"))
	ok := newFakeComp(nil)
	err := NewWith(nil, bad, ok).Run()
	require.EqualError(t, err, "listen failed")
	assert.Equal(t, int32(1), ok.shutdown.Load())
	assert.Equal(t, int32(1), bad.shutdown.Load())
}
