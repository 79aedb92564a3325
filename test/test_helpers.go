// Copyright 2025 The axfor Authors
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

package test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pollStore/internal/app"
	"pollStore/pkg/config"
)

// testNode is one running server process
type testNode struct {
	cfg *config.Config
	app *app.App
}

// startNode starts a server and registers its shutdown with t
func startNode(t testing.TB, cfg *config.Config) *testNode {
	t.Helper()

	a, err := app.New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Start())

	n := &testNode{cfg: cfg, app: a}
	t.Cleanup(n.stop)
	return n
}

func (n *testNode) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.Server.Reliability.ShutdownTimeout)
	defer cancel()
	n.app.Stop(ctx)
}

// restart stops the node and starts a fresh process over the same data dir
func (n *testNode) restart(t testing.TB) *testNode {
	t.Helper()
	n.stop()
	return startNode(t, n.cfg)
}

// client is a protocol peer: one write, one read per request
type client struct {
	t    testing.TB
	conn net.Conn
	buf  []byte
}

func newClient(t testing.TB, n *testNode) *client {
	t.Helper()
	conn, err := net.Dial("tcp", n.app.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, buf: make([]byte, n.cfg.Server.Limits.MaxMessageSize)}
}

func (c *client) do(req string) string {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err := c.conn.Write([]byte(req))
	require.NoError(c.t, err)
	n, err := c.conn.Read(c.buf)
	require.NoError(c.t, err)
	return string(c.buf[:n])
}

// sendOnce dials, sends one request and returns the response. It is safe to
// call from goroutines other than the test's.
func sendOnce(n *testNode, req string) (string, error) {
	conn, err := net.Dial("tcp", n.app.Addr().String())
	if err != nil {
		return "", err
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return "", err
	}
	if _, err := conn.Write([]byte(req)); err != nil {
		return "", err
	}
	buf := make([]byte, n.cfg.Server.Limits.MaxMessageSize)
	m, err := conn.Read(buf)
	if err != nil {
		return "", err
	}
	return string(buf[:m]), nil
}

// pinModTimes gives the records of ids increasing modification times, one
// second apart, in the order given.
func pinModTimes(t testing.TB, dir string, ids ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, id := range ids {
		ts := base.Add(time.Duration(i) * time.Second)
		require.NoError(t, os.Chtimes(filepath.Join(dir, id+".txt"), ts, ts))
	}
}
