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

package text

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollStore/internal/poll"
	"pollStore/internal/store"
	"pollStore/pkg/metrics"
)

func startTestServer(t *testing.T, cfg ServerConfig) (*Server, *store.Store) {
	t.Helper()
	st := store.New(nil, store.Options{Metrics: cfg.Metrics})
	cfg.Handler = NewHandler(st, cfg.Metrics)
	cfg.Address = "127.0.0.1:0"

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv, st
}

// roundTrip sends one request and reads one response.
func roundTrip(t *testing.T, conn net.Conn, req string) string {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err := conn.Write([]byte(req))
	require.NoError(t, err)

	buf := make([]byte, DefaultMaxMessageSize)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_RequestResponse(t *testing.T) {
	srv, _ := startTestServer(t, ServerConfig{})
	conn := dial(t, srv)

	assert.Equal(t, "[OK] Survey created with ID: coffee-or-tea", roundTrip(t, conn, "CREATE_SURVEY|Coffee or tea|Coffee,Tea"))
	assert.Equal(t, "[OK] Your response has been recorded.", roundTrip(t, conn, "RESPOND_SURVEY|coffee-or-tea|1|alice"))
	assert.Contains(t, roundTrip(t, conn, "RESPOND_SURVEY|coffee-or-tea|1|alice"), "already")
	assert.Equal(t, "[ERROR] Unknown command", roundTrip(t, conn, "PING"))
	assert.Equal(t, "[Active] ID: coffee-or-tea, Question: Coffee or tea\n", roundTrip(t, conn, "LIST_SURVEY\r\n"))
}

func TestServer_ConnectionsShareStore(t *testing.T) {
	srv, _ := startTestServer(t, ServerConfig{})
	a := dial(t, srv)
	b := dial(t, srv)

	assert.Equal(t, "[OK] Vote created with ID: lunch", roundTrip(t, a, "CREATE_VOTE|Lunch|Pizza,Salad"))
	assert.Equal(t, "[OK] Your vote has been recorded.", roundTrip(t, b, "RESPOND_VOTE|lunch|2|bob"))
	assert.Equal(t, "[ERROR] You have already voted on this item.", roundTrip(t, a, "RESPOND_VOTE|lunch|1|bob"))

	// A client going away does not affect the others.
	b.Close()
	assert.Contains(t, roundTrip(t, a, "RESULT_VOTE|lunch"), "Salad - 1 votes (100%)")
}

func TestServer_ConcurrentClients(t *testing.T) {
	srv, st := startTestServer(t, ServerConfig{})
	setup := dial(t, srv)
	require.Equal(t, "[OK] Survey created with ID: colors", roundTrip(t, setup, "CREATE_SURVEY|Colors|Red,Green,Blue"))

	const clients = 25
	var wg sync.WaitGroup
	results := make(chan string, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				results <- err.Error()
				return
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(5 * time.Second))
			if _, err := conn.Write([]byte(fmt.Sprintf("RESPOND_SURVEY|colors|1,2|user%d", i))); err != nil {
				results <- err.Error()
				return
			}
			buf := make([]byte, DefaultMaxMessageSize)
			n, err := conn.Read(buf)
			if err != nil {
				results <- err.Error()
				return
			}
			results <- string(buf[:n])
		}(i)
	}
	wg.Wait()
	close(results)

	for r := range results {
		assert.Equal(t, "[OK] Your response has been recorded.", r)
	}

	it, err := st.Get(poll.KindSurvey, "colors")
	require.NoError(t, err)
	assert.Len(t, it.Respondents, clients)
	assert.Equal(t, []int{clients, clients, 0}, it.Tally)
}

func TestServer_ResponseTruncated(t *testing.T) {
	srv, _ := startTestServer(t, ServerConfig{MaxMessageSize: 128})
	conn := dial(t, srv)

	for i := 0; i < 5; i++ {
		resp := roundTrip(t, conn, fmt.Sprintf("CREATE_VOTE|A fairly long title number %d|yes,no", i))
		require.True(t, strings.HasPrefix(resp, "[OK]"), resp)
	}
	list := roundTrip(t, conn, "LIST_VOTE")
	assert.Len(t, list, 128)
}

func TestServer_MetricsAndStop(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	srv, _ := startTestServer(t, ServerConfig{Metrics: m, RateLimitQPS: 1000, RateLimitBurst: 10})
	conn := dial(t, srv)

	assert.Equal(t, "No votes available.", roundTrip(t, conn, "LIST_VOTE"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TotalConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections))
	assert.Equal(t, 1, srv.ActiveConnections())

	require.NoError(t, srv.Stop())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveConnections))
	assert.Equal(t, 0, srv.ActiveConnections())

	// The live connection was closed by Stop.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := conn.Read(make([]byte, 16))
	assert.Error(t, err)

	_, err = net.Dial("tcp", srv.Addr().String())
	assert.Error(t, err)
}

func TestNewServer_RequiresHandler(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestServer_PanicCountedPerServer(t *testing.T) {
	brokenMetrics := metrics.New(prometheus.NewRegistry())
	broken, err := NewServer(ServerConfig{
		Handler: NewHandler(nil, brokenMetrics), // every store call panics
		Address: "127.0.0.1:0",
		Metrics: brokenMetrics,
	})
	require.NoError(t, err)
	require.NoError(t, broken.Start())
	t.Cleanup(func() { broken.Stop() })

	healthyMetrics := metrics.New(prometheus.NewRegistry())
	healthy, _ := startTestServer(t, ServerConfig{Metrics: healthyMetrics})

	conn := dial(t, broken)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = conn.Write([]byte("LIST_VOTE"))
	require.NoError(t, err)
	_, err = conn.Read(make([]byte, 16))
	require.Error(t, err, "the worker releases the connection after a panic")

	assert.Equal(t, 1.0, testutil.ToFloat64(brokenMetrics.PanicsRecovered.WithLabelValues("text-conn")))
	assert.Equal(t, 0.0, testutil.ToFloat64(healthyMetrics.PanicsRecovered.WithLabelValues("text-conn")))

	// the other server is unaffected
	assert.Equal(t, "No votes available.", roundTrip(t, dial(t, healthy), "LIST_VOTE"))
}

func TestServer_StopWhileClientsConnect(t *testing.T) {
	srv, _ := startTestServer(t, ServerConfig{})
	addr := srv.Addr().String()

	quit := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-quit:
					return
				default:
				}
				conn, err := net.DialTimeout("tcp", addr, time.Second)
				if err != nil {
					time.Sleep(time.Millisecond)
					continue
				}
				// Stay connected briefly so Stop finds live workers.
				time.Sleep(time.Millisecond)
				conn.Close()
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	stopped := make(chan error, 1)
	go func() { stopped <- srv.Stop() }()

	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return while clients were connecting")
	}
	close(quit)
	wg.Wait()
	assert.Zero(t, srv.ActiveConnections())
}
