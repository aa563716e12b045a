// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/stream"
	"github.com/SoftbearStudios/tilestream/server/world"
	"image/png"
	"io/ioutil"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testClient records everything sent to it. It lives on the hub goroutine.
type testClient struct {
	ClientData
	received []Outbound
	closed   bool
}

func (c *testClient) Init() {}
func (c *testClient) Close() { c.closed = true }
func (c *testClient) Send(out Outbound) { c.received = append(c.received, out) }
func (c *testClient) Destroy() { c.Hub.Unregister(c) }
func (c *testClient) Data() *ClientData { return &c.ClientData }

func (c *testClient) snapshots() (ready int) {
	for _, out := range c.received {
		if s, ok := out.(*TileSnapshot); ok && s.Terrain != nil {
			ready++
		}
	}
	return
}

func (c *testClient) events(typ string) (n int) {
	for _, out := range c.received {
		if batch, ok := out.(*TileEvents); ok {
			for _, e := range batch.Events {
				if e.Type == typ {
					n++
				}
			}
		}
	}
	return
}

func newTestHub(t *testing.T) *Hub {
	cfg := config.Default()
	cfg.Server.Workers = 2
	cfg.Tile.NumVertsPerLine = 21 // 36 meter tiles
	cfg.Stream.LODs = []config.LODConfig{
		{LOD: 0, VisibleDstThreshold: 30},
		{LOD: 1, VisibleDstThreshold: 60},
	}
	cfg.Stream.MoveThreshold = 5
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	h := NewHub(HubOptions{Config: cfg, Logger: log.New(ioutil.Discard, "", 0)})
	t.Cleanup(h.pool.Close)
	return h
}

// settle runs completions on the test goroutine until every tile is ready and
// every visible tile shows a mesh.
func settle(t *testing.T, h *Hub) {
	timeout := time.After(30 * time.Second)
	for {
		done := true
		h.streamer.ForTiles(func(tile *stream.Tile) {
			if tile.State() != stream.Ready || (tile.Visible && tile.LOD < 0) {
				done = false
			}
		})
		if done {
			return
		}

		select {
		case c := <-h.pool.Completions():
			h.complete(c)
		case <-timeout:
			t.Fatal("timed out waiting for tiles")
		}
	}
}

func spawnCount(h *Hub) (n int) {
	h.streamer.ForTiles(func(tile *stream.Tile) {
		n += len(tile.Data.Spawns)
	})
	return
}

func TestHub_Streams(t *testing.T) {
	h := newTestHub(t)
	client := &testClient{}
	h.addClient(client)

	Observe{}.Inbound(h, client)
	settle(t, h)

	if h.streamer.Len() != 25 {
		t.Fatalf("expected 25 tiles, got %d", h.streamer.Len())
	}
	if got, want := h.scenery.Count(), spawnCount(h); got != want {
		t.Fatalf("scenery has %d objects, tiles spawned %d", got, want)
	}
	if n := client.snapshots(); n != 25 {
		t.Errorf("expected 25 snapshots, got %d", n)
	}
	if n := client.events("tileReady"); n != 25 {
		t.Errorf("expected 25 ready events, got %d", n)
	}
	if client.events("visibilityChanged") == 0 || client.events("lodChanged") == 0 {
		t.Error("expected visibility and lod events")
	}

	// Far away, every tile is replaced and its objects despawned.
	Observe{Position: world.Vec2f{X: 10000}}.Inbound(h, client)
	settle(t, h)

	if n := client.events("tileEvicted"); n != 25 {
		t.Errorf("expected 25 evictions, got %d", n)
	}
	if len(h.scenery.Children(world.TileCoord{})) != 0 {
		t.Error("objects of evicted tile remain")
	}
	if got, want := h.scenery.Count(), spawnCount(h); got != want {
		t.Fatalf("scenery has %d objects, tiles spawned %d", got, want)
	}

	client.received = nil
	RequestTile{Coord: world.TileCoord{}}.Inbound(h, client)
	RequestTile{Coord: world.TileCoordOf(world.Vec2f{X: 10000}, h.pipeline.TileSize())}.Inbound(h, client)
	if len(client.received) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(client.received))
	}
	if client.received[0].(*TileSnapshot).Terrain != nil {
		t.Error("evicted tile has terrain")
	}
	if client.received[1].(*TileSnapshot).Terrain == nil {
		t.Error("ready tile has no terrain")
	}
}

func TestHub_LateClient(t *testing.T) {
	h := newTestHub(t)
	Observe{}.Inbound(h, nil)
	settle(t, h)

	client := &testClient{}
	h.addClient(client)
	if n := client.events("tileReady"); n != 25 {
		t.Errorf("expected 25 ready events, got %d", n)
	}
	if got, want := client.events("visibilityChanged"), h.streamer.VisibleCount(); got != want {
		t.Errorf("expected %d visible, got %d", want, got)
	}
}

func TestHub_IgnoresInvalidObserver(t *testing.T) {
	h := newTestHub(t)
	Observe{Position: world.Vec2f{X: float32(math.NaN())}}.Inbound(h, nil)
	Observe{Position: world.Vec2f{Y: float32(math.Inf(1))}}.Inbound(h, nil)

	if h.observed || h.streamer.Len() != 0 {
		t.Fatal("invalid observer accepted")
	}
	h.update()
	if h.streamer.Len() != 0 {
		t.Fatal("update without observer streamed tiles")
	}
}

func TestHub_Clients(t *testing.T) {
	h := newTestHub(t)
	a, b, c := &testClient{}, &testClient{}, &testClient{}
	h.addClient(a)
	h.addClient(b)
	h.addClient(c)

	h.removeClient(b)
	h.removeClient(b)
	if !b.closed || h.clients.Len != 2 {
		t.Fatalf("expected 2 clients, got %d", h.clients.Len)
	}

	var order []Client
	for client := h.clients.First; client != nil; client = client.Data().Next {
		order = append(order, client)
	}
	if len(order) != 2 || order[0] != a || order[1] != c || h.clients.Last != c {
		t.Fatalf("unexpected order %v", order)
	}

	h.Cloud()
	recorder := httptest.NewRecorder()
	h.ServeIndex(recorder, httptest.NewRequest("GET", "/", nil))

	var status Status
	if err := JSON.Unmarshal(recorder.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.Viewers != 2 || status.Cloud != "offline" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestHub_Preview(t *testing.T) {
	h := newTestHub(t)

	recorder := httptest.NewRecorder()
	h.ServePreview(recorder, httptest.NewRequest("GET", "/preview.png", nil))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any preview, got %d", recorder.Code)
	}

	Observe{}.Inbound(h, nil)
	settle(t, h)
	h.PreviewTile()

	recorder = httptest.NewRecorder()
	h.ServePreview(recorder, httptest.NewRequest("GET", "/preview.png", nil))
	img, err := png.Decode(recorder.Body)
	if err != nil {
		t.Fatal(err)
	}
	if size := h.config.Tile.NumVertsPerLine; img.Bounds().Dx() != size || img.Bounds().Dy() != size {
		t.Errorf("expected %dx%d preview, got %v", size, size, img.Bounds())
	}
}
