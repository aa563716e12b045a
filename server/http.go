// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"net/http"
)

// ServeIndex serves the latest status JSON.
func (h *Hub) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := h.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

// ServePreview serves the latest tile preview, if any.
func (h *Hub) ServePreview(w http.ResponseWriter, r *http.Request) {
	buf, ok := h.previewPNG.Load().([]byte)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf)
}

// ServeSocket upgrades to a websocket viewer.
func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("upgrade error", err)
		return
	}

	h.Register(NewSocketClient(conn))
}
