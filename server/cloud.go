// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/world"
	"time"
)

// Cloud publishes server status and previews. Errors are logged, never fatal.
type Cloud interface {
	fmt.Stringer
	UpdateServer(viewers, tiles int) error
	UploadPreview(filename string, data []byte) error // takes an encoded PNG
	UpdatePeriod() time.Duration
}

// Offline is the Cloud of a server without one.
type Offline struct{}

func (offline Offline) String() string {
	return "offline"
}

func (offline Offline) UpdateServer(viewers, tiles int) error {
	return nil
}

func (offline Offline) UploadPreview(filename string, data []byte) error {
	return nil
}

func (offline Offline) UpdatePeriod() time.Duration {
	return time.Hour
}

// Status is served by ServeIndex.
type Status struct {
	Cloud    string      `json:"cloud"`
	Viewers  int         `json:"viewers"`
	Tiles    int         `json:"tiles"`
	Visible  int         `json:"visible"`
	Objects  int         `json:"objects"`
	Pending  int         `json:"pending"`
	Observer world.Vec2f `json:"observer"`
}

func (h *Hub) status() Status {
	return Status{
		Cloud:    h.cloud.String(),
		Viewers:  h.clients.Len,
		Tiles:    h.streamer.Len(),
		Visible:  h.streamer.VisibleCount(),
		Objects:  h.scenery.Count(),
		Pending:  h.pool.Pending(),
		Observer: h.observer,
	}
}

// Cloud refreshes the status JSON and reports to the cloud.
func (h *Hub) Cloud() {
	status := h.status()

	statusJSON, err := JSON.Marshal(status)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		h.logger.Println("error marshaling status:", err)
	}

	// Don't block the hub on the network
	go func() {
		if err := h.cloud.UpdateServer(status.Viewers, status.Tiles); err != nil {
			h.logger.Println("error updating server:", err)
		}
	}()
}
