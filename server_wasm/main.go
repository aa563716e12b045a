// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build js && wasm
// +build js,wasm

// Command server_wasm runs the hub inside a browser web worker, streaming to
// the page through postMessage instead of a websocket.
package main

import (
	"github.com/SoftbearStudios/tilestream/server"
	"github.com/SoftbearStudios/tilestream/server/config"
	"log"
)

func main() {
	cfg := config.Default()
	cfg.Server.Workers = 1

	hub := server.NewHub(server.HubOptions{
		Config: cfg,
		Cloud:  server.Offline{},
	})

	log.Println("tilestream WASM server started")

	hub.Register(&localClient)

	hub.Run()
}
