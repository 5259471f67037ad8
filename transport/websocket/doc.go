// Package websocket streams search replays to browser and desktop clients.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Clients subscribe to one run via the query parameter
// (?run=<id>) and only receive messages for that run. All client-map
// mutation happens inside the hub's event loop.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"run_id": "...", "event": "replay_start", "data": {"total": 11, "interval_ms": 50}}
//	{"run_id": "...", "event": "explore", "frame": {"phase": "explore", "index": 0, "cell": {"row": 0, "col": 0}, ...}}
//	{"run_id": "...", "event": "path", "frame": {...}}
//	{"run_id": "...", "event": "done", "frame": {"phase": "done", "found": true, ...}}
//
// Incoming messages are ignored; reads only service ping/pong keepalive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("run"))
//	})
//
//	hub.Replay(ctx, runID, replay.NewPlayer(result), 50*time.Millisecond)
package websocket
