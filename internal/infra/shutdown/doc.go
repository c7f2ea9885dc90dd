// Package shutdown coordinates process termination and reload signals.
//
// Handler cancels its context on SIGINT, SIGTERM or Trigger and then runs
// the registered hooks in reverse order under a timeout:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(server.Shutdown)
//	go run(h.Context())
//	err := h.Wait()
//
// ReloadHandler runs callbacks on SIGHUP.
package shutdown
