// Package ambience supervises the lifecycle of externally managed workloads
// ("containers") by delegating the real work to external programs.
//
// Two strategies sit behind the Supervisor interface. New picks one from
// the Config:
//
//	sup, err := ambience.New("web", ambience.Config{
//	    Start: "nginx -g 'daemon off;'",
//	}, func(e ambience.Event) {
//	    fmt.Println(e)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = sup.Load(ctx, ambience.OpOptions{})
//	err = sup.Start(ctx, ambience.OpOptions{})
//
// # Command mode
//
// Simple runs up to six optional shell commands: prepare on load, cleanup
// on unload, start, stop, state and status. Without a stop command, or with
// InProc set, the started process is owned directly and stopped with a
// signal to its process group. Otherwise a health monitor polls the state
// command every MonitorDelay and reports running or stopped.
//
// # Controller mode
//
// Contract owns one long-lived controller process (Config.Ctl) and talks to
// it over a newline-delimited protocol. It writes START, STOP, STOP-FORCE or
// STATUS to the controller's stdin and reads lines of the form
//
//	STATE <name>
//	ERROR <message>
//	STATUS <json object>
//
// from its stdout. Unknown keywords are ignored.
//
// # Events
//
// Every state change, failure and status payload is delivered to the
// EventSink as an Event. Calls to one sink are serialized per supervisor
// and made without its locks held, so a sink may call back into the
// supervisor; the events that raises follow once the sink returns.
//
// Lifecycle operations on one supervisor must not overlap. The Manager runs
// operations across many supervisors concurrently, and the Recorder is a
// sink that lets callers wait for specific events.
package ambience
