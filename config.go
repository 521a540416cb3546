package ambience

import "time"

// Config describes how a container is driven. Exactly one shape applies:
// when Ctl is set the container is driven by a controller process over the
// line protocol, otherwise by the command set.
type Config struct {
	// Prepare runs on load
	Prepare string `mapstructure:"prepare" json:"prepare,omitempty" yaml:"prepare,omitempty"`
	// Start starts the workload, mandatory for the command set
	Start string `mapstructure:"start" json:"start,omitempty" yaml:"start,omitempty"`
	// Stop stops the workload
	Stop string `mapstructure:"stop" json:"stop,omitempty" yaml:"stop,omitempty"`
	// Cleanup runs on unload
	Cleanup string `mapstructure:"cleanup" json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
	// State exits zero while the workload is alive
	State string `mapstructure:"state" json:"state,omitempty" yaml:"state,omitempty"`
	// Status prints a JSON object describing the workload
	Status string `mapstructure:"status" json:"status,omitempty" yaml:"status,omitempty"`
	// InProc makes the supervisor own the started process directly
	InProc bool `mapstructure:"inproc" json:"inproc,omitempty" yaml:"inproc,omitempty"`
	// MonitorDelay is the health monitor interval
	MonitorDelay time.Duration `mapstructure:"monitorDelay" json:"monitorDelay,omitempty" yaml:"monitorDelay,omitempty"`

	// Ctl is the controller command
	Ctl string `mapstructure:"ctl" json:"ctl,omitempty" yaml:"ctl,omitempty"`
}

// Mode returns the strategy this configuration selects
func (c Config) Mode() Mode {
	if c.Ctl != "" {
		return ModeContract
	}
	return ModeSimple
}

// hasCommandSet reports whether any command-set field is populated
func (c Config) hasCommandSet() bool {
	return c.Prepare != "" || c.Start != "" || c.Stop != "" || c.Cleanup != "" ||
		c.State != "" || c.Status != "" || c.InProc || c.MonitorDelay != 0
}
