package ambience

// Mode identifies a supervision strategy
type Mode int

const (
	// ModeUnknown represents an unknown strategy
	ModeUnknown Mode = iota
	// ModeSimple drives the workload through discrete commands
	ModeSimple
	// ModeContract drives the workload through a controller process
	ModeContract
)

// Mode string constants
const (
	modeUnknownStr  = "unknown"
	modeSimpleStr   = "simple"
	modeContractStr = "contract"
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return modeSimpleStr
	case ModeContract:
		return modeContractStr
	default:
		return modeUnknownStr
	}
}

// New creates the Supervisor cfg selects: a *Contract when a controller
// command is configured, a *Simple otherwise. Validation is left to the
// chosen constructor.
func New(id string, cfg Config, sink EventSink, opts ...Option) (Supervisor, error) {
	switch cfg.Mode() {
	case ModeContract:
		c, err := NewContract(id, cfg, sink, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		s, err := NewSimple(id, cfg, sink, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
