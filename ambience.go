package ambience

import "time"

const (
	// DefaultShell runs every configured command string
	DefaultShell = "/bin/sh"

	// DefaultMonitorDelay is the interval between health monitor polls
	DefaultMonitorDelay = 1000 * time.Millisecond

	// DefaultWaitDelay bounds how long output copying may outlive a child
	// after it exits (see exec.Cmd.WaitDelay)
	DefaultWaitDelay = 5 * time.Second

	// monitorGrace is how long a halted monitor may keep its context alive
	monitorGrace = 100 * time.Millisecond
)

// Protocol tokens written to a controller's stdin, one per line
const (
	TokenStart     = "START"
	TokenStop      = "STOP"
	TokenStopForce = "STOP-FORCE"
	TokenStatus    = "STATUS"
)

// Protocol keywords a controller may emit on stdout
const (
	KeywordState  = "STATE"
	KeywordError  = "ERROR"
	KeywordStatus = "STATUS"
)

// Operation identifies a supervisor operation in errors and logs
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpCreate is supervisor construction
	OpCreate
	// OpLoad prepares the container
	OpLoad
	// OpUnload cleans the container up
	OpUnload
	// OpStart starts the workload
	OpStart
	// OpStop stops the workload
	OpStop
	// OpStatus queries the status payload
	OpStatus
	// OpState is a health monitor liveness poll
	OpState
)

// Operation string constants
const (
	opUnknownStr = "unknown"
	opCreateStr  = "create"
	opLoadStr    = "load"
	opUnloadStr  = "unload"
	opStartStr   = "start"
	opStopStr    = "stop"
	opStatusStr  = "status"
	opStateStr   = "state"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return opCreateStr
	case OpLoad:
		return opLoadStr
	case OpUnload:
		return opUnloadStr
	case OpStart:
		return opStartStr
	case OpStop:
		return opStopStr
	case OpStatus:
		return opStatusStr
	case OpState:
		return opStateStr
	default:
		return opUnknownStr
	}
}

// Token returns the protocol token a controller receives for this operation.
// Only start, stop and status travel over the protocol.
func (op Operation) Token(force bool) string {
	switch op {
	case OpStart:
		return TokenStart
	case OpStop:
		if force {
			return TokenStopForce
		}
		return TokenStop
	case OpStatus:
		return TokenStatus
	default:
		return ""
	}
}
