package ambience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    Mode
		wantErr error
	}{
		{"controller", Config{Ctl: "ctl.sh"}, ModeContract, nil},
		{"controller wins over command set", Config{Ctl: "ctl.sh", Start: "run.sh"}, ModeContract, nil},
		{"command set", Config{Start: "run.sh"}, ModeSimple, nil},
		{"command set without start", Config{Stop: "stop.sh"}, ModeUnknown, ErrNoStartCommand},
		{"empty", Config{}, ModeUnknown, ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sup, err := New("c1", tt.cfg, nil)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, errors.Is(err, ErrConfig), "configuration errors wrap ErrConfig")
				assert.Nil(t, sup)

				var opErr *OpError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, OpCreate, opErr.Op)
				assert.Equal(t, "c1", opErr.ID)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, sup.Mode())
			assert.Equal(t, "c1", sup.ID())
			assert.Equal(t, tt.cfg, sup.Config())

			switch tt.want {
			case ModeContract:
				assert.IsType(t, &Contract{}, sup)
			case ModeSimple:
				assert.IsType(t, &Simple{}, sup)
			}
		})
	}
}

func TestNewContractRequiresController(t *testing.T) {
	_, err := NewContract("c1", Config{Start: "run.sh"}, nil)
	assert.True(t, errors.Is(err, ErrNoController))
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestSimpleInProcDerivation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"no stop command", Config{Start: "run"}, true},
		{"explicit", Config{Start: "run", Stop: "halt", InProc: true}, true},
		{"external", Config{Start: "run", Stop: "halt"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSimple("c1", tt.cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.InProc())
		})
	}
}

func TestSimpleMonitorDelayDefault(t *testing.T) {
	s, err := NewSimple("c1", Config{Start: "run", Stop: "halt"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMonitorDelay, s.delay)

	s, err = NewSimple("c1", Config{Start: "run", Stop: "halt", MonitorDelay: 250 * time.Millisecond}, nil)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, s.delay)
}

func TestConfigIsCopied(t *testing.T) {
	sup, err := New("c1", Config{Start: "run"}, nil)
	require.NoError(t, err)

	cfg := sup.Config()
	cfg.Start = "changed"
	assert.Equal(t, "run", sup.Config().Start)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "simple", ModeSimple.String())
	assert.Equal(t, "contract", ModeContract.String())
	assert.Equal(t, "unknown", Mode(99).String())
}

func TestOperationToken(t *testing.T) {
	assert.Equal(t, TokenStart, OpStart.Token(false))
	assert.Equal(t, TokenStop, OpStop.Token(false))
	assert.Equal(t, TokenStopForce, OpStop.Token(true))
	assert.Equal(t, TokenStatus, OpStatus.Token(true))
	assert.Empty(t, OpLoad.Token(false))
}
