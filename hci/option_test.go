package hci

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/kestrelbt/ble"
)

func TestPoolSizeOptionsRejectNonPositive(t *testing.T) {
	_, err := NewHCI(ble.OptMaxConnections(0))
	require.Equal(t, ErrInvalidPoolSize, err1(err))

	_, err = NewHCI(ble.OptMaxChannels(-1))
	require.Equal(t, ErrInvalidPoolSize, err1(err))

	h, err := NewHCI(ble.OptMaxConnections(2), ble.OptMaxChannels(3))
	require.NoError(t, err)
	require.Equal(t, 2, h.maxConns)
	require.Equal(t, 3, h.maxChans)
}

// err1 unwraps the "can't set options" wrapper NewHCI adds.
func err1(err error) error {
	return errors.Cause(err)
}

func TestDefaultChannelConfigValidation(t *testing.T) {
	h, err := NewHCI()
	require.NoError(t, err)

	require.Error(t, h.SetDefaultChannelConfig(ble.ChannelConfig{MTU: 10, MPS: 10}))
	require.Error(t, h.SetDefaultChannelConfig(ble.ChannelConfig{MTU: 23, MPS: 100}))

	require.NoError(t, h.SetDefaultChannelConfig(ble.ChannelConfig{MTU: 100, MPS: 27}))
	require.Equal(t, uint16(defaultCocCredits), h.chanCfg.InitialCredits)
	require.Equal(t, h.chanCfg.InitialCredits, h.chanCfg.FlowPolicy.Every)
}

func TestAcceptChannelRequiresPSM(t *testing.T) {
	f := newFakeController(t, 2)
	c := newTestConn(t, f)

	_, err := c.AcceptChannel(nil, nil)
	require.Error(t, err)
}
