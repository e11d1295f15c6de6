package hci

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLECreditBasedConnectionRequestLayout(t *testing.T) {
	req := LECreditBasedConnectionRequest{
		LEPSM:          0x0080,
		SourceCID:      0x0040,
		MTU:            0x00F7,
		MPS:            0x0064,
		InitialCredits: 0x0005,
	}
	b := req.Marshal()
	require.Equal(t, []byte{0x80, 0x00, 0x40, 0x00, 0xF7, 0x00, 0x64, 0x00, 0x05, 0x00}, b)

	out := LECreditBasedConnectionRequest{}
	require.NoError(t, out.Unmarshal(b))
	require.Equal(t, req, out)
}

func TestLECreditBasedConnectionResponseLayout(t *testing.T) {
	b := []byte{0x41, 0x00, 0xF7, 0x00, 0x64, 0x00, 0x0A, 0x00, 0x00, 0x00}
	rsp := LECreditBasedConnectionResponse{}
	require.NoError(t, rsp.Unmarshal(b))
	require.Equal(t, uint16(0x0041), rsp.DestinationCID)
	require.Equal(t, uint16(0x00F7), rsp.MTU)
	require.Equal(t, uint16(0x0064), rsp.MPS)
	require.Equal(t, uint16(0x000A), rsp.InitialCredits)
	require.Equal(t, CocResultSuccess, rsp.Result)
}

func TestLEFlowControlCreditLayout(t *testing.T) {
	sig := LEFlowControlCredit{CID: 0x0040, Credits: 0x0102}
	require.Equal(t, []byte{0x40, 0x00, 0x02, 0x01}, sig.Marshal())
}

func TestSignalUnmarshalShortBuffer(t *testing.T) {
	rsp := LECreditBasedConnectionResponse{}
	require.Error(t, rsp.Unmarshal([]byte{0x41, 0x00}))
}
