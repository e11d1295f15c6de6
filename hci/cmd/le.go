package cmd

// LESetEventMask implements LE Set Event Mask (0x08|0x0001) [Vol 2, Part E, 7.8.1].
type LESetEventMask struct {
	LEEventMask uint64
}

func (c *LESetEventMask) OpCode() int            { return 0x08<<10 | 0x0001 }
func (c *LESetEventMask) Len() int               { return 8 }
func (c *LESetEventMask) Marshal(b []byte) error { return marshal(c, b) }

// LESetEventMaskRP returns the status of the LE Set Event Mask command.
type LESetEventMaskRP struct {
	Status uint8
}

func (c *LESetEventMaskRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LEReadBufferSize implements LE Read Buffer Size (0x08|0x0002) [Vol 2, Part E, 7.8.2].
type LEReadBufferSize struct{}

func (c *LEReadBufferSize) OpCode() int            { return 0x08<<10 | 0x0002 }
func (c *LEReadBufferSize) Len() int               { return 0 }
func (c *LEReadBufferSize) Marshal(b []byte) error { return marshal(c, b) }

// LEReadBufferSizeRP returns the LE-U ACL buffer accounting.
type LEReadBufferSizeRP struct {
	Status                  uint8
	HCLEDataPacketLength    uint16
	HCTotalNumLEDataPackets uint8
}

func (c *LEReadBufferSizeRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetAdvertisingParameters implements LE Set Advertising Parameters
// (0x08|0x0006) [Vol 2, Part E, 7.8.5].
type LESetAdvertisingParameters struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         uint8
	OwnAddressType          uint8
	DirectAddressType       uint8
	DirectAddress           [6]byte
	AdvertisingChannelMap   uint8
	AdvertisingFilterPolicy uint8
}

func (c *LESetAdvertisingParameters) OpCode() int            { return 0x08<<10 | 0x0006 }
func (c *LESetAdvertisingParameters) Len() int               { return 15 }
func (c *LESetAdvertisingParameters) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertisingParametersRP returns the status of the command.
type LESetAdvertisingParametersRP struct {
	Status uint8
}

func (c *LESetAdvertisingParametersRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetAdvertisingData implements LE Set Advertising Data (0x08|0x0008) [Vol 2, Part E, 7.8.7].
type LESetAdvertisingData struct {
	AdvertisingDataLength uint8
	AdvertisingData       [31]byte
}

func (c *LESetAdvertisingData) OpCode() int            { return 0x08<<10 | 0x0008 }
func (c *LESetAdvertisingData) Len() int               { return 32 }
func (c *LESetAdvertisingData) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertisingDataRP returns the status of the command.
type LESetAdvertisingDataRP struct {
	Status uint8
}

func (c *LESetAdvertisingDataRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetScanResponseData implements LE Set Scan Response Data (0x08|0x0009) [Vol 2, Part E, 7.8.8].
type LESetScanResponseData struct {
	ScanResponseDataLength uint8
	ScanResponseData       [31]byte
}

func (c *LESetScanResponseData) OpCode() int            { return 0x08<<10 | 0x0009 }
func (c *LESetScanResponseData) Len() int               { return 32 }
func (c *LESetScanResponseData) Marshal(b []byte) error { return marshal(c, b) }

// LESetScanResponseDataRP returns the status of the command.
type LESetScanResponseDataRP struct {
	Status uint8
}

func (c *LESetScanResponseDataRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetAdvertiseEnable implements LE Set Advertising Enable (0x08|0x000A) [Vol 2, Part E, 7.8.9].
type LESetAdvertiseEnable struct {
	AdvertisingEnable uint8
}

func (c *LESetAdvertiseEnable) OpCode() int            { return 0x08<<10 | 0x000A }
func (c *LESetAdvertiseEnable) Len() int               { return 1 }
func (c *LESetAdvertiseEnable) Marshal(b []byte) error { return marshal(c, b) }

// LESetAdvertiseEnableRP returns the status of the command.
type LESetAdvertiseEnableRP struct {
	Status uint8
}

func (c *LESetAdvertiseEnableRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetScanParameters implements LE Set Scan Parameters (0x08|0x000B) [Vol 2, Part E, 7.8.10].
type LESetScanParameters struct {
	LEScanType           uint8
	LEScanInterval       uint16
	LEScanWindow         uint16
	OwnAddressType       uint8
	ScanningFilterPolicy uint8
}

func (c *LESetScanParameters) OpCode() int            { return 0x08<<10 | 0x000B }
func (c *LESetScanParameters) Len() int               { return 7 }
func (c *LESetScanParameters) Marshal(b []byte) error { return marshal(c, b) }

// LESetScanParametersRP returns the status of the command.
type LESetScanParametersRP struct {
	Status uint8
}

func (c *LESetScanParametersRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetScanEnable implements LE Set Scan Enable (0x08|0x000C) [Vol 2, Part E, 7.8.11].
type LESetScanEnable struct {
	LEScanEnable     uint8
	FilterDuplicates uint8
}

func (c *LESetScanEnable) OpCode() int            { return 0x08<<10 | 0x000C }
func (c *LESetScanEnable) Len() int               { return 2 }
func (c *LESetScanEnable) Marshal(b []byte) error { return marshal(c, b) }

// LESetScanEnableRP returns the status of the command.
type LESetScanEnableRP struct {
	Status uint8
}

func (c *LESetScanEnableRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LECreateConnection implements LE Create Connection (0x08|0x000D)
// [Vol 2, Part E, 7.8.12]. The command generates a Command Status; the
// outcome arrives in an LE Connection Complete event.
type LECreateConnection struct {
	LEScanInterval        uint16
	LEScanWindow          uint16
	InitiatorFilterPolicy uint8
	PeerAddressType       uint8
	PeerAddress           [6]byte
	OwnAddressType        uint8
	ConnIntervalMin       uint16
	ConnIntervalMax       uint16
	ConnLatency           uint16
	SupervisionTimeout    uint16
	MinimumCELength       uint16
	MaximumCELength       uint16
}

func (c *LECreateConnection) OpCode() int            { return 0x08<<10 | 0x000D }
func (c *LECreateConnection) Len() int               { return 25 }
func (c *LECreateConnection) Marshal(b []byte) error { return marshal(c, b) }

// LECreateConnectionCancel implements LE Create Connection Cancel
// (0x08|0x000E) [Vol 2, Part E, 7.8.13].
type LECreateConnectionCancel struct{}

func (c *LECreateConnectionCancel) OpCode() int            { return 0x08<<10 | 0x000E }
func (c *LECreateConnectionCancel) Len() int               { return 0 }
func (c *LECreateConnectionCancel) Marshal(b []byte) error { return marshal(c, b) }

// LECreateConnectionCancelRP returns the status of the command.
type LECreateConnectionCancelRP struct {
	Status uint8
}

func (c *LECreateConnectionCancelRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetDataLength implements LE Set Data Length (0x08|0x0022) [Vol 2, Part E, 7.8.33].
type LESetDataLength struct {
	ConnectionHandle uint16
	TXOctets         uint16
	TXTime           uint16
}

func (c *LESetDataLength) OpCode() int            { return 0x08<<10 | 0x0022 }
func (c *LESetDataLength) Len() int               { return 6 }
func (c *LESetDataLength) Marshal(b []byte) error { return marshal(c, b) }

// LESetDataLengthRP returns the status of the command.
type LESetDataLengthRP struct {
	Status           uint8
	ConnectionHandle uint16
}

func (c *LESetDataLengthRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LEReadPHY implements LE Read PHY (0x08|0x0030) [Vol 2, Part E, 7.8.47].
type LEReadPHY struct {
	ConnectionHandle uint16
}

func (c *LEReadPHY) OpCode() int            { return 0x08<<10 | 0x0030 }
func (c *LEReadPHY) Len() int               { return 2 }
func (c *LEReadPHY) Marshal(b []byte) error { return marshal(c, b) }

// LEReadPHYRP returns the PHYs in use on a connection.
type LEReadPHYRP struct {
	Status           uint8
	ConnectionHandle uint16
	TXPHY            uint8
	RXPHY            uint8
}

func (c *LEReadPHYRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// LESetPHY implements LE Set PHY (0x08|0x0032) [Vol 2, Part E, 7.8.49].
// The command generates a Command Status; the result arrives later in an
// LE PHY Update Complete event.
type LESetPHY struct {
	ConnectionHandle uint16
	AllPHYs          uint8
	TXPHYs           uint8
	RXPHYs           uint8
	PHYOptions       uint16
}

func (c *LESetPHY) OpCode() int            { return 0x08<<10 | 0x0032 }
func (c *LESetPHY) Len() int               { return 7 }
func (c *LESetPHY) Marshal(b []byte) error { return marshal(c, b) }
