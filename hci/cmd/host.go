package cmd

// Reset implements Reset (0x03|0x0003) [Vol 2, Part E, 7.3.2].
type Reset struct{}

func (c *Reset) OpCode() int            { return 0x03<<10 | 0x0003 }
func (c *Reset) Len() int               { return 0 }
func (c *Reset) Marshal(b []byte) error { return marshal(c, b) }

// ResetRP returns the status of the Reset command.
type ResetRP struct {
	Status uint8
}

func (c *ResetRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// SetEventMask implements Set Event Mask (0x03|0x0001) [Vol 2, Part E, 7.3.1].
type SetEventMask struct {
	EventMask uint64
}

func (c *SetEventMask) OpCode() int            { return 0x03<<10 | 0x0001 }
func (c *SetEventMask) Len() int               { return 8 }
func (c *SetEventMask) Marshal(b []byte) error { return marshal(c, b) }

// SetEventMaskRP returns the status of the Set Event Mask command.
type SetEventMaskRP struct {
	Status uint8
}

func (c *SetEventMaskRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// ReadBDADDR implements Read BD_ADDR (0x04|0x0009) [Vol 2, Part E, 7.4.6].
type ReadBDADDR struct{}

func (c *ReadBDADDR) OpCode() int            { return 0x04<<10 | 0x0009 }
func (c *ReadBDADDR) Len() int               { return 0 }
func (c *ReadBDADDR) Marshal(b []byte) error { return marshal(c, b) }

// ReadBDADDRRP returns the public device address of the controller.
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

func (c *ReadBDADDRRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// ReadBufferSize implements Read Buffer Size (0x04|0x0005) [Vol 2, Part E, 7.4.5].
type ReadBufferSize struct{}

func (c *ReadBufferSize) OpCode() int            { return 0x04<<10 | 0x0005 }
func (c *ReadBufferSize) Len() int               { return 0 }
func (c *ReadBufferSize) Marshal(b []byte) error { return marshal(c, b) }

// ReadBufferSizeRP returns the controller's shared ACL buffer accounting.
type ReadBufferSizeRP struct {
	Status                           uint8
	HCACLDataPacketLength            uint16
	HCSynchronousDataPacketLength    uint8
	HCTotalNumACLDataPackets         uint16
	HCTotalNumSynchronousDataPackets uint16
}

func (c *ReadBufferSizeRP) Unmarshal(b []byte) error { return unmarshal(c, b) }

// Disconnect implements Disconnect (0x01|0x0006) [Vol 2, Part E, 7.1.6].
// Completion is reported by a Disconnection Complete event.
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) OpCode() int            { return 0x01<<10 | 0x0006 }
func (c *Disconnect) Len() int               { return 3 }
func (c *Disconnect) Marshal(b []byte) error { return marshal(c, b) }
