package lazyrpc

import "fmt"

// ChecksumType tags the checksum that follows the transport headers.
// Checksums are skipped, never verified.
type ChecksumType uint8

const (
	ChecksumNone       ChecksumType = 0
	ChecksumCRC32      ChecksumType = 1
	ChecksumFarmhash32 ChecksumType = 2
	ChecksumCRC32C     ChecksumType = 3
)

// Size returns the width of the checksum value carried for t.
func (t ChecksumType) Size() int {
	switch t {
	case ChecksumCRC32, ChecksumFarmhash32, ChecksumCRC32C:
		return 4
	}
	return 0
}

// Valid reports whether t is a known checksum type.
func (t ChecksumType) Valid() bool {
	return t <= ChecksumCRC32C
}

func (t ChecksumType) String() string {
	switch t {
	case ChecksumNone:
		return "none"
	case ChecksumCRC32:
		return "crc32"
	case ChecksumFarmhash32:
		return "farmhash32"
	case ChecksumCRC32C:
		return "crc32c"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Checksum is a checksum tag plus the raw value bytes, if any.
type Checksum struct {
	Type  ChecksumType
	Value []byte
}

// readChecksum reads the type tag and returns the value range without checking it.
func readChecksum(c *Cursor) (cs Checksum, err error) {
	start := c.Offset()
	tag, err := c.ReadUint8()
	if err != nil {
		err = withField(err, "checksum type")
		return
	}
	cs.Type = ChecksumType(tag)
	if !cs.Type.Valid() {
		err = malformed("checksum type", start, "unknown tag %d", tag)
		return
	}
	if n := cs.Type.Size(); n > 0 {
		cs.Value, err = c.ReadBytes(n)
		if err != nil {
			err = withField(err, "checksum value")
		}
	}
	return
}
