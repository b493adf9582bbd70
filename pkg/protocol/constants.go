package protocol

const (
	HeaderSize    = 8   // obfuscated metadata block, one Blowfish block
	ChunkSlotSize = 272 // ciphertext slot per unit, a multiple of the AES block
	UnitBytes     = HeaderSize + ChunkSlotSize
	UnitRunes     = UnitBytes / 2 // two bytes per CJK codepoint

	CipherBlockSize = 16 // AES block, also the IV length

	// Header bit layout, bit 0 = least significant.
	FillerBits      = 52
	FillerMask      = uint64(1)<<FillerBits - 1
	ProtocolShift   = 52
	ProtocolMask    = uint64(0x3F)
	BlockCountShift = 58
	BlockCountMask  = uint64(0x1F)
	FragmentShift   = 63

	MaxProtocolID = 63
	MaxBlockCount = 31

	ProtocolText = 2

	PayloadKeySize = 32 // AES-256
	HeaderKeySize  = 16
	MasterKeySize  = 32
)
