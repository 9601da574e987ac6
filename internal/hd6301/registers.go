// Package hd6301 emulates the Hitachi HD6301 microcontroller: its
// instruction set, on-chip register file, free-running counter and SCI.
//
// Grounded on _examples/original_source/hd6301.{c,h} and mem.{c,h}, laid
// out the way github.com/intuitionamiga/IntuitionEngine's registers.go
// centralises an address map for a single device family.
package hd6301

// On-chip register file, addresses 0x0000-0x0014. Shared by master and
// slave; the meaning of each port bit is peripheral-specific and is
// interpreted by the bus glue, not by this package.
const (
	RegDDR1    = 0x0000
	RegDDR2    = 0x0001
	RegPort1   = 0x0002
	RegPort2   = 0x0003
	RegDDR3    = 0x0004
	RegDDR4    = 0x0005
	RegPort3   = 0x0006
	RegPort4   = 0x0007
	RegTCSR    = 0x0008
	RegFRCHigh = 0x0009
	RegFRCLow  = 0x000A
	RegOCRHigh = 0x000B
	RegOCRLow  = 0x000C
	RegICRHigh = 0x000D
	RegICRLow  = 0x000E
	RegP3CSR   = 0x000F
	RegRMCR    = 0x0010
	RegTRCSR   = 0x0011
	RegRDR     = 0x0012
	RegTDR     = 0x0013
	RegRAMCtrl = 0x0014
)

// TCSR bit positions.
const (
	TCSROLVL = 0
	TCSRIEDG = 1
	TCSRETOI = 2
	TCSREOCI = 3
	TCSREICI = 4
	TCSRTOF  = 5
	TCSROCF  = 6
	TCSRICF  = 7
)

// P3CSR bit positions.
const (
	P3CSRLatch = 3
	P3CSROSS   = 4
	P3CSRIS3I  = 6
	P3CSRIS3   = 7
)

// TRCSR bit positions.
const (
	TRCSRWU   = 0
	TRCSRTE   = 1
	TRCSRTIE  = 2
	TRCSRRE   = 3
	TRCSRRIE  = 4
	TRCSRTDRE = 5
	TRCSRORFE = 6
	TRCSRRDRF = 7
)

// RAM control bits.
const (
	RAMCtrlRAME = 6
	RAMCtrlSTBY = 7
)

// Interrupt vector pairs (low, high), big-endian as read from memory.
const (
	VectorTrapLow   = 0xFFEF
	VectorTrapHigh  = 0xFFEE
	VectorSCILow    = 0xFFF1
	VectorSCIHigh   = 0xFFF0
	VectorTOFLow    = 0xFFF3
	VectorTOFHigh   = 0xFFF2
	VectorOCFLow    = 0xFFF5
	VectorOCFHigh   = 0xFFF4
	VectorICFLow    = 0xFFF7
	VectorICFHigh   = 0xFFF6
	VectorIRQLow    = 0xFFF9
	VectorIRQHigh   = 0xFFF8
	VectorSWILow    = 0xFFFB
	VectorSWIHigh   = 0xFFFA
	VectorNMILow    = 0xFFFD
	VectorNMIHigh   = 0xFFFC
	VectorResetLow  = 0xFFFF
	VectorResetHigh = 0xFFFE
)

// Master-only memory windows above the register file (mem.h).
const (
	MasterIOKSCGate    = 0x0020 // Keyboard scan line select, write-only
	MasterIOKRTNGateA  = 0x0022 // Keyboard row input 0-7
	MasterIOPort26     = 0x0026 // Special select port, mirrors to Port26FB
	MasterIOKRTNGateB  = 0x0028 // Keyboard row input 8,9, PWSW, serial readback
	MasterIOLCDData    = 0x002A // LCD command/data byte
	MasterIOPort26FB   = 0x004F // Special port 26 feedback mirror
	MasterRTCSeconds   = 0x0040
	MasterRTCSecAlarm  = 0x0041
	MasterRTCMinutes   = 0x0042
	MasterRTCMinAlarm  = 0x0043
	MasterRTCHour      = 0x0044
	MasterRTCHourAlarm = 0x0045
	MasterRTCDay       = 0x0046
	MasterRTCDate      = 0x0047
	MasterRTCMonth     = 0x0048
	MasterRTCYear      = 0x0049
	MasterRTCRegA      = 0x004A
	MasterRTCRegB      = 0x004B
	MasterRTCRegC      = 0x004C
	MasterRTCRegD      = 0x004D
)

// Legal ram_max values (spec §3).
const (
	RAMMaxDefault   = 0x3FFF
	RAMMaxExpansion = 0x7FFF
)
