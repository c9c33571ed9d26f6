package mos6502

// 6502 addressing modes.
// https://www.nesdev.org/obelisk-6502-guide/addressing.html
const (
	IMPLICIT = iota
	ACCUMULATOR
	IMMEDIATE
	ZERO_PAGE
	ZERO_PAGE_X
	ZERO_PAGE_Y
	RELATIVE
	ABSOLUTE
	ABSOLUTE_X
	ABSOLUTE_Y
	INDIRECT
	INDIRECT_X // Indexed Indirect
	INDIRECT_Y // Indirect Indexed
)

// stepInfo carries per-instruction scratch between address resolution
// and the executor function, and lets an executor signal that it
// changed the program counter itself (branches, jumps, returns).
type stepInfo struct {
	pc          uint16 // address of the byte following the opcode
	addr        uint16 // resolved operand address, for non-implicit modes
	pageCrossed bool
	branched    bool
	extraCycle  int
}

type executor func(c *CPU, info *stepInfo)

// instruction is one row of the 256-entry dispatch table: a name (for
// logging/debugging), its addressing mode, encoded size in bytes,
// base cycle cost, whether a page-crossing penalty applies, and the
// function that carries out its effect. There is no reflection here:
// Step indexes directly into this array with the fetched opcode byte.
type instruction struct {
	name       string
	mode       uint8
	bytes      uint8
	cycles     uint8
	pageCycles uint8 // 1 if a page-crossing access adds a cycle
	exec       executor
}

// operandAddr resolves the effective address for mode, reading operand
// bytes from the current PC (which must point at the first operand
// byte). It never advances PC; Step does that once, after dispatch.
func (c *CPU) operandAddr(mode uint8) (addr uint16, crossed bool) {
	switch mode {
	case IMMEDIATE:
		addr = c.PC
	case ZERO_PAGE:
		addr = uint16(c.read(c.PC))
	case ZERO_PAGE_X:
		addr = uint16(c.read(c.PC) + c.X)
	case ZERO_PAGE_Y:
		addr = uint16(c.read(c.PC) + c.Y)
	case ABSOLUTE:
		addr = c.read16(c.PC)
	case ABSOLUTE_X:
		base := c.read16(c.PC)
		addr = base + uint16(c.X)
		crossed = pageCrossed(base, addr)
	case ABSOLUTE_Y:
		base := c.read16(c.PC)
		addr = base + uint16(c.Y)
		crossed = pageCrossed(base, addr)
	case INDIRECT:
		addr = c.read16Buggy(c.read16(c.PC))
	case INDIRECT_X:
		ptr := uint16(c.read(c.PC) + c.X)
		addr = c.read16ZeroPage(ptr)
	case INDIRECT_Y:
		ptr := uint16(c.read(c.PC))
		base := c.read16ZeroPage(ptr)
		addr = base + uint16(c.Y)
		crossed = pageCrossed(base, addr)
	case RELATIVE:
		offset := int8(c.read(c.PC))
		addr = uint16(int32(c.PC+1) + int32(offset))
	}
	return
}

// read16ZeroPage reads a little-endian word from the zero page,
// wrapping within page 0 rather than spilling into page 1 - the
// behavior indirect-indexed and indexed-indirect addressing depend on.
func (c *CPU) read16ZeroPage(addr uint16) uint16 {
	lo := uint16(c.read(addr & 0x00FF))
	hi := uint16(c.read((addr + 1) & 0x00FF))
	return hi<<8 | lo
}

var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]instruction {
	var t [256]instruction

	def := func(code uint8, name string, mode uint8, bytes, cycles, pageCycles uint8, exec executor) {
		t[code] = instruction{name, mode, bytes, cycles, pageCycles, exec}
	}

	// official opcodes
	def(0x69, "ADC", IMMEDIATE, 2, 2, 0, opADC)
	def(0x65, "ADC", ZERO_PAGE, 2, 3, 0, opADC)
	def(0x75, "ADC", ZERO_PAGE_X, 2, 4, 0, opADC)
	def(0x6D, "ADC", ABSOLUTE, 3, 4, 0, opADC)
	def(0x7D, "ADC", ABSOLUTE_X, 3, 4, 1, opADC)
	def(0x79, "ADC", ABSOLUTE_Y, 3, 4, 1, opADC)
	def(0x61, "ADC", INDIRECT_X, 2, 6, 0, opADC)
	def(0x71, "ADC", INDIRECT_Y, 2, 5, 1, opADC)

	def(0x29, "AND", IMMEDIATE, 2, 2, 0, opAND)
	def(0x25, "AND", ZERO_PAGE, 2, 3, 0, opAND)
	def(0x35, "AND", ZERO_PAGE_X, 2, 4, 0, opAND)
	def(0x2D, "AND", ABSOLUTE, 3, 4, 0, opAND)
	def(0x3D, "AND", ABSOLUTE_X, 3, 4, 1, opAND)
	def(0x39, "AND", ABSOLUTE_Y, 3, 4, 1, opAND)
	def(0x21, "AND", INDIRECT_X, 2, 6, 0, opAND)
	def(0x31, "AND", INDIRECT_Y, 2, 5, 1, opAND)

	def(0x0A, "ASL", ACCUMULATOR, 1, 2, 0, opASLAcc)
	def(0x06, "ASL", ZERO_PAGE, 2, 5, 0, opASLMem)
	def(0x16, "ASL", ZERO_PAGE_X, 2, 6, 0, opASLMem)
	def(0x0E, "ASL", ABSOLUTE, 3, 6, 0, opASLMem)
	def(0x1E, "ASL", ABSOLUTE_X, 3, 7, 0, opASLMem)

	def(0x90, "BCC", RELATIVE, 2, 2, 0, opBCC)
	def(0xB0, "BCS", RELATIVE, 2, 2, 0, opBCS)
	def(0xF0, "BEQ", RELATIVE, 2, 2, 0, opBEQ)
	def(0x30, "BMI", RELATIVE, 2, 2, 0, opBMI)
	def(0xD0, "BNE", RELATIVE, 2, 2, 0, opBNE)
	def(0x10, "BPL", RELATIVE, 2, 2, 0, opBPL)
	def(0x50, "BVC", RELATIVE, 2, 2, 0, opBVC)
	def(0x70, "BVS", RELATIVE, 2, 2, 0, opBVS)

	def(0x24, "BIT", ZERO_PAGE, 2, 3, 0, opBIT)
	def(0x2C, "BIT", ABSOLUTE, 3, 4, 0, opBIT)

	def(0x00, "BRK", IMPLICIT, 2, 7, 0, opBRK)

	def(0x18, "CLC", IMPLICIT, 1, 2, 0, opCLC)
	def(0xD8, "CLD", IMPLICIT, 1, 2, 0, opCLD)
	def(0x58, "CLI", IMPLICIT, 1, 2, 0, opCLI)
	def(0xB8, "CLV", IMPLICIT, 1, 2, 0, opCLV)

	def(0xC9, "CMP", IMMEDIATE, 2, 2, 0, opCMP)
	def(0xC5, "CMP", ZERO_PAGE, 2, 3, 0, opCMP)
	def(0xD5, "CMP", ZERO_PAGE_X, 2, 4, 0, opCMP)
	def(0xCD, "CMP", ABSOLUTE, 3, 4, 0, opCMP)
	def(0xDD, "CMP", ABSOLUTE_X, 3, 4, 1, opCMP)
	def(0xD9, "CMP", ABSOLUTE_Y, 3, 4, 1, opCMP)
	def(0xC1, "CMP", INDIRECT_X, 2, 6, 0, opCMP)
	def(0xD1, "CMP", INDIRECT_Y, 2, 5, 1, opCMP)

	def(0xE0, "CPX", IMMEDIATE, 2, 2, 0, opCPX)
	def(0xE4, "CPX", ZERO_PAGE, 2, 3, 0, opCPX)
	def(0xEC, "CPX", ABSOLUTE, 3, 4, 0, opCPX)

	def(0xC0, "CPY", IMMEDIATE, 2, 2, 0, opCPY)
	def(0xC4, "CPY", ZERO_PAGE, 2, 3, 0, opCPY)
	def(0xCC, "CPY", ABSOLUTE, 3, 4, 0, opCPY)

	def(0xC6, "DEC", ZERO_PAGE, 2, 5, 0, opDEC)
	def(0xD6, "DEC", ZERO_PAGE_X, 2, 6, 0, opDEC)
	def(0xCE, "DEC", ABSOLUTE, 3, 6, 0, opDEC)
	def(0xDE, "DEC", ABSOLUTE_X, 3, 7, 0, opDEC)

	def(0xCA, "DEX", IMPLICIT, 1, 2, 0, opDEX)
	def(0x88, "DEY", IMPLICIT, 1, 2, 0, opDEY)

	def(0x49, "EOR", IMMEDIATE, 2, 2, 0, opEOR)
	def(0x45, "EOR", ZERO_PAGE, 2, 3, 0, opEOR)
	def(0x55, "EOR", ZERO_PAGE_X, 2, 4, 0, opEOR)
	def(0x4D, "EOR", ABSOLUTE, 3, 4, 0, opEOR)
	def(0x5D, "EOR", ABSOLUTE_X, 3, 4, 1, opEOR)
	def(0x59, "EOR", ABSOLUTE_Y, 3, 4, 1, opEOR)
	def(0x41, "EOR", INDIRECT_X, 2, 6, 0, opEOR)
	def(0x51, "EOR", INDIRECT_Y, 2, 5, 1, opEOR)

	def(0xE6, "INC", ZERO_PAGE, 2, 5, 0, opINC)
	def(0xF6, "INC", ZERO_PAGE_X, 2, 6, 0, opINC)
	def(0xEE, "INC", ABSOLUTE, 3, 6, 0, opINC)
	def(0xFE, "INC", ABSOLUTE_X, 3, 7, 0, opINC)

	def(0xE8, "INX", IMPLICIT, 1, 2, 0, opINX)
	def(0xC8, "INY", IMPLICIT, 1, 2, 0, opINY)

	def(0x4C, "JMP", ABSOLUTE, 3, 3, 0, opJMP)
	def(0x6C, "JMP", INDIRECT, 3, 5, 0, opJMP)
	def(0x20, "JSR", ABSOLUTE, 3, 6, 0, opJSR)

	def(0xA9, "LDA", IMMEDIATE, 2, 2, 0, opLDA)
	def(0xA5, "LDA", ZERO_PAGE, 2, 3, 0, opLDA)
	def(0xB5, "LDA", ZERO_PAGE_X, 2, 4, 0, opLDA)
	def(0xAD, "LDA", ABSOLUTE, 3, 4, 0, opLDA)
	def(0xBD, "LDA", ABSOLUTE_X, 3, 4, 1, opLDA)
	def(0xB9, "LDA", ABSOLUTE_Y, 3, 4, 1, opLDA)
	def(0xA1, "LDA", INDIRECT_X, 2, 6, 0, opLDA)
	def(0xB1, "LDA", INDIRECT_Y, 2, 5, 1, opLDA)

	def(0xA2, "LDX", IMMEDIATE, 2, 2, 0, opLDX)
	def(0xA6, "LDX", ZERO_PAGE, 2, 3, 0, opLDX)
	def(0xB6, "LDX", ZERO_PAGE_Y, 2, 4, 0, opLDX)
	def(0xAE, "LDX", ABSOLUTE, 3, 4, 0, opLDX)
	def(0xBE, "LDX", ABSOLUTE_Y, 3, 4, 1, opLDX)

	def(0xA0, "LDY", IMMEDIATE, 2, 2, 0, opLDY)
	def(0xA4, "LDY", ZERO_PAGE, 2, 3, 0, opLDY)
	def(0xB4, "LDY", ZERO_PAGE_X, 2, 4, 0, opLDY)
	def(0xAC, "LDY", ABSOLUTE, 3, 4, 0, opLDY)
	def(0xBC, "LDY", ABSOLUTE_X, 3, 4, 1, opLDY)

	def(0x4A, "LSR", ACCUMULATOR, 1, 2, 0, opLSRAcc)
	def(0x46, "LSR", ZERO_PAGE, 2, 5, 0, opLSRMem)
	def(0x56, "LSR", ZERO_PAGE_X, 2, 6, 0, opLSRMem)
	def(0x4E, "LSR", ABSOLUTE, 3, 6, 0, opLSRMem)
	def(0x5E, "LSR", ABSOLUTE_X, 3, 7, 0, opLSRMem)

	def(0xEA, "NOP", IMPLICIT, 1, 2, 0, opNOP)

	def(0x09, "ORA", IMMEDIATE, 2, 2, 0, opORA)
	def(0x05, "ORA", ZERO_PAGE, 2, 3, 0, opORA)
	def(0x15, "ORA", ZERO_PAGE_X, 2, 4, 0, opORA)
	def(0x0D, "ORA", ABSOLUTE, 3, 4, 0, opORA)
	def(0x1D, "ORA", ABSOLUTE_X, 3, 4, 1, opORA)
	def(0x19, "ORA", ABSOLUTE_Y, 3, 4, 1, opORA)
	def(0x01, "ORA", INDIRECT_X, 2, 6, 0, opORA)
	def(0x11, "ORA", INDIRECT_Y, 2, 5, 1, opORA)

	def(0x48, "PHA", IMPLICIT, 1, 3, 0, opPHA)
	def(0x08, "PHP", IMPLICIT, 1, 3, 0, opPHP)
	def(0x68, "PLA", IMPLICIT, 1, 4, 0, opPLA)
	def(0x28, "PLP", IMPLICIT, 1, 4, 0, opPLP)

	def(0x2A, "ROL", ACCUMULATOR, 1, 2, 0, opROLAcc)
	def(0x26, "ROL", ZERO_PAGE, 2, 5, 0, opROLMem)
	def(0x36, "ROL", ZERO_PAGE_X, 2, 6, 0, opROLMem)
	def(0x2E, "ROL", ABSOLUTE, 3, 6, 0, opROLMem)
	def(0x3E, "ROL", ABSOLUTE_X, 3, 7, 0, opROLMem)

	def(0x6A, "ROR", ACCUMULATOR, 1, 2, 0, opRORAcc)
	def(0x66, "ROR", ZERO_PAGE, 2, 5, 0, opRORMem)
	def(0x76, "ROR", ZERO_PAGE_X, 2, 6, 0, opRORMem)
	def(0x6E, "ROR", ABSOLUTE, 3, 6, 0, opRORMem)
	def(0x7E, "ROR", ABSOLUTE_X, 3, 7, 0, opRORMem)

	def(0x40, "RTI", IMPLICIT, 1, 6, 0, opRTI)
	def(0x60, "RTS", IMPLICIT, 1, 6, 0, opRTS)

	def(0xE9, "SBC", IMMEDIATE, 2, 2, 0, opSBC)
	def(0xE5, "SBC", ZERO_PAGE, 2, 3, 0, opSBC)
	def(0xF5, "SBC", ZERO_PAGE_X, 2, 4, 0, opSBC)
	def(0xED, "SBC", ABSOLUTE, 3, 4, 0, opSBC)
	def(0xFD, "SBC", ABSOLUTE_X, 3, 4, 1, opSBC)
	def(0xF9, "SBC", ABSOLUTE_Y, 3, 4, 1, opSBC)
	def(0xE1, "SBC", INDIRECT_X, 2, 6, 0, opSBC)
	def(0xF1, "SBC", INDIRECT_Y, 2, 5, 1, opSBC)

	def(0x38, "SEC", IMPLICIT, 1, 2, 0, opSEC)
	def(0xF8, "SED", IMPLICIT, 1, 2, 0, opSED)
	def(0x78, "SEI", IMPLICIT, 1, 2, 0, opSEI)

	def(0x85, "STA", ZERO_PAGE, 2, 3, 0, opSTA)
	def(0x95, "STA", ZERO_PAGE_X, 2, 4, 0, opSTA)
	def(0x8D, "STA", ABSOLUTE, 3, 4, 0, opSTA)
	def(0x9D, "STA", ABSOLUTE_X, 3, 5, 0, opSTA)
	def(0x99, "STA", ABSOLUTE_Y, 3, 5, 0, opSTA)
	def(0x81, "STA", INDIRECT_X, 2, 6, 0, opSTA)
	def(0x91, "STA", INDIRECT_Y, 2, 6, 0, opSTA)

	def(0x86, "STX", ZERO_PAGE, 2, 3, 0, opSTX)
	def(0x96, "STX", ZERO_PAGE_Y, 2, 4, 0, opSTX)
	def(0x8E, "STX", ABSOLUTE, 3, 4, 0, opSTX)

	def(0x84, "STY", ZERO_PAGE, 2, 3, 0, opSTY)
	def(0x94, "STY", ZERO_PAGE_X, 2, 4, 0, opSTY)
	def(0x8C, "STY", ABSOLUTE, 3, 4, 0, opSTY)

	def(0xAA, "TAX", IMPLICIT, 1, 2, 0, opTAX)
	def(0xA8, "TAY", IMPLICIT, 1, 2, 0, opTAY)
	def(0xBA, "TSX", IMPLICIT, 1, 2, 0, opTSX)
	def(0x8A, "TXA", IMPLICIT, 1, 2, 0, opTXA)
	def(0x9A, "TXS", IMPLICIT, 1, 2, 0, opTXS)
	def(0x98, "TYA", IMPLICIT, 1, 2, 0, opTYA)

	// unofficial/"illegal" combined opcodes: each is the sequential
	// composition of two official operations on the same effective
	// address. https://www.nesdev.org/wiki/Programming_with_unofficial_opcodes
	def(0xA7, "LAX", ZERO_PAGE, 2, 3, 0, opLAX)
	def(0xB7, "LAX", ZERO_PAGE_Y, 2, 4, 0, opLAX)
	def(0xAF, "LAX", ABSOLUTE, 3, 4, 0, opLAX)
	def(0xBF, "LAX", ABSOLUTE_Y, 3, 4, 1, opLAX)
	def(0xA3, "LAX", INDIRECT_X, 2, 6, 0, opLAX)
	def(0xB3, "LAX", INDIRECT_Y, 2, 5, 1, opLAX)

	def(0x87, "SAX", ZERO_PAGE, 2, 3, 0, opSAX)
	def(0x97, "SAX", ZERO_PAGE_Y, 2, 4, 0, opSAX)
	def(0x8F, "SAX", ABSOLUTE, 3, 4, 0, opSAX)
	def(0x83, "SAX", INDIRECT_X, 2, 6, 0, opSAX)

	def(0xC7, "DCP", ZERO_PAGE, 2, 5, 0, opDCP)
	def(0xD7, "DCP", ZERO_PAGE_X, 2, 6, 0, opDCP)
	def(0xCF, "DCP", ABSOLUTE, 3, 6, 0, opDCP)
	def(0xDF, "DCP", ABSOLUTE_X, 3, 7, 0, opDCP)
	def(0xDB, "DCP", ABSOLUTE_Y, 3, 7, 0, opDCP)
	def(0xC3, "DCP", INDIRECT_X, 2, 8, 0, opDCP)
	def(0xD3, "DCP", INDIRECT_Y, 2, 8, 0, opDCP)

	def(0xE7, "ISC", ZERO_PAGE, 2, 5, 0, opISC)
	def(0xF7, "ISC", ZERO_PAGE_X, 2, 6, 0, opISC)
	def(0xEF, "ISC", ABSOLUTE, 3, 6, 0, opISC)
	def(0xFF, "ISC", ABSOLUTE_X, 3, 7, 0, opISC)
	def(0xFB, "ISC", ABSOLUTE_Y, 3, 7, 0, opISC)
	def(0xE3, "ISC", INDIRECT_X, 2, 8, 0, opISC)
	def(0xF3, "ISC", INDIRECT_Y, 2, 8, 0, opISC)

	def(0x07, "SLO", ZERO_PAGE, 2, 5, 0, opSLO)
	def(0x17, "SLO", ZERO_PAGE_X, 2, 6, 0, opSLO)
	def(0x0F, "SLO", ABSOLUTE, 3, 6, 0, opSLO)
	def(0x1F, "SLO", ABSOLUTE_X, 3, 7, 0, opSLO)
	def(0x1B, "SLO", ABSOLUTE_Y, 3, 7, 0, opSLO)
	def(0x03, "SLO", INDIRECT_X, 2, 8, 0, opSLO)
	def(0x13, "SLO", INDIRECT_Y, 2, 8, 0, opSLO)

	def(0x27, "RLA", ZERO_PAGE, 2, 5, 0, opRLA)
	def(0x37, "RLA", ZERO_PAGE_X, 2, 6, 0, opRLA)
	def(0x2F, "RLA", ABSOLUTE, 3, 6, 0, opRLA)
	def(0x3F, "RLA", ABSOLUTE_X, 3, 7, 0, opRLA)
	def(0x3B, "RLA", ABSOLUTE_Y, 3, 7, 0, opRLA)
	def(0x23, "RLA", INDIRECT_X, 2, 8, 0, opRLA)
	def(0x33, "RLA", INDIRECT_Y, 2, 8, 0, opRLA)

	def(0x47, "SRE", ZERO_PAGE, 2, 5, 0, opSRE)
	def(0x57, "SRE", ZERO_PAGE_X, 2, 6, 0, opSRE)
	def(0x4F, "SRE", ABSOLUTE, 3, 6, 0, opSRE)
	def(0x5F, "SRE", ABSOLUTE_X, 3, 7, 0, opSRE)
	def(0x5B, "SRE", ABSOLUTE_Y, 3, 7, 0, opSRE)
	def(0x43, "SRE", INDIRECT_X, 2, 8, 0, opSRE)
	def(0x53, "SRE", INDIRECT_Y, 2, 8, 0, opSRE)

	def(0x67, "RRA", ZERO_PAGE, 2, 5, 0, opRRA)
	def(0x77, "RRA", ZERO_PAGE_X, 2, 6, 0, opRRA)
	def(0x6F, "RRA", ABSOLUTE, 3, 6, 0, opRRA)
	def(0x7F, "RRA", ABSOLUTE_X, 3, 7, 0, opRRA)
	def(0x7B, "RRA", ABSOLUTE_Y, 3, 7, 0, opRRA)
	def(0x63, "RRA", INDIRECT_X, 2, 8, 0, opRRA)
	def(0x73, "RRA", INDIRECT_Y, 2, 8, 0, opRRA)

	def(0xEB, "SBC", IMMEDIATE, 2, 2, 0, opSBC) // undocumented duplicate of 0xE9

	// undocumented NOPs, in their various operand widths
	for _, code := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		def(code, "NOP", IMPLICIT, 1, 2, 0, opNOP)
	}
	for _, code := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		def(code, "NOP", IMMEDIATE, 2, 2, 0, opNOP)
	}
	for _, code := range []uint8{0x04, 0x44, 0x64} {
		def(code, "NOP", ZERO_PAGE, 2, 3, 0, opNOP)
	}
	for _, code := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		def(code, "NOP", ZERO_PAGE_X, 2, 4, 0, opNOP)
	}
	def(0x0C, "NOP", ABSOLUTE, 3, 4, 0, opNOP)
	for _, code := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		def(code, "NOP", ABSOLUTE_X, 3, 4, 1, opNOP)
	}

	return t
}
