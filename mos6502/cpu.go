// Package mos6502 implements the MOS Technologies 6502 processor
// https://en.wikipedia.org/wiki/MOS_Technology_6502
package mos6502

import (
	"fmt"
	"strings"
)

// CPU_FREQUENCY is the NTSC NES CPU clock, in Hz.
// https://www.nesdev.org/wiki/CPU
const CPU_FREQUENCY = 1789773

const (
	RAM_SIZE = 0x0800 // 2k of real (non-cartridge) memory
)

// 6502 Interrupt Vectors
// https://en.wikipedia.org/wiki/Interrupts_in_65xx_processors
const (
	INT_IRQ   = 0xFFFE
	INT_BRK   = INT_IRQ
	INT_RESET = 0xFFFC
	INT_NMI   = 0xFFFA
)

// Pending interrupt tags.
const (
	IntNone = iota
	IntNMI
	IntIRQ
)

// 6502 Processor Status Flags
// https://www.nesdev.org/obelisk-6502-guide/registers.html
const (
	STATUS_FLAG_CARRY             = 1 << 0 // C
	STATUS_FLAG_ZERO              = 1 << 1 // Z
	STATUS_FLAG_INTERRUPT_DISABLE = 1 << 2 // I
	STATUS_FLAG_DECIMAL           = 1 << 3 // D
	STATUS_FLAG_BREAK             = 1 << 4 // B
	UNUSED_STATUS_FLAG            = 1 << 5 // U - never cleared outside reset
	STATUS_FLAG_OVERFLOW          = 1 << 6 // V
	STATUS_FLAG_NEGATIVE          = 1 << 7 // N
)

const STACK_PAGE = 0x0100

var flagMap = map[uint8]byte{
	STATUS_FLAG_CARRY:             'C',
	STATUS_FLAG_ZERO:              'Z',
	STATUS_FLAG_INTERRUPT_DISABLE: 'I',
	STATUS_FLAG_DECIMAL:           'D',
	STATUS_FLAG_BREAK:             'B',
	UNUSED_STATUS_FLAG:            '-',
	STATUS_FLAG_OVERFLOW:          'V',
	STATUS_FLAG_NEGATIVE:          'N',
}

func statusString(p uint8) string {
	var sb strings.Builder
	for _, f := range []uint8{
		STATUS_FLAG_NEGATIVE, STATUS_FLAG_OVERFLOW, UNUSED_STATUS_FLAG, STATUS_FLAG_BREAK,
		STATUS_FLAG_DECIMAL, STATUS_FLAG_INTERRUPT_DISABLE, STATUS_FLAG_ZERO, STATUS_FLAG_CARRY,
	} {
		if p&f > 0 {
			sb.WriteByte(flagMap[f])
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Bus is the byte-addressable memory the CPU executes against. The
// console coordinator implements Bus: RAM, PPU registers, controller
// ports, OAM DMA and the cartridge mapper are all reached through it.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// CPU implements all of the 6502 machine state needed to execute NES
// programs: registers, discretely-stored status flags (so B and U can
// be held separately from the packed status byte, matching real
// hardware), and cycle/stall bookkeeping.
type CPU struct {
	A, X, Y uint8  // accumulator and index registers
	SP      uint8  // stack pointer; stack lives at 0x0100-0x01FF
	PC      uint16 // program counter

	// status flags, held independently rather than packed, so that B
	// and U can be forced to their push-time values without disturbing
	// the others.
	flagC, flagZ, flagI, flagD, flagB, flagU, flagV, flagN bool

	bus Bus

	Cycles    uint64 // total cycles executed since power-on
	stall     int    // extra cycles injected by e.g. OAM DMA
	interrupt uint8  // IntNone, IntNMI or IntIRQ
}

// New constructs a CPU wired to bus, in its post-reset power-on state.
// https://www.nesdev.org/wiki/CPU_ALL#Power-up_state
func New(bus Bus) *CPU {
	c := &CPU{
		bus: bus,
		SP:  0xFD,
	}
	c.setFlags(0x24) // I and U set; matches reset's flag byte
	c.PC = c.read16(INT_RESET)
	return c
}

func (c *CPU) String() string {
	return fmt.Sprintf("A,X,Y: %3d,%3d,%3d; PC: 0x%04x, SP: 0x%02x, P: %s (0x%02x)",
		c.A, c.X, c.Y, c.PC, c.SP, statusString(c.flags()), c.flags())
}

// Reset restores the CPU to its post-power-on-reset state: SP = 0xFD,
// the flag byte = 0x24, and PC reloaded from the reset vector.
func (c *CPU) Reset() {
	c.SP = 0xFD
	c.setFlags(0x24)
	c.PC = c.read16(INT_RESET)
}

// flags packs the discrete flag bits into the conventional status byte.
func (c *CPU) flags() uint8 {
	var p uint8
	if c.flagC {
		p |= STATUS_FLAG_CARRY
	}
	if c.flagZ {
		p |= STATUS_FLAG_ZERO
	}
	if c.flagI {
		p |= STATUS_FLAG_INTERRUPT_DISABLE
	}
	if c.flagD {
		p |= STATUS_FLAG_DECIMAL
	}
	if c.flagB {
		p |= STATUS_FLAG_BREAK
	}
	if c.flagU {
		p |= UNUSED_STATUS_FLAG
	}
	if c.flagV {
		p |= STATUS_FLAG_OVERFLOW
	}
	if c.flagN {
		p |= STATUS_FLAG_NEGATIVE
	}
	return p
}

// setFlags unpacks a status byte into the discrete flag bits.
func (c *CPU) setFlags(p uint8) {
	c.flagC = p&STATUS_FLAG_CARRY != 0
	c.flagZ = p&STATUS_FLAG_ZERO != 0
	c.flagI = p&STATUS_FLAG_INTERRUPT_DISABLE != 0
	c.flagD = p&STATUS_FLAG_DECIMAL != 0
	c.flagB = p&STATUS_FLAG_BREAK != 0
	c.flagU = p&UNUSED_STATUS_FLAG != 0
	c.flagV = p&STATUS_FLAG_OVERFLOW != 0
	c.flagN = p&STATUS_FLAG_NEGATIVE != 0
}

// Status returns the packed processor status byte, as pushed by PHP/BRK.
func (c *CPU) Status() uint8 { return c.flags() }

// setNegativeAndZeroFlags sets N and Z according to n.
func (c *CPU) setNegativeAndZeroFlags(n uint8) {
	c.flagZ = n == 0
	c.flagN = n&0x80 != 0
}

// AddStall adds n cycles of stall time, consumed before the next
// instruction dispatch. Used by the console coordinator to account for
// OAM DMA (513 or 514 cycles, depending on CPU parity at issue).
func (c *CPU) AddStall(n int) {
	c.stall += n
}

// TriggerNMI marks a non-maskable interrupt pending; it is serviced at
// the start of the next Step, regardless of the interrupt-disable flag.
func (c *CPU) TriggerNMI() {
	c.interrupt = IntNMI
}

// TriggerIRQ marks a maskable interrupt pending; it is serviced at the
// start of the next Step unless the interrupt-disable flag is set.
func (c *CPU) TriggerIRQ() {
	if c.interrupt == IntNone {
		c.interrupt = IntIRQ
	}
}

func (c *CPU) read(addr uint16) uint8       { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, val uint8) { c.bus.Write(addr, val) }

// read16 returns the two bytes at addr and addr+1 (little-endian).
func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return hi<<8 | lo
}

// read16Buggy reproduces the indirect-JMP page-wrap bug: if addr's low
// byte is 0xFF, the high byte is fetched from the start of the same
// page rather than the next one.
// https://www.nesdev.org/6502bugs.txt
func (c *CPU) read16Buggy(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	var hiAddr uint16
	if addr&0x00FF == 0x00FF {
		hiAddr = addr & 0xFF00
	} else {
		hiAddr = addr + 1
	}
	hi := uint16(c.read(hiAddr))
	return hi<<8 | lo
}

func (c *CPU) stackAddr() uint16 { return STACK_PAGE + uint16(c.SP) }

func (c *CPU) push(val uint8) {
	c.write(c.stackAddr(), val)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.read(c.stackAddr())
}

func (c *CPU) pushAddr(addr uint16) {
	c.push(uint8(addr >> 8))
	c.push(uint8(addr & 0xFF))
}

func (c *CPU) pullAddr() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

// pageCrossed reports whether a and b fall in different 256-byte pages.
func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// Step performs one unit of CPU work and returns the number of cycles it
// consumed: if stall cycles from a prior OAM DMA are pending, it consumes
// all of them and executes nothing; otherwise, if an NMI (or an unmasked
// IRQ) is pending, it services that interrupt and executes nothing more;
// otherwise it executes exactly one instruction.
func (c *CPU) Step() int {
	if c.stall > 0 {
		s := c.stall
		c.stall = 0
		c.Cycles += uint64(s)
		return s
	}

	if c.interrupt == IntNMI {
		c.interrupt = IntNone
		before := c.Cycles
		c.serviceInterrupt(INT_NMI, false)
		return int(c.Cycles - before)
	}
	if c.interrupt == IntIRQ {
		if c.flagI {
			// level-triggered and masked: stays pending until I clears
			return c.stepInstruction()
		}
		c.interrupt = IntNone
		before := c.Cycles
		c.serviceInterrupt(INT_IRQ, false)
		return int(c.Cycles - before)
	}

	return c.stepInstruction()
}

func (c *CPU) stepInstruction() int {
	startCycles := c.Cycles

	code := c.read(c.PC)
	op := opcodeTable[code]
	if op.exec == nil {
		panic(fmt.Sprintf("unsupported opcode %#02x at PC %#04x", code, c.PC))
	}
	c.PC++

	info := &stepInfo{pc: c.PC}
	if op.mode != IMPLICIT && op.mode != ACCUMULATOR {
		info.addr, info.pageCrossed = c.operandAddr(op.mode)
	}

	op.exec(c, info)

	if !info.branched {
		c.PC = info.pc + uint16(op.bytes) - 1
	}

	c.Cycles += uint64(op.cycles)
	if info.pageCrossed && op.pageCycles > 0 {
		c.Cycles += uint64(op.pageCycles)
	}
	if info.extraCycle > 0 {
		c.Cycles += uint64(info.extraCycle)
	}

	return int(c.Cycles - startCycles)
}

// serviceInterrupt pushes PC and status and jumps to the handler at
// vector, like BRK but without BRK's PC+1 return address. brk selects
// whether B is set in the pushed status byte; the NMI and IRQ paths in
// Step pass false, and the BRK instruction pushes its own frame in opBRK
// rather than calling this.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.pushAddr(c.PC)
	status := c.flags() | UNUSED_STATUS_FLAG
	if brk {
		status |= STATUS_FLAG_BREAK
	} else {
		status &^= STATUS_FLAG_BREAK
	}
	c.push(status)
	c.flagI = true
	c.PC = c.read16(vector)
	c.Cycles += 7
}
