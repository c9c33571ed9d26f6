// Package console implements the coordinator that drives a CPU, a PPU
// and a cartridge mapper in lockstep and exposes the host-facing
// surface (New/Reset/Step/StepSeconds/GetPixels/SetControllerButtons).
// https://www.nesdev.org/wiki/CPU_memory_map
package console

import (
	"fmt"
	"io"
	"math"

	"github.com/hallowell/nesgo/cartridge"
	"github.com/hallowell/nesgo/mappers"
	"github.com/hallowell/nesgo/mos6502"
	"github.com/hallowell/nesgo/ppu"
)

// CPU_FREQUENCY is the NTSC NES CPU clock, in Hz.
const CPU_FREQUENCY = 1_789_773

const (
	RAM_SIZE = 0x0800 // 2KiB built-in work RAM

	MAX_ADDRESS          = math.MaxUint16
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MAX_SRAM             = 0x6000 // 0x4020-0x5FFF: unmapped expansion ROM/SRAM space

	OAMDMA      = 0x4014
	CONTROLLER1 = 0x4016
	CONTROLLER2 = 0x4017
)

// Console owns the CPU, PPU and mapper for one loaded cartridge and
// implements both mos6502.Bus and ppu.Bus by routing accesses to RAM,
// PPU registers, controller ports and the mapper's PRG/CHR windows.
type Console struct {
	cpu    *mos6502.CPU
	ppu    *ppu.PPU
	mapper mappers.Mapper

	ram         [RAM_SIZE]uint8
	controllers [2]controller
}

// New parses rom, resolves its mapper and constructs a Console wired to
// both.
func New(rom io.Reader) (*Console, error) {
	r, err := cartridge.Load(rom)
	if err != nil {
		return nil, fmt.Errorf("console: couldn't load ROM: %w", err)
	}

	m, err := mappers.Get(r)
	if err != nil {
		return nil, fmt.Errorf("console: couldn't resolve mapper: %w", err)
	}

	c := &Console{mapper: m}
	c.ppu = ppu.New(c)
	c.cpu = mos6502.New(c)
	return c, nil
}

// Reset resets the PPU, then the CPU, matching power-on ordering.
func (c *Console) Reset() {
	c.ppu.Reset()
	c.cpu.Reset()
}

// Step advances the console by one CPU step (one instruction, one
// interrupt entry, or the pending OAM DMA stall; see mos6502.CPU.Step)
// plus the matching 3x PPU dots, and returns the number of CPU cycles
// consumed. Every side-effect of the instruction (including PPU register
// writes) is visible before the PPU advances any of those dots.
func (c *Console) Step() int {
	cycles := c.cpu.Step()
	for i := 0; i < cycles*3; i++ {
		c.ppu.Step()
	}
	return cycles
}

// StepSeconds advances the console by CPU_FREQUENCY*ms/1000 cycles,
// calling Step repeatedly. No timing-jitter compensation is performed.
func (c *Console) StepSeconds(ms int) {
	target := CPU_FREQUENCY * ms / 1000
	consumed := 0
	for consumed < target {
		consumed += c.Step()
	}
}

// GetPixels returns the current front frame buffer: 256*240 RGB24
// pixels in row-major order.
func (c *Console) GetPixels() []uint8 {
	return c.ppu.GetPixels()
}

// Resolution reports the frame buffer's fixed dimensions.
func (c *Console) Resolution() (int, int) {
	return c.ppu.GetResolution()
}

// CPU exposes the underlying 6502 for debugging tools (cmd/nesdbg):
// register/flag inspection, breakpoint comparison against PC, and
// single-instruction stepping via Step. Not part of the host-facing
// surface spec.md defines; a debugger-only extension.
func (c *Console) CPU() *mos6502.CPU {
	return c.cpu
}

// SetControllerButtons latches button state for the next controller
// strobe. buttons is ordered A, B, Select, Start, Up, Down, Left,
// Right. Ports outside {0, 1} are ignored.
func (c *Console) SetControllerButtons(port int, buttons [8]bool) {
	if port < 0 || port > 1 {
		return
	}
	c.controllers[port].setButtons(buttons)
}

// Read implements mos6502.Bus. https://www.nesdev.org/wiki/CPU_memory_map
func (c *Console) Read(addr uint16) uint8 {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x0800-0x1FFF mirrors 0x0000-0x07FF
		return c.ram[addr&0x07FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored every 8 bytes between 0x2000-0x3FFF
		return c.ppu.ReadReg(0x2000 + (addr & 0x0007))
	case addr == CONTROLLER1:
		return c.controllers[0].read()
	case addr == CONTROLLER2:
		return c.controllers[1].read()
	case addr < MAX_IO_REG:
		// APU registers: stubbed, reads as open bus zero
		return 0
	case addr < MAX_SRAM:
		panic(fmt.Sprintf("console: read from unmapped address %#04x", addr))
	case addr <= MAX_ADDRESS:
		return c.mapper.Read(addr)
	}

	panic("should never happen") // hah, prod crashes await!
}

// Write implements mos6502.Bus.
func (c *Console) Write(addr uint16, val uint8) {
	switch {
	case addr <= MAX_NES_BASE_RAM:
		c.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		c.ppu.WriteReg(0x2000+(addr&0x0007), val)
	case addr == OAMDMA:
		c.oamDMA(val)
	case addr == CONTROLLER1:
		// The strobe line is shared by both controller ports.
		c.controllers[0].write(val)
		c.controllers[1].write(val)
	case addr == CONTROLLER2:
		// APU frame counter register: stubbed, ignored
	case addr < MAX_IO_REG:
		// Remaining APU registers: stubbed, ignored
	case addr < MAX_SRAM:
		panic(fmt.Sprintf("console: write to unmapped address %#04x", addr))
	case addr <= MAX_ADDRESS:
		c.mapper.Write(addr, val)
	}
}

// oamDMA copies 256 bytes from page (val<<8) into OAM through the PPU's
// OAMDATA register and stalls the CPU 513 cycles, or 514 when the CPU's
// cycle count was odd at the moment of the write.
func (c *Console) oamDMA(val uint8) {
	base := uint16(val) << 8
	for i := 0; i < 256; i++ {
		c.ppu.WriteReg(ppu.OAMDATA, c.Read(base+uint16(i)))
	}

	stall := 513
	if c.cpu.Cycles%2 == 1 {
		stall = 514
	}
	c.cpu.AddStall(stall)
}

// ChrRead implements ppu.Bus.
func (c *Console) ChrRead(addr uint16) uint8 { return c.mapper.ChrRead(addr) }

// ChrWrite implements ppu.Bus.
func (c *Console) ChrWrite(addr uint16, val uint8) { c.mapper.ChrWrite(addr, val) }

// Mirroring implements ppu.Bus.
func (c *Console) Mirroring() int { return c.mapper.Mirroring() }

// TriggerNMI implements ppu.Bus: the PPU calls this when it raises NMI
// at the start of vertical blank.
func (c *Console) TriggerNMI() { c.cpu.TriggerNMI() }
