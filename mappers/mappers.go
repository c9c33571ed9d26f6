// Package mappers implements cartridge-specific address translation:
// banked PRG/CHR windows and the in-cartridge configuration registers that
// select among them. https://www.nesdev.org/wiki/Mapper
package mappers

import (
	"fmt"

	"github.com/hallowell/nesgo/cartridge"
)

// Mapper routes CPU and PPU bus accesses through a cartridge's bank
// windows. Both the CPU bus (0x6000-0xFFFF) and the PPU bus
// (0x0000-0x1FFF) read and write through the same Mapper instance; there
// is exactly one Mapper per loaded ROM, shared by both buses.
type Mapper interface {
	// Read returns the PRG-RAM or PRG-ROM byte mapped at a CPU address
	// in 0x6000-0xFFFF.
	Read(addr uint16) uint8
	// Write stores to PRG-RAM, or interprets addr/val as a bank-select
	// register write when addr is in ROM space.
	Write(addr uint16, val uint8)
	// ChrRead returns the CHR byte mapped at a PPU pattern-table
	// address in 0x0000-0x1FFF.
	ChrRead(addr uint16) uint8
	// ChrWrite stores to CHR-RAM, or is a no-op against CHR-ROM.
	ChrWrite(addr uint16, val uint8)
	// Mirroring returns the cartridge's current nametable mirroring
	// mode (one of the cartridge.Mirror* constants); mapper 1 can
	// change this at runtime via its control register.
	Mirroring() int
}

// constructor builds a Mapper for a freshly loaded ROM.
type constructor func(*cartridge.ROM) Mapper

var registry = map[uint8]constructor{}

// Register associates a mapper id (as carried in cartridge.ROM.MapperID)
// with a constructor. Called from each mapper implementation's init().
func Register(id uint8, c constructor) {
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("mappers: id %d already registered", id))
	}
	registry[id] = c
}

// Get constructs the Mapper declared by rom's header, or an error if no
// mapper is registered for that id.
func Get(rom *cartridge.ROM) (Mapper, error) {
	c, ok := registry[rom.MapperID]
	if !ok {
		return nil, fmt.Errorf("mappers: unsupported mapper id %d", rom.MapperID)
	}
	return c(rom), nil
}
