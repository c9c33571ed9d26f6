package mappers

import "github.com/hallowell/nesgo/cartridge"

func init() {
	Register(0, newSwitchable)
	Register(2, newSwitchable)
}

// switchable implements the "simple switchable" mapper family (iNES
// mappers 0/NROM and 2/UxROM): PRG is split into two 16 KiB windows, the
// low window selectable, the high window fixed to the last bank. CHR is a
// single fixed 8 KiB window, read/write directly (CHR-RAM for NROM boards
// that ship without CHR-ROM).
type switchable struct {
	rom        *cartridge.ROM
	bankCount  int
	currentBank int
	lastBank    int
}

func newSwitchable(rom *cartridge.ROM) Mapper {
	banks := rom.PrgBanks()
	return &switchable{
		rom:        rom,
		bankCount:  banks,
		currentBank: 0,
		lastBank:    banks - 1,
	}
}

func (m *switchable) Read(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return m.rom.PRGRAM[addr-0x6000]
	case addr < 0xC000:
		return m.rom.PRG[m.currentBank*0x4000+int(addr-0x8000)]
	default:
		return m.rom.PRG[m.lastBank*0x4000+int(addr-0xC000)]
	}
}

func (m *switchable) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x8000:
		m.rom.PRGRAM[addr-0x6000] = val
	default:
		m.currentBank = int(val) % m.bankCount
	}
}

func (m *switchable) ChrRead(addr uint16) uint8 {
	return m.rom.CHR[addr]
}

func (m *switchable) ChrWrite(addr uint16, val uint8) {
	if m.rom.ChrIsRAM {
		m.rom.CHR[addr] = val
	}
}

func (m *switchable) Mirroring() int {
	return m.rom.Mirroring
}
