package mos6502

import "testing"

// testBus is a flat 64 KiB memory, standing in for the console
// coordinator's real bus routing.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8     { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v uint8) { b.mem[addr] = v }

func newTestCPU() (*CPU, *testBus) {
	bus := &testBus{}
	bus.mem[INT_RESET] = 0x00
	bus.mem[INT_RESET+1] = 0x80 // reset vector -> 0x8000
	c := New(bus)
	return c, bus
}

func TestResetVector(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = %#02x, want 0xfd", c.SP)
	}
	if c.flags() != 0x24 {
		t.Errorf("status = %#02x, want 0x24", c.flags())
	}
}

func TestFlagsPackUnpackRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	for _, p := range []uint8{0x00, 0xFF, 0x24, 0b1010_1010, 0b0101_0101} {
		c.setFlags(p)
		if got := c.flags(); got != p {
			t.Errorf("flags round-trip: set %#08b, got %#08b", p, got)
		}
	}
}

func TestStackPointerWraps(t *testing.T) {
	c, bus := newTestCPU()
	c.SP = 0x00
	c.push(0x42)
	if c.SP != 0xFF {
		t.Errorf("SP after push at 0x00 = %#02x, want 0xff (wrapped)", c.SP)
	}
	if bus.mem[STACK_PAGE] != 0x42 {
		t.Errorf("pushed byte at 0x0100 = %#02x, want 0x42", bus.mem[STACK_PAGE])
	}
}

func TestRead16(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x10] = 0xCD
	bus.mem[0x11] = 0xAB
	if got := c.read16(0x10); got != 0xABCD {
		t.Errorf("read16 = %#04x, want 0xabcd", got)
	}
}

func TestRead16BuggyPageWrap(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x30FF] = 0x80
	bus.mem[0x3000] = 0x02 // the bug: high byte comes from 0x3000, not 0x3100
	bus.mem[0x3100] = 0xFF

	got := c.read16Buggy(0x30FF)
	if got != 0x0280 {
		t.Errorf("read16Buggy(0x30ff) = %#04x, want 0x0280", got)
	}
}

func TestRead16BuggyNoWrapWhenNotAtPageBoundary(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x3050] = 0x80
	bus.mem[0x3051] = 0x02

	if got := c.read16Buggy(0x3050); got != 0x0280 {
		t.Errorf("read16Buggy(0x3050) = %#04x, want 0x0280", got)
	}
}

// load assembles a tiny program at 0x8000 and points PC at it.
func load(c *CPU, bus *testBus, code ...uint8) {
	for i, b := range code {
		bus.mem[0x8000+i] = b
	}
	c.PC = 0x8000
}

func TestLDAImmediateSetsZeroFlag(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xA9, 0x00) // LDA #$00
	c.Step()
	if !c.flagZ {
		t.Error("Z flag not set after LDA #$00")
	}
	if c.flagN {
		t.Error("N flag unexpectedly set after LDA #$00")
	}
}

func TestLDAAbsoluteXPageCrossAddsCycle(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xBD, 0xFF, 0x00) // LDA $00FF,X
	c.X = 1                       // crosses into page 1
	bus.mem[0x0100] = 0x77

	cycles := c.Step()
	if cycles != 5 { // base 4 + 1 for page cross
		t.Errorf("cycles = %d, want 5", cycles)
	}
	if c.A != 0x77 {
		t.Errorf("A = %#02x, want 0x77", c.A)
	}
}

func TestLDAAbsoluteXNoPageCrossIsBaseCycles(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xBD, 0x00, 0x01) // LDA $0100,X
	c.X = 1
	bus.mem[0x0101] = 0x55

	if cycles := c.Step(); cycles != 4 {
		t.Errorf("cycles = %d, want 4", cycles)
	}
}

func TestBranchTakenAddsCycleAndCrossingAddsAnother(t *testing.T) {
	c, bus := newTestCPU()
	// A taken BEQ that stays on its page, then one that crosses a page.
	load(c, bus, 0xF0, 0x7F) // BEQ +127 -> 0x8002+127 = 0x8081, same page
	c.flagZ = true
	if cycles := c.Step(); cycles != 3 {
		t.Errorf("same-page taken branch cycles = %d, want 3", cycles)
	}

	c.PC = 0x80FE
	bus.mem[0x80FE] = 0xF0
	bus.mem[0x80FF] = 0xF0 // -16: fall-through 0x8100, target 0x80f0 - crosses back a page
	c.flagZ = true
	if cycles := c.Step(); cycles != 4 {
		t.Errorf("cross-page taken branch cycles = %d, want 4", cycles)
	}
}

func TestBranchNotTakenIsBaseCycles(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xF0, 0x10) // BEQ, Z clear
	c.flagZ = false
	if cycles := c.Step(); cycles != 2 {
		t.Errorf("cycles = %d, want 2", cycles)
	}
	if c.PC != 0x8002 {
		t.Errorf("PC = %#04x, want 0x8002 (fell through)", c.PC)
	}
}

func TestJMPIndirectUsesBuggyRead(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	bus.mem[0x30FF] = 0x00
	bus.mem[0x3000] = 0x04 // bug: high byte from 0x3000, not 0x3100
	bus.mem[0x3100] = 0xFF

	c.Step()
	if c.PC != 0x0400 {
		t.Errorf("PC after JMP indirect = %#04x, want 0x0400", c.PC)
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0x20, 0x00, 0x90) // JSR $9000
	bus.mem[0x9000] = 0x60         // RTS

	c.Step() // JSR
	if c.PC != 0x9000 {
		t.Errorf("PC after JSR = %#04x, want 0x9000", c.PC)
	}
	c.Step() // RTS
	if c.PC != 0x8003 {
		t.Errorf("PC after RTS = %#04x, want 0x8003", c.PC)
	}
}

func TestBRKRTIRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0x00, 0x00) // BRK
	bus.mem[INT_BRK] = 0x00
	bus.mem[INT_BRK+1] = 0x90 // BRK vector -> 0x9000
	bus.mem[0x9000] = 0x40    // RTI

	c.A = 0x11
	startPC := c.PC
	c.Step() // BRK
	if c.PC != 0x9000 {
		t.Errorf("PC after BRK = %#04x, want 0x9000", c.PC)
	}
	if !c.flagI {
		t.Error("I flag not set after BRK")
	}

	c.Step() // RTI
	if c.PC != startPC+2 {
		t.Errorf("PC after RTI = %#04x, want %#04x", c.PC, startPC+2)
	}
}

func TestNMIServicedBeforeNextInstruction(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xEA) // NOP
	bus.mem[INT_NMI] = 0x00
	bus.mem[INT_NMI+1] = 0x95 // NMI vector -> 0x9500

	c.TriggerNMI()
	cycles := c.Step()
	if c.PC != 0x9500 {
		t.Errorf("PC after NMI = %#04x, want 0x9500", c.PC)
	}
	if cycles != 7 {
		t.Errorf("NMI service cost %d cycles, want 7", cycles)
	}
}

func TestIRQIgnoredWhenInterruptDisableSet(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xEA) // NOP
	c.flagI = true
	c.TriggerIRQ()

	c.Step()
	if c.PC != 0x8001 {
		t.Errorf("PC = %#04x, want 0x8001 (IRQ should have been masked)", c.PC)
	}
}

func TestAddStallConsumedBeforeNextInstruction(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xEA)
	c.AddStall(513)

	if cycles := c.Step(); cycles != 513 {
		t.Errorf("stall step returned %d cycles, want 513", cycles)
	}
	if c.PC != 0x8000 {
		t.Error("PC should not advance during a stall-only step")
	}
	// next step actually executes the NOP
	if cycles := c.Step(); cycles != 2 {
		t.Errorf("post-stall step cost %d cycles, want 2", cycles)
	}
}

func TestUnofficialSAXWritesAccAndXOnce(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0x87, 0x10) // SAX $10
	c.A = 0b1100_1100
	c.X = 0b1010_1010

	c.Step()
	if got := bus.mem[0x10]; got != 0b1000_1000 {
		t.Errorf("SAX wrote %#08b, want %#08b", got, 0b1000_1000)
	}
}

func TestUnofficialLAXLoadsBothAccAndX(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0xA7, 0x10)
	bus.mem[0x10] = 0x42

	c.Step()
	if c.A != 0x42 || c.X != 0x42 {
		t.Errorf("LAX: A=%#02x X=%#02x, want both 0x42", c.A, c.X)
	}
}

func TestADCSetsOverflowOnSignedWrap(t *testing.T) {
	c, bus := newTestCPU()
	load(c, bus, 0x69, 0x01) // ADC #$01
	c.A = 0x7F               // +1 overflows into negative range
	c.flagC = false

	c.Step()
	if c.A != 0x80 {
		t.Errorf("A = %#02x, want 0x80", c.A)
	}
	if !c.flagV {
		t.Error("V flag not set on signed overflow")
	}
	if !c.flagN {
		t.Error("N flag not set for 0x80 result")
	}
}
