// Command nesdbg is an interactive single-step/breakpoint debugger for
// the emulation core, built the way hejops-gone/cpu/debugger.go builds
// its bubbletea model: step/run key handlers, a lipgloss-styled view,
// and go-spew for a raw state dump.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/hallowell/nesgo/console"
)

var (
	romFile = flag.String("rom", "", "Path to NES ROM to debug.")
	pcFlag  = flag.String("pc", "", "Override the program counter (hex) before starting.")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	paneStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
)

type model struct {
	nes     *console.Console
	breaks  map[uint16]struct{}
	dump    bool
	lastErr error

	memLow, memHigh uint16
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "s":
			m.nes.Step()

		case "r":
			for i := 0; i < 1_000_000; i++ {
				m.nes.Step()
				if _, hit := m.breaks[m.nes.CPU().PC]; hit {
					break
				}
			}

		case "e":
			m.nes.Reset()

		case "b":
			m.breaks[m.nes.CPU().PC] = struct{}{}

		case "c":
			m.breaks = make(map[uint16]struct{})

		case "d":
			m.dump = !m.dump
		}
	}
	return m, nil
}

func (m model) registers() string {
	c := m.nes.CPU()
	return fmt.Sprintf(
		"PC: %04x\nA:  %02x\nX:  %02x\nY:  %02x\nSP: %02x\nP:  %02x\ncyc: %d",
		c.PC, c.A, c.X, c.Y, c.SP, c.Status(), c.Cycles,
	)
}

func (m model) memoryPane() string {
	var sb strings.Builder
	i := m.memLow
	col := 0
	for {
		if col == 0 {
			fmt.Fprintf(&sb, "%04x | ", i)
		}
		fmt.Fprintf(&sb, "%02x ", m.nes.Read(i))
		col++
		if col == 8 {
			sb.WriteByte('\n')
			col = 0
		}
		if i == m.memHigh {
			break
		}
		i++
	}
	return sb.String()
}

func (m model) breakList() string {
	if len(m.breaks) == 0 {
		return "(none)"
	}
	var addrs []string
	for a := range m.breaks {
		addrs = append(addrs, fmt.Sprintf("%04x", a))
	}
	return strings.Join(addrs, " ")
}

func (m model) View() string {
	top := lipgloss.JoinHorizontal(
		lipgloss.Top,
		paneStyle.Render(headerStyle.Render("registers")+"\n"+m.registers()),
		paneStyle.Render(headerStyle.Render("breakpoints")+"\n"+m.breakList()),
	)
	mem := paneStyle.Render(headerStyle.Render("memory 0x"+fmt.Sprintf("%04x", m.memLow)) + "\n" + m.memoryPane())

	help := "s: step  r: run to breakpoint  b: set breakpoint at PC  c: clear breakpoints  e: reset  d: toggle dump  q: quit"

	view := lipgloss.JoinVertical(lipgloss.Left, top, mem, help)
	if m.dump {
		view = lipgloss.JoinVertical(lipgloss.Left, view, spew.Sdump(m.nes.CPU()))
	}
	return view
}

func main() {
	flag.Parse()

	f, err := os.Open(*romFile)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}
	defer f.Close()

	nes, err := console.New(f)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}
	nes.Reset()

	if *pcFlag != "" {
		pc, err := strconv.ParseUint(*pcFlag, 16, 16)
		if err != nil {
			log.Fatalf("Invalid -pc: %v", err)
		}
		nes.CPU().PC = uint16(pc)
	}

	m := model{
		nes:     nes,
		breaks:  make(map[uint16]struct{}),
		memLow:  0x0000,
		memHigh: 0x00FF,
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
