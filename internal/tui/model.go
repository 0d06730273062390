// Package tui renders the interactive marking session. It is a thin shell:
// every cycle of the bubbletea loop maps onto one cycle of the playback
// controller (advance, dispatch input, poll encode jobs), so all marking and
// job semantics stay in internal/session.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/servecut/servecut/internal/encode"
	"github.com/servecut/servecut/internal/session"
)

const noteHistory = 6

type tickMsg time.Time

type drainedMsg struct {
	results []encode.Result
}

// Model drives one marking session.
type Model struct {
	ctrl  *session.Controller
	title string

	keys keyMap
	help help.Model

	notes    []string
	width    int
	draining bool
}

// New returns a Model for the given controller. title is shown in the
// header, typically the source filename.
func New(ctrl *session.Controller, title string) Model {
	return Model{
		ctrl:  ctrl,
		title: title,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.ctrl.FrameDelay(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.draining {
			return m, nil
		}
		return m.handleKey(msg)

	case tickMsg:
		if m.draining {
			return m, nil
		}
		// One playback cycle: lapse fast mode, advance, harvest jobs.
		m.ctrl.Handle(session.EventNone)
		m.ctrl.Advance()
		m.harvest(m.ctrl.PollJobs())
		return m, m.tick()

	case drainedMsg:
		m.harvest(msg.results)
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.draining = true
		ctrl := m.ctrl
		// The tick loop is parked while draining, so the controller has
		// exactly one caller.
		return m, func() tea.Msg {
			return drainedMsg{results: ctrl.Drain()}
		}

	case key.Matches(msg, m.keys.MarkStart):
		m.pushNote(m.ctrl.Handle(session.EventMarkStart))
	case key.Matches(msg, m.keys.MarkEnd):
		m.pushNote(m.ctrl.Handle(session.EventMarkEnd))
	case key.Matches(msg, m.keys.Delete):
		m.pushNote(m.ctrl.Handle(session.EventDeleteLast))
	case key.Matches(msg, m.keys.Back):
		m.pushNote(m.ctrl.Handle(session.EventSeekBack))
	case key.Matches(msg, m.keys.Fast):
		m.ctrl.Handle(session.EventFast)
	}
	return m, nil
}

func (m *Model) harvest(results []encode.Result) {
	for _, res := range results {
		if res.Err != nil {
			m.pushNote(fmt.Sprintf("encode failed for segment %03d: %v", res.Job.Segment.ServeID, res.Err))
			continue
		}
		m.pushNote(fmt.Sprintf("segment %03d encoded in %.1fs", res.Job.Segment.ServeID, res.Elapsed.Seconds()))
	}
}

func (m *Model) pushNote(note string) {
	if note == "" {
		return
	}
	m.notes = append(m.notes, note)
	if len(m.notes) > noteHistory {
		m.notes = m.notes[len(m.notes)-noteHistory:]
	}
}
