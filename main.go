package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fportier/upnext/internal/browse"
	"github.com/fportier/upnext/internal/config"
	"github.com/fportier/upnext/internal/errmsg"
	"github.com/fportier/upnext/internal/player"
	"github.com/fportier/upnext/internal/queue"
	"github.com/fportier/upnext/internal/session"
	"github.com/fportier/upnext/internal/state"
	"github.com/fportier/upnext/internal/ui/queuepanel"
)

var statusStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("203"))

const statusBarHeight = 1

// demoCatalog is the built-in library served by the manual transport
// build: enough tracks to exercise play-next, append and continuation
// refills without an audio backend.
var demoCatalog = []queue.Track{
	{MediaID: "demo-01", Title: "Night Drive", Artist: "Mirror Lake", Duration: 4*time.Minute + 12*time.Second},
	{MediaID: "demo-02", Title: "Glass Shore", Artist: "Mirror Lake", Duration: 3*time.Minute + 48*time.Second},
	{MediaID: "demo-03", Title: "Low Orbit", Artist: "Paper Satellites", Duration: 5*time.Minute + 2*time.Second},
	{MediaID: "demo-04", Title: "Afterimage", Artist: "Paper Satellites", Duration: 3*time.Minute + 21*time.Second},
	{MediaID: "demo-05", Title: "Harbor Lights", Artist: "June Atlas", Duration: 4*time.Minute + 40*time.Second},
	{MediaID: "demo-06", Title: "Slow Signal", Artist: "June Atlas", Duration: 2*time.Minute + 58*time.Second},
	{MediaID: "demo-07", Title: "Cold Static", Artist: "Vellum", Duration: 6*time.Minute + 5*time.Second},
	{MediaID: "demo-08", Title: "Overcast", Artist: "Vellum", Duration: 3*time.Minute + 33*time.Second},
	{MediaID: "demo-09", Title: "Salt Flats", Artist: "Vellum", Duration: 4*time.Minute + 17*time.Second},
	{MediaID: "demo-10", Title: "Meridian", Artist: "Mirror Lake", Duration: 5*time.Minute + 26*time.Second},
	{MediaID: "demo-11", Title: "Quiet Machines", Artist: "Paper Satellites", Duration: 3*time.Minute + 9*time.Second},
	{MediaID: "demo-12", Title: "Last Ferry", Artist: "June Atlas", Duration: 4*time.Minute + 51*time.Second},
}

var demoContext = queue.Context{Type: queue.ContextPlaylist, ID: "demo", Name: "Demo Mix"}

type errEventMsg session.ErrorEvent

type subClosedMsg struct{}

type model struct {
	panel     queuepanel.Model
	svc       session.Service
	transport *player.Manual
	stateMgr  *state.Manager
	sub       *session.Subscription

	status string
	width  int
	height int
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	var stateMgr *state.Manager
	if cfg.StateDB != "" {
		stateMgr, err = state.OpenPath(cfg.StateDB)
	} else {
		stateMgr, err = state.Open()
	}
	if err != nil {
		return model{}, err
	}

	store := queue.NewStore()
	saved, err := stateMgr.GetQueue()
	if err != nil {
		stateMgr.Close()
		return model{}, fmt.Errorf("load saved queue: %w", err)
	}
	if saved != nil {
		store.Restore(saved.Items, saved.HasCurrent, saved.Context)
	}

	refill := cfg.GetRefillConfig()
	transport := player.NewManual()
	source := browse.NewStatic(demoCatalog, refill.BatchSize)
	svc := session.New(store, transport, source, session.Options{
		RefillLowWater: refill.LowWater,
	})

	// Fresh install: start the demo context so there is something to play.
	if store.IsEmpty() {
		seed := refill.BatchSize
		if seed > len(demoCatalog) {
			seed = len(demoCatalog)
		}
		if err := svc.SetContext(demoContext, demoCatalog[:seed]); err != nil {
			svc.Close()
			stateMgr.Close()
			return model{}, err
		}
	}

	m := model{
		panel:     queuepanel.New(svc),
		svc:       svc,
		transport: transport,
		stateMgr:  stateMgr,
		sub:       svc.Subscribe(),
	}
	m.panel.SetFocused(true)
	return m, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.sub), waitForError(m.sub))
}

func waitForSnapshot(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-sub.Updates:
			return queuepanel.SnapshotMsg{Snap: snap}
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func waitForError(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.Errors:
			return errEventMsg(e)
		case <-sub.Done:
			return subClosedMsg{}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.panel.SetSize(msg.Width, msg.Height-statusBarHeight)
		return m, nil

	case queuepanel.SnapshotMsg:
		m.stateMgr.SaveQueue(msg.Snap)
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return m, tea.Batch(cmd, waitForSnapshot(m.sub))

	case queuepanel.CommandErrorMsg:
		m.status = errmsg.Format(msg.Op, msg.Err)
		return m, nil

	case errEventMsg:
		m.status = formatEvent(session.ErrorEvent(msg))
		return m, waitForError(m.sub)

	case subClosedMsg:
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, m.quit()
		case "n":
			m.transport.AdvanceNext()
			return m, nil
		case "p":
			return m, m.queueDemoTrack(true)
		case "a":
			return m, m.queueDemoTrack(false)
		}
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

// queueDemoTrack picks the first catalog track not already queued and
// queues it, to play next or at the end of the user queue.
func (m model) queueDemoTrack(next bool) tea.Cmd {
	queued := make(map[string]struct{})
	for _, it := range m.svc.QueueSnapshot().Items {
		queued[it.MediaID] = struct{}{}
	}

	svc := m.svc
	return func() tea.Msg {
		for _, tr := range demoCatalog {
			if _, ok := queued[tr.MediaID]; ok {
				continue
			}
			if next {
				if err := svc.PlayNext([]queue.Track{tr}, &demoContext); err != nil {
					return queuepanel.CommandErrorMsg{Op: errmsg.OpPlayNext, Err: err}
				}
			} else {
				if err := svc.AddToQueue([]queue.Track{tr}); err != nil {
					return queuepanel.CommandErrorMsg{Op: errmsg.OpQueueAdd, Err: err}
				}
			}
			return nil
		}
		return nil
	}
}

func (m model) quit() tea.Cmd {
	snap := m.svc.QueueSnapshot()
	m.svc.Close()
	m.transport.Close()
	if err := m.stateMgr.SaveQueueNow(snap); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpQueueSave, err))
	}
	m.stateMgr.Close()
	return tea.Quit
}

func formatEvent(e session.ErrorEvent) string {
	switch e.Operation {
	case "push timeline":
		return errmsg.Format(errmsg.OpTimelinePush, e.Err)
	case "fetch continuation":
		return errmsg.Format(errmsg.OpContextFetch, e.Err)
	default:
		return errmsg.Format(errmsg.Op(e.Operation), e.Err)
	}
}

func (m model) View() string {
	status := m.status
	if status == "" {
		status = "n: next · p: play next · a: add to queue · space: grab/drop · q: quit"
	}
	return m.panel.View() + "\n" + statusStyle.Render(status)
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
