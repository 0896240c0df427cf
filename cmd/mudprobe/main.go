// Command mudprobe is a terminal dashboard for watching what MUD clients
// negotiate. It listens for telnet connections, runs the full capability
// discovery against each one, and shows the results in a live table: point
// your client at it and see exactly what it admits to supporting.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mudforge/telnet"
	"github.com/mudforge/telnet/utils"
	"github.com/mudforge/telnet/wire"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	port := flag.Int("port", 4040, "TCP port to listen on (env: MUDPROBE_PORT)")
	logPath := flag.String("log", "mudprobe.log", "Debug log file; the terminal itself is the UI")
	flag.Parse()

	if envPort := os.Getenv("MUDPROBE_PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			*port = p
		}
	}

	logger, closer, err := utils.NewFileDebugLogger(*logPath, slog.LevelDebug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not open log file:", err)
		os.Exit(1)
	}
	defer closer.Close()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not listen:", err)
		os.Exit(1)
	}
	defer listener.Close()

	program := tea.NewProgram(newModel(*port), tea.WithAltScreen())

	go acceptLoop(listener, program, logger)

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// clientUpdateMsg carries a fresh capability snapshot for one connection.
// Snapshots are values, so sending them across goroutines is safe.
type clientUpdateMsg struct {
	id      int
	addr    string
	caps    telnet.ClientCapabilities
	pending int
}

// clientLeftMsg reports a closed connection.
type clientLeftMsg struct {
	id int
}

func acceptLoop(listener net.Listener, program *tea.Program, logger *slog.Logger) {
	nextID := 1

	for {
		conn, err := listener.Accept()
		if err != nil {
			logger.Error("accept failed", "error", err)
			return
		}

		go probeConnection(nextID, conn, program, logger)
		nextID++
	}
}

// probeConnection negotiates with one client and streams snapshots to the
// UI. The session never leaves this goroutine.
func probeConnection(id int, conn net.Conn, program *tea.Program, logger *slog.Logger) {
	defer conn.Close()
	defer program.Send(clientLeftMsg{id: id})

	addr := conn.RemoteAddr().String()
	logger.Info("client connected", "id", id, "remote", addr)

	debug := utils.NewDebugLog(logger.With("id", id), utils.DebugLogConfig{
		ErrorLevel:         slog.LevelError,
		InboundEventLevel:  slog.LevelDebug,
		OutboundEventLevel: slog.LevelDebug,
		CapabilityLevel:    slog.LevelInfo,
	})

	session := telnet.NewSession(telnet.SessionConfig{
		ServerStatus: map[string]string{"NAME": "mudprobe"},
	})
	decoder := wire.NewDecoder(conn)
	encoder := wire.NewEncoder(conn)

	report := func() {
		program.Send(clientUpdateMsg{
			id:      id,
			addr:    addr,
			caps:    session.Capabilities(),
			pending: session.PendingNegotiations(),
		})
	}

	flush := func() error {
		drained := session.DrainEvents()
		if len(drained) == 0 {
			return nil
		}

		debug.LogOutbound(drained)
		return encoder.WriteEvents(drained)
	}

	session.Start()
	session.SendLine("mudprobe is reading your client's capabilities. Leave this window open.")
	if err := flush(); err != nil {
		debug.LogError(err)
		return
	}

	report()

	for {
		event, err := decoder.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				debug.LogError(err)
			}

			logger.Info("client disconnected", "id", id)
			return
		}

		debug.LogInbound(event)

		changed := false
		switch typed := event.(type) {
		case telnet.NegotiationEvent:
			changed = session.ReceiveNegotiate(typed.Command, typed.Option)
		case telnet.SubnegotiationEvent:
			changed = session.ReceiveSubnegotiation(typed.Option, typed.Payload)
		case telnet.DataEvent:
			// A probe has nothing to say back
		}

		if changed {
			debug.LogCapabilities(session.Capabilities())
		}

		if err := flush(); err != nil {
			debug.LogError(err)
			return
		}

		report()
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

type model struct {
	port    int
	width   int
	height  int
	table   table.Model
	clients map[int]clientUpdateMsg
}

func newModel(port int) model {
	columns := []table.Column{
		{Title: "Remote", Width: 22},
		{Title: "Client", Width: 14},
		{Title: "Version", Width: 10},
		{Title: "Color", Width: 10},
		{Title: "Window", Width: 9},
		{Title: "Encoding", Width: 8},
		{Title: "Reader", Width: 6},
		{Title: "Pending", Width: 7},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(ts)

	return model{
		port:    port,
		table:   t,
		clients: make(map[int]clientUpdateMsg),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 5; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case clientUpdateMsg:
		m.clients[msg.id] = msg
		m.refreshRows()
		return m, nil

	case clientLeftMsg:
		delete(m.clients, msg.id)
		m.refreshRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) refreshRows() {
	ids := make([]int, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		client := m.clients[id]

		reader := ""
		if client.caps.ScreenReader {
			reader = "yes"
		}

		rows = append(rows, table.Row{
			client.addr,
			client.caps.ClientName,
			client.caps.ClientVersion,
			client.caps.Color.String(),
			fmt.Sprintf("%dx%d", client.caps.Width, client.caps.Height),
			client.caps.Encoding,
			reader,
			strconv.Itoa(client.pending),
		})
	}

	m.table.SetRows(rows)
}

func (m model) View() string {
	title := titleStyle.Render(fmt.Sprintf("mudprobe on :%d", m.port))
	footer := footerStyle.Render(fmt.Sprintf("%d connected | q to quit", len(m.clients)))

	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View(), footer)
}
