package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mrz1836/tempo/internal/domain"
	"github.com/mrz1836/tempo/internal/errors"
)

// RemainingMsg carries an updated remaining time to the lock screen model.
type RemainingMsg time.Duration

// lockKeyEnd is the key that requests an early end of the focus session.
const lockKeyEnd = "e"

// LockScreen is the full-screen terminal lock surface. It renders the task
// title, a countdown, and a progress bar in the alternate screen buffer so
// the user's shell content stays intact underneath.
//
// The end-focus key does not tear the screen down directly; it invokes the
// injected stop request and the screen comes down when the session controller
// calls Hide. This keeps the surface a display, never an owner of session
// state.
type LockScreen struct {
	// requestStop is invoked when the user presses the end-focus key.
	requestStop func()

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewLockScreen creates a lock screen. requestStop is called on the end-focus
// key; pass the session controller's Stop.
func NewLockScreen(requestStop func()) *LockScreen {
	if requestStop == nil {
		requestStop = func() {}
	}
	return &LockScreen{requestStop: requestStop}
}

// Show draws the lock screen with the given content. It fails with a wrapped
// ErrResourceUnavailable when stdout is not a terminal; the caller degrades
// from there.
func (s *LockScreen) Show(ctx context.Context, content domain.SurfaceContent) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: stdout is not a terminal", errors.ErrResourceUnavailable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return fmt.Errorf("%w: lock surface already shown", errors.ErrResourceUnavailable)
	}

	model := newLockModel(content, s.requestStop)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	s.program = p
	s.done = done
	return nil
}

// Update refreshes the remaining-time display. Ignored after Hide.
func (s *LockScreen) Update(remaining time.Duration) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()

	if p != nil {
		p.Send(RemainingMsg(remaining))
	}
}

// Hide tears the lock screen down. Safe to call at any time, any number of
// times, including when Show failed.
func (s *LockScreen) Hide() {
	s.mu.Lock()
	p := s.program
	done := s.done
	s.program = nil
	s.done = nil
	s.mu.Unlock()

	if p == nil {
		return
	}
	p.Quit()
	<-done
}

// lockModel is the Bubble Tea model behind the lock screen.
// It implements tea.Model interface (Init, Update, View).
type lockModel struct {
	content     domain.SurfaceContent
	remaining   time.Duration
	bar         progress.Model
	requestStop func()
	// Terminal dimensions
	width, height int
}

// newLockModel creates the model with initial content.
func newLockModel(content domain.SurfaceContent, requestStop func()) *lockModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	return &lockModel{
		content:     content,
		remaining:   content.Remaining,
		bar:         bar,
		requestStop: requestStop,
		width:       80,
		height:      24,
	}
}

// Init returns no initial command; all updates arrive from the session
// controller via program.Send.
func (m *lockModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model and any commands.
func (m *lockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case lockKeyEnd, "ctrl+c":
			// Hand control back to the session; the screen stays up
			// until the controller tears it down.
			m.requestStop()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(m.width-8, 60)
		return m, nil

	case RemainingMsg:
		m.remaining = time.Duration(msg)
		return m, nil
	}

	return m, nil
}

// View renders the lock screen centered in the terminal.
func (m *lockModel) View() string {
	var b strings.Builder

	b.WriteString(StyleFocusBanner.Render("● FOCUS"))
	b.WriteString("\n\n")
	b.WriteString(StyleBold.Render(m.content.Title))
	b.WriteString("\n\n")
	b.WriteString(StyleCountdown.Render(FormatCountdown(m.remaining)))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.progressFraction()))
	b.WriteString("\n\n")
	b.WriteString(StyleHint.Render(fmt.Sprintf("press '%s' to end focus", lockKeyEnd)))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Align(lipgloss.Center).Render(b.String()))
}

// progressFraction returns elapsed progress in [0, 1].
func (m *lockModel) progressFraction() float64 {
	if m.content.Total <= 0 {
		return 0
	}
	elapsed := m.content.Total - m.remaining
	if elapsed < 0 {
		elapsed = 0
	}
	f := float64(elapsed) / float64(m.content.Total)
	if f > 1 {
		f = 1
	}
	return f
}
