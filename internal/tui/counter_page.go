package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
	"github.com/tinytelemetry/starboard/internal/stars"
)

// CounterPageConfig configures a CounterPage. Zero durations use the
// defaults from the model package.
type CounterPageConfig struct {
	Fetcher  stars.Fetcher
	Repo     string
	Interval time.Duration
	Timeout  time.Duration
	Branding model.Branding
	Now      func() time.Time
}

// CounterPage polls the star count and renders it as a strip of animated
// digit tiles between the branding and the footer link.
type CounterPage struct {
	fetcher  stars.Fetcher
	repo     string
	interval time.Duration
	timeout  time.Duration
	branding model.Branding
	keys     KeyMap
	now      func() time.Time

	// state is only written by applyCount.
	state counter.State
	tiles []tile

	seq    stars.Sequencer
	ctx    context.Context
	cancel context.CancelFunc

	// frame loops currently scheduled
	animating bool
	spinning  bool
}

// NewCounterPage creates the page. It starts polling on Init.
func NewCounterPage(cfg CounterPageConfig) *CounterPage {
	if cfg.Interval <= 0 {
		cfg.Interval = model.DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = model.DefaultRequestTimeout
	}
	if cfg.Branding.Title == "" {
		cfg.Branding = model.DefaultBranding()
	}
	if cfg.Repo == "" {
		cfg.Repo = model.DefaultRepo
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &CounterPage{
		fetcher:  cfg.Fetcher,
		repo:     cfg.Repo,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		branding: cfg.Branding,
		keys:     DefaultKeyMap(),
		now:      cfg.Now,
		tiles:    staticTiles(counter.View(counter.State{})),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the counter state held by the page.
func (p *CounterPage) State() counter.State {
	return p.state
}

// Digits returns the currently derived tile views.
func (p *CounterPage) Digits() []counter.DigitView {
	return counter.View(p.state)
}

// Init fetches immediately and schedules the first tick.
func (p *CounterPage) Init() tea.Cmd {
	return tea.Batch(p.fetchCmd(), p.scheduleTick(), p.startSpinner())
}

// Close cancels the in-flight request and stops polling.
func (p *CounterPage) Close() {
	p.seq.Stop()
	p.cancel()
}

func (p *CounterPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Quit) || key.Matches(msg, p.keys.ForceQuit) {
			p.Close()
			return tea.Quit
		}
		return nil

	case TickMsg:
		if p.seq.Stopped() {
			return nil
		}
		// A slow request keeps running until its own timeout; the tick
		// only reschedules.
		if p.seq.InFlight() {
			return p.scheduleTick()
		}
		return tea.Batch(p.fetchCmd(), p.scheduleTick(), p.startSpinner())

	case countLoadedMsg:
		if !p.seq.Accept(msg.seq) {
			return nil
		}
		if msg.err != nil {
			log.Printf("stars: fetch failed: %v", msg.err)
			return nil
		}
		return p.applyCount(msg.count)

	case AnimFrameMsg:
		now := p.now()
		for i := range p.tiles {
			p.tiles[i].settle(now)
		}
		if p.anyTileAnimating(now) {
			return animFrame()
		}
		p.animating = false
		return nil

	case SpinnerTickMsg:
		if p.seq.InFlight() {
			return spinnerTick()
		}
		p.spinning = false
		return nil
	}

	return nil
}

// applyCount records a fetched value and starts tile transitions for every
// position whose digit changed.
func (p *CounterPage) applyCount(n int64) tea.Cmd {
	next, changed := p.state.Apply(n)
	if !changed {
		return nil
	}
	p.state = next
	p.tiles = syncTiles(p.tiles, counter.View(p.state), p.now())

	if p.animating {
		return nil
	}
	p.animating = true
	return animFrame()
}

// fetchCmd starts a new request, superseding any that is still running.
func (p *CounterPage) fetchCmd() tea.Cmd {
	if p.fetcher == nil {
		return nil
	}
	seq, ctx, ok := p.seq.Begin(p.ctx)
	if !ok {
		return nil
	}
	fetcher := p.fetcher
	timeout := p.timeout

	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		n, err := fetcher.FetchCount(reqCtx)
		return countLoadedMsg{seq: seq, count: n, err: err}
	}
}

func (p *CounterPage) scheduleTick() tea.Cmd {
	return tea.Tick(p.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (p *CounterPage) startSpinner() tea.Cmd {
	if p.spinning {
		return nil
	}
	p.spinning = true
	return spinnerTick()
}

func animFrame() tea.Cmd {
	return tea.Tick(animFrameInterval, func(t time.Time) tea.Msg {
		return AnimFrameMsg(t)
	})
}

func (p *CounterPage) anyTileAnimating(now time.Time) bool {
	for i := range p.tiles {
		if p.tiles[i].animating(now) {
			return true
		}
	}
	return false
}

// View renders the page centered in width x height.
func (p *CounterPage) View(width, height int) string {
	now := p.now()

	body := lipgloss.JoinVertical(lipgloss.Center,
		renderEmblem(),
		"",
		renderTitle(p.branding.Title),
		"",
		renderStrip(p.tiles, now),
		"",
		renderFooterLink(p.branding.LinkURL, p.branding.LinkText),
	)

	if width <= 0 || height <= 0 {
		return body
	}

	status := p.renderStatusLine(width, now)
	bodyHeight := height - lipgloss.Height(status)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	placed := lipgloss.Place(width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, placed, status)
}

// renderStatusLine renders the repository, key help and poll state.
func (p *CounterPage) renderStatusLine(w int, now time.Time) string {
	baseStyle := lipgloss.NewStyle().
		Background(ColorNavy).
		Foreground(ColorWhite)

	leftText := fmt.Sprintf("[%s]", p.repo)

	var help []string
	for _, b := range p.keys.ShortHelp() {
		h := b.Help()
		help = append(help, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	centerText := strings.Join(help, " • ")

	rightText := fmt.Sprintf("Update: %s", p.interval)
	if p.seq.InFlight() {
		rightText = renderSpinner(now) + baseStyle.Render(" "+rightText)
	}

	if w < 40 {
		return baseStyle.Width(w).Render(leftText)
	}

	leftWidth := lipgloss.Width(leftText) + 2
	rightWidth := lipgloss.Width(rightText) + 2
	centerWidth := w - leftWidth - rightWidth
	if centerWidth < 0 {
		centerWidth = 0
	}

	leftPart := baseStyle.Align(lipgloss.Left).Width(leftWidth).Render(leftText)
	centerPart := baseStyle.Align(lipgloss.Center).Width(centerWidth).Render(centerText)
	rightPart := baseStyle.Align(lipgloss.Right).Width(rightWidth).Render(rightText)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPart, centerPart, rightPart)
}
