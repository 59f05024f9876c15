package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/courtside/racketops/cmd/tui/internal/view"
	"github.com/courtside/racketops/internal/advice"
	"github.com/courtside/racketops/internal/config"
	"github.com/courtside/racketops/internal/database"
	"github.com/courtside/racketops/internal/export"
	"github.com/courtside/racketops/internal/operations"
	"github.com/courtside/racketops/internal/operations/store"
)

type model struct {
	opsService    *operations.Service
	exportService *export.Service

	currentView View

	opsView    view.OperationsModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewOps    View = 1
	ViewExport View = 2
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	db, err := database.New(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	opsSvc := operations.NewService(
		store.NewOrders(db),
		store.NewRentals(db),
		store.NewApplications(db),
		store.NewUsers(db),
		advice.NewService().Next,
	)
	opsSvc.SetFetchLimit(int64(cfg.Ops.FetchLimit))
	expSvc := export.NewService(opsSvc)

	return model{
		opsService:    opsSvc,
		exportService: expSvc,
		currentView:   ViewMenu,
		opsView:       view.NewOperationsModel(opsSvc),
		exportView:    view.NewExportModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewOps
				m.opsView = view.NewOperationsModel(m.opsService)

				return m, m.opsView.Init()
			case "2":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewOps:
		var newModel tea.Model
		newModel, cmd = m.opsView.Update(msg)
		m.opsView = newModel.(view.OperationsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"RacketOps TUI\n\n" +
				"1. Browse Operations\n" +
				"2. Export Operations\n\n" +
				"q. Quit",
		)
	case ViewOps:
		return m.opsView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
