package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/courtside/racketops/internal/operations"
)

type opsState int

const (
	opsStateFilter opsState = iota
	opsStateList
	opsStateDetail
)

// opsItem wraps an operation item to implement list.Item.
type opsItem struct {
	op *operations.OperationItem
}

func (i opsItem) Title() string {
	kind := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.op.Kind))

	warn := ""
	if i.op.Warn {
		warn = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(" !")
	}

	return fmt.Sprintf("%s  %s  %s  %s%s",
		FormatDate(i.op.CreatedAt), FormatAmount(i.op.Amount), kind, i.op.Title, warn)
}

func (i opsItem) Description() string {
	parts := []string{i.op.Customer.Name, i.op.PaymentLabel}
	if i.op.NextAction != "" {
		parts = append(parts, "next: "+i.op.NextAction)
	}

	return strings.Join(parts, "  |  ")
}

func (i opsItem) FilterValue() string {
	return i.op.Title + " " + i.op.Customer.Name
}

type OperationsModel struct {
	CommonModel
	opsService *operations.Service

	state opsState
	list  list.Model
	form  *huh.Form
	items []*operations.OperationItem

	selected *operations.OperationItem
	loading  bool
	status   string

	// Form field bindings
	formKind string
	formWarn bool
	formQ    string
}

func NewOperationsModel(opsSvc *operations.Service) OperationsModel {
	l := list.New([]list.Item{}, opsItemDelegate{}, 0, 0)
	l.Title = "Operations"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	m := OperationsModel{
		opsService: opsSvc,
		list:       l,
		formKind:   string(operations.KindAll),
	}
	m.form = m.newFilterForm()

	return m
}

func (m OperationsModel) newFilterForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("kind").
				Title("Record kind").
				Options(
					huh.NewOption("All", string(operations.KindAll)),
					huh.NewOption("Orders", string(operations.KindOrder)),
					huh.NewOption("Rentals", string(operations.KindRental)),
					huh.NewOption("Stringing applications", string(operations.KindApplication)),
				).
				Value(&m.formKind),

			huh.NewInput().
				Key("query").
				Title("Search (optional)").
				Placeholder("id, customer, email, title").
				Value(&m.formQ),

			huh.NewConfirm().
				Key("warn").
				Title("Only groups with warnings?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formWarn),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m OperationsModel) Title() string { return "Browse Operations" }

func (m OperationsModel) ShortHelp() string {
	switch m.state {
	case opsStateFilter:
		return "Esc: back | Enter/Tab: navigate form"
	case opsStateList:
		return "Esc: back | Enter: details | /: filter"
	case opsStateDetail:
		return "Esc: back to list"
	}

	return ""
}

func (m OperationsModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m OperationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOpsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.items = msg.items
		m.refreshListItems()

		m.status = fmt.Sprintf("%d of %d shown", len(msg.items), msg.total)
		if len(msg.items) == 0 {
			m.status = "No operations found."
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case opsStateFilter:
		return m.updateFilter(msg)
	case opsStateList:
		return m.updateList(msg)
	case opsStateDetail:
		return m.updateDetail(msg)
	}

	return m, nil
}

func (m OperationsModel) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.formKind = m.form.GetString("kind")
	m.formQ = m.form.GetString("query")
	m.formWarn = m.form.GetBool("warn")
	m.loading = true
	m.state = opsStateList

	return m, m.loadOpsCmd()
}

func (m OperationsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			if m.list.FilterState() == list.Filtering {
				break // let the list handle it (close filter)
			}

			return m, Back
		case tea.KeyEnter:
			if m.list.FilterState() == list.Filtering {
				break // let the list handle it (confirm filter)
			}

			if selected, ok := m.list.SelectedItem().(opsItem); ok {
				m.selected = selected.op
				m.state = opsStateDetail
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m OperationsModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc || keyMsg.Type == tea.KeyEnter {
			m.state = opsStateList
			m.selected = nil

			return m, nil
		}
	}

	return m, nil
}

func (m OperationsModel) View() string {
	switch m.state {
	case opsStateFilter:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case opsStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading operations...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case opsStateDetail:
		return lipgloss.NewStyle().Padding(1).Render(m.detailView())
	}

	return ""
}

func (m OperationsModel) detailView() string {
	op := m.selected
	if op == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", op.Kind, op.ID)
	fmt.Fprintf(&b, "Created: %s\n", FormatDate(op.CreatedAt))
	fmt.Fprintf(&b, "Customer: %s  %s\n", op.Customer.Name, op.Customer.Email)
	fmt.Fprintf(&b, "Status: %s  Payment: %s\n", op.StatusLabel, op.PaymentLabel)
	fmt.Fprintf(&b, "Amount: %s\n", FormatAmount(op.Amount))

	if op.AmountNote != "" {
		fmt.Fprintf(&b, "Note: %s\n", op.AmountNote)
	}

	fmt.Fprintf(&b, "Flow: %d  Settles on: %s\n", op.Flow, op.SettlementAnchor)

	if op.Related != nil {
		fmt.Fprintf(&b, "Linked %s: %s\n", op.Related.Kind, op.Related.ID)
	}

	if op.Stringing != nil {
		fmt.Fprintf(&b, "Stringing: %s @ %s\n", op.Stringing.StringName, op.Stringing.Tension)
	}

	for _, w := range op.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}

	for _, p := range op.Pendings {
		fmt.Fprintf(&b, "Pending: %s\n", p)
	}

	if op.NextAction != "" {
		fmt.Fprintf(&b, "Next action: %s\n", op.NextAction)
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m *OperationsModel) refreshListItems() {
	items := make([]list.Item, len(m.items))
	for i, op := range m.items {
		items[i] = opsItem{op: op}
	}

	m.list.SetItems(items)
}

// Messages

type loadOpsMsg struct {
	items []*operations.OperationItem
	total int
	err   error
}

func (m OperationsModel) loadOpsCmd() tea.Cmd {
	q := operations.ListQuery{
		Page:     1,
		PageSize: 200,
		Kind:     operations.Kind(m.formKind),
		Query:    m.formQ,
		WarnOnly: m.formWarn,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.opsService.List(ctx, q)
		if err != nil {
			return loadOpsMsg{err: err}
		}

		return loadOpsMsg{items: res.Items, total: res.Total}
	}
}

// opsItemDelegate renders items in the list.
type opsItemDelegate struct{}

func (d opsItemDelegate) Height() int                             { return 2 }
func (d opsItemDelegate) Spacing() int                            { return 0 }
func (d opsItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d opsItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(opsItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	title := i.Title()
	desc := i.Description()

	if isSelected {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}
