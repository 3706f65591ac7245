// Package tui is the full-screen onboarding wizard. It renders a
// wizard.Controller and turns key presses into controller calls; all
// wizard state lives in the controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/storelaunch/internal/export"
	"github.com/mark3labs/storelaunch/internal/form"
	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/mark3labs/storelaunch/internal/tui/theme"
	"github.com/mark3labs/storelaunch/internal/wizard"
)

// Options configures the wizard screens.
type Options struct {
	Domain    string // base domain shown in previews
	ExportDir string // where "d" writes the configuration document
}

// App is the Bubbletea model for the onboarding wizard.
type App struct {
	ctx  context.Context
	ctrl *wizard.Controller
	opts Options

	view   wizard.View
	step   wizard.Step // step the inputs were built for
	fields []*field
	focus  int // focused field index
	cursor int // list cursor on the package and service steps

	spinner spinner.Model
	status  string // one-line feedback, e.g. the export path

	width  int
	height int
}

// New creates the wizard model for ctrl.
func New(ctx context.Context, ctrl *wizard.Controller, opts Options) *App {
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	t := theme.Current()
	a := &App{
		ctx:  ctx,
		ctrl: ctrl,
		opts: opts,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))),
		),
	}
	a.sync(ctrl.View())
	return a
}

// Run starts a full-screen program for ctrl and blocks until the user quits.
func Run(ctx context.Context, ctrl *wizard.Controller, opts Options) error {
	app := New(ctx, ctrl, opts)
	p := tea.NewProgram(app)

	stop := Bridge(ctrl, p.Send)
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	return nil
}

// Init starts the spinner animation.
func (a *App) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update handles messages for the wizard.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case ViewMsg:
		return a, a.sync(msg.View)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.view.Step {
		case wizard.StepPackage:
			return a, a.packageKey(msg.String())
		case wizard.StepServices:
			return a, a.servicesKey(msg.String())
		case wizard.StepDeploying:
			return a, a.deployingKey(msg.String())
		case wizard.StepActivation:
			return a, a.activationKey(msg.String())
		default:
			return a, a.fieldKey(msg)
		}
	}

	// Cursor blink and other input housekeeping
	if f := a.focused(); f != nil {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// refresh pulls the controller state after a call made from Update.
func (a *App) refresh() tea.Cmd {
	return a.sync(a.ctrl.View())
}

// sync adopts v, rebuilding the inputs when the step changed and otherwise
// copying any value written by another surface into them.
func (a *App) sync(v wizard.View) tea.Cmd {
	a.view = v
	if v.Step != a.step {
		return a.enterStep()
	}
	for _, f := range a.fields {
		if want := f.value(v.Form); f.input.Value() != want {
			f.input.SetValue(want)
		}
	}
	return nil
}

func (a *App) enterStep() tea.Cmd {
	a.step = a.view.Step
	a.focus = 0
	a.cursor = 0
	a.status = ""

	switch a.step {
	case wizard.StepPackage:
		for i, p := range form.Packages() {
			if p.ID == a.view.Form.Package {
				a.cursor = i
			}
		}
	case wizard.StepSubdomain:
		if a.view.Form.Subdomain == "" {
			if suggestion := form.SuggestSubdomain(a.view.Form.StoreName); suggestion != "" {
				a.ctrl.Apply(form.SetSubdomain{Value: suggestion})
				a.view = a.ctrl.View()
			}
		}
	}

	a.fields = fieldsFor(a.step, a.view.Form)
	logger.Debug("tui showing step %d (%s)", a.step, a.step.Title())
	if len(a.fields) > 0 {
		return a.fields[0].input.Focus()
	}
	return nil
}

func (a *App) next() tea.Cmd {
	a.ctrl.Next(a.ctx)
	return a.refresh()
}

func (a *App) previous() tea.Cmd {
	a.ctrl.Previous()
	return a.refresh()
}

func (a *App) moveCursor(key string, n int) bool {
	switch key {
	case "up", "k":
		a.cursor = max(a.cursor-1, 0)
	case "down", "j":
		a.cursor = min(a.cursor+1, n-1)
	default:
		return false
	}
	return true
}

func (a *App) packageKey(key string) tea.Cmd {
	packages := form.Packages()
	if a.moveCursor(key, len(packages)) {
		return nil
	}
	switch key {
	case "space":
		a.ctrl.Apply(form.SetPackage{ID: packages[a.cursor].ID})
		return a.refresh()
	case "enter":
		a.ctrl.Apply(form.SetPackage{ID: packages[a.cursor].ID})
		return a.next()
	case "esc", "q":
		return tea.Quit
	}
	return nil
}

func (a *App) servicesKey(key string) tea.Cmd {
	services := form.ServiceCatalog()
	if a.moveCursor(key, len(services)) {
		return nil
	}
	switch key {
	case "space", "x":
		a.ctrl.Apply(form.ToggleService{Service: services[a.cursor].Service})
		return a.refresh()
	case "enter":
		return a.next()
	case "esc":
		return a.previous()
	}
	return nil
}

func (a *App) fieldKey(msg tea.KeyPressMsg) tea.Cmd {
	n := len(a.fields)
	switch msg.String() {
	case "tab", "down":
		return a.focusField((a.focus + 1) % max(n, 1))
	case "shift+tab", "up":
		return a.focusField((a.focus - 1 + max(n, 1)) % max(n, 1))
	case "enter":
		if a.focus < n-1 {
			return a.focusField(a.focus + 1)
		}
		return a.next()
	case "esc":
		return a.previous()
	}

	f := a.focused()
	if f == nil {
		return nil
	}
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if after := f.input.Value(); after != before {
		a.ctrl.Apply(f.update(after))
		return tea.Batch(cmd, a.refresh())
	}
	return cmd
}

func (a *App) deployingKey(key string) tea.Cmd {
	d := a.view.Deployment
	switch key {
	case "esc":
		if d.DialogOpen {
			a.ctrl.CloseDialog()
			return a.refresh()
		}
		return a.previous()
	case "r":
		// Retry goes back through the payment gate so a fresh attempt starts.
		if !d.DialogOpen && !d.Loading && a.ctrl.Previous() {
			return a.next()
		}
	}
	return nil
}

func (a *App) activationKey(key string) tea.Cmd {
	switch key {
	case "d":
		path, err := export.Write(a.opts.ExportDir, a.view.Form, a.view.LastResult)
		if err != nil {
			logger.Error("export failed: %v", err)
			a.status = "Export failed: " + err.Error()
			return nil
		}
		a.status = "Configuration saved to " + path
		return nil
	case "r":
		if err := a.ctrl.Restart(); err != nil {
			a.status = err.Error()
			return nil
		}
		return a.refresh()
	case "q", "esc":
		return tea.Quit
	}
	return nil
}

func (a *App) focused() *field {
	if a.focus < 0 || a.focus >= len(a.fields) {
		return nil
	}
	return a.fields[a.focus]
}

func (a *App) focusField(i int) tea.Cmd {
	if len(a.fields) == 0 {
		return nil
	}
	if f := a.focused(); f != nil {
		f.input.Blur()
	}
	a.focus = i
	return a.fields[i].input.Focus()
}

// View renders the wizard UI.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.render())

	canvas := uv.NewScreenBuffer(a.width, a.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: a.width, Y: a.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (a *App) modalWidth() int {
	return min(max(a.width-10, 60), 100)
}

// render draws the modal for the current step.
func (a *App) render() string {
	s := theme.Current().S()
	width := a.modalWidth()
	inner := width - 6 // border and padding

	sections := []string{s.HeaderTitle.Render(a.header()), ""}

	switch a.view.Step {
	case wizard.StepPackage:
		sections = append(sections, a.renderPackages())
	case wizard.StepServices:
		sections = append(sections, a.renderServices())
	case wizard.StepDeploying:
		sections = append(sections, a.renderDeploying(inner))
	case wizard.StepActivation:
		sections = append(sections, a.renderActivation())
	default:
		sections = append(sections, a.renderFields())
	}

	if a.view.Step <= wizard.LastInputStep {
		if issues := a.renderIssues(); issues != "" {
			sections = append(sections, "", issues)
		}
		label := "Next →"
		if a.view.Step == wizard.LastInputStep {
			label = "Deploy"
		}
		bar := NewButtonBar(navButtons(a.view.Step == wizard.StepPackage, a.view.CanAdvance && !a.view.Loading(), label))
		bar.SetWidth(inner)
		sections = append(sections, "", bar.Render())
	}

	if hints := a.hints(); hints != "" {
		sections = append(sections, "", hints)
	}
	if a.status != "" {
		sections = append(sections, "", s.Subtitle.Render(a.status))
	}

	return s.ModalContainer.Width(width).Render(strings.Join(sections, "\n"))
}

func (a *App) header() string {
	step := a.view.Step
	if step <= wizard.LastInputStep {
		return fmt.Sprintf("Step %d of %d: %s", step, wizard.LastInputStep, step.Title())
	}
	return step.Title()
}

func (a *App) renderPackages() string {
	s := theme.Current().S()
	var lines []string
	for i, p := range form.Packages() {
		marker, radio := "  ", "( )"
		if i == a.cursor {
			marker = "› "
		}
		if p.ID == a.view.Form.Package {
			radio = "(•)"
		}
		line := fmt.Sprintf("%s%s %s  %s", marker, radio, p.Name, p.Price)
		if i == a.cursor {
			line = s.Selected.Render(line)
		} else {
			line = s.Text.Render(line)
		}
		lines = append(lines, line)
		if i == a.cursor {
			lines = append(lines, s.Muted.Render("      "+strings.Join(p.Features, " · ")))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderServices() string {
	s := theme.Current().S()
	var lines []string
	for i, info := range form.ServiceCatalog() {
		marker, box := "  ", "[ ]"
		if i == a.cursor {
			marker = "› "
		}
		if a.view.Form.Services.Enabled(info.Service) {
			box = "[x]"
		}
		style := s.Text
		if i == a.cursor {
			style = s.Selected
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%s %s", marker, box, info.Title))+"  "+s.Muted.Render(info.Description))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderFields() string {
	s := theme.Current().S()
	var lines []string
	for i, f := range a.fields {
		label := s.Label.Render(f.label)
		if i == a.focus {
			label = s.LabelFocused.Render(f.label)
		}
		lines = append(lines, label, "  "+f.input.View())
	}
	if a.view.Step == wizard.StepSubdomain {
		host := a.view.Form.Subdomain
		if host == "" {
			host = "your-store"
		}
		lines = append(lines, "", s.Muted.Render("Your store will live at https://"+host+"."+a.domain()))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderIssues() string {
	if a.view.CanAdvance || len(a.view.Issues) == 0 {
		return ""
	}
	s := theme.Current().S()
	lines := make([]string, 0, len(a.view.Issues))
	for _, issue := range a.view.Issues {
		lines = append(lines, s.Warning.Render("• "+issue.String()))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderDeploying(width int) string {
	s := theme.Current().S()
	d := a.view.Deployment
	host := a.view.Form.Subdomain + "." + a.domain()

	if d.DialogOpen {
		dialog := renderDeployDialog(d, host, a.spinner.View())
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, dialog)
	}

	sections := []string{renderMarkdown(summaryMarkdown(a.view.Form, a.domain()), width)}
	switch {
	case a.view.LastError != "":
		sections = append(sections, s.Error.Render("Deployment failed: "+a.view.LastError))
	case d.Loading:
		sections = append(sections, a.spinner.View()+" "+s.Text.Render("Waiting for the provisioning service..."))
	case d.Attempt != 0:
		sections = append(sections, s.Muted.Render(fmt.Sprintf("Deployment dismissed at %s.", formatPercent(d.Progress))))
	}
	return strings.Join(sections, "\n\n")
}

func (a *App) renderActivation() string {
	s := theme.Current().S()
	r := a.view.LastResult
	if r == nil {
		return s.Muted.Render("No deployment result.")
	}
	lines := []string{
		s.Success.Render("Your store is live!"),
		"",
		s.Label.Render("Client ID   ") + s.Text.Render(r.ClientID),
		s.Label.Render("Storefront  ") + s.Link.Render(r.URLs.Storefront),
		s.Label.Render("Admin       ") + s.Link.Render(r.URLs.Admin),
		s.Label.Render("API         ") + s.Link.Render(r.URLs.API),
	}
	return strings.Join(lines, "\n")
}

func (a *App) hints() string {
	switch a.view.Step {
	case wizard.StepPackage:
		return RenderHintBar(KeyUpDown, "move", KeySpace, "select", KeyEnter, "choose", KeyEsc, "quit")
	case wizard.StepServices:
		return RenderHintBar(KeyUpDown, "move", KeySpace, "toggle", KeyEnter, "next", KeyEsc, "back")
	case wizard.StepDeploying:
		d := a.view.Deployment
		if d.DialogOpen || d.Loading {
			return ""
		}
		return RenderHintBar("r", "retry", KeyEsc, "back")
	case wizard.StepActivation:
		return RenderHintBar("d", "download config", "r", "restart", "q", "quit")
	}
	return RenderHintBar(KeyTab, "next field", KeyEnter, "continue", KeyEsc, "back")
}

func (a *App) domain() string {
	if a.opts.Domain == "" {
		return "bajgo.com"
	}
	return a.opts.Domain
}
