package tui

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/preview"
	"github.com/nachoal/visionari-go/tui/styles"
)

const (
	appTitle           = "Visionari - AI Image Analysis Tool"
	previewPlaceholder = "Image Preview Here"
	keyPlaceholder     = "Enter your GROQ API Key here"
	disabledFileText   = "Only .png, .jpeg and .jpg files can be selected."
	maxContentWidth    = 100
)

// field identifies the focusable controls, in tab order
type field int

const (
	fieldKey field = iota
	fieldUpload
	fieldQuery
	fieldMaxTokens
	fieldTemperature
	fieldTopP
	fieldSubmit
	fieldClear
	fieldOutput
	fieldCount
)

// renderPreview draws the selected image; replaced in tests
var renderPreview = preview.Render

// submitResultMsg carries the outcome of one submission back to the event loop
type submitResultMsg struct {
	id   string
	text string
	err  error
}

// App is the Bubble Tea model of the image query screen. Session state lives
// in the controller; App only holds what the screen needs to draw it.
type App struct {
	ctrl   *controller.Controller
	styles *styles.Styles
	keys   KeyMap
	help   help.Model

	keyInput   textinput.Model
	queryInput textinput.Model
	sliders    [3]Slider
	picker     filepicker.Model
	output     viewport.Model
	spinner    spinner.Model

	focus     field
	picking   bool
	pending   string // id of the in-flight submission, "" when idle
	notice    *Notice
	image     image.Image
	imageName string
	// rendered preview and the area it was rendered for
	previewArt  string
	previewSize [2]int
	result    string

	width  int
	height int
	ready  bool
}

// Options configures a new App
type Options struct {
	APIKey    string
	ImagePath string
	Theme     string
	StartDir  string
}

// New creates the application model
func New(ctrl *controller.Controller, opts Options) App {
	theme := styles.GetTheme(opts.Theme)
	st := styles.NewStyles(theme)

	keyInput := textinput.New()
	keyInput.Placeholder = keyPlaceholder
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'
	keyInput.Prompt = ""
	keyInput.SetValue(opts.APIKey)
	keyInput.Focus()

	queryInput := textinput.New()
	queryInput.Placeholder = controller.Placeholder
	queryInput.Prompt = ""
	queryInput.CharLimit = 0

	fp := filepicker.New()
	fp.AllowedTypes = pickerTypes()
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	m := App{
		ctrl:       ctrl,
		styles:     st,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		keyInput:   keyInput,
		queryInput: queryInput,
		sliders:    samplingSliders(theme),
		picker:     fp,
		output:     viewport.New(80, 8),
		spinner:    s,
		focus:      fieldKey,
	}

	if opts.ImagePath != "" {
		m = m.selectImage(opts.ImagePath)
	}
	return m
}

func (m App) Init() tea.Cmd {
	return textinput.Blink
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The picker reads directories asynchronously; its messages must reach it
	// whether or not it is on screen.
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshPreview()
		return m, tea.Batch(cmds...)

	case submitResultMsg:
		if msg.id != m.pending {
			// cleared while the call was in flight
			return m, tea.Batch(cmds...)
		}
		m.pending = ""
		if msg.err != nil {
			m.setResult("")
			m.notice = noticeFor(msg.err)
		} else {
			m.setResult(msg.text)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if m.pending != "" {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	return m, tea.Batch(cmds...)
}

func (m App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.notice != nil {
		if key.Matches(msg, m.keys.Dismiss, m.keys.Activate) || msg.String() == " " {
			m.notice = nil
		}
		return m, nil
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, m.keys.Upload):
		return m.openPicker()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Clear):
		return m.clear(), nil
	}

	switch m.focus {
	case fieldKey, fieldQuery:
		if key.Matches(msg, m.keys.Activate) {
			return m.submit()
		}
		return m.updateInput(msg)
	case fieldUpload:
		if key.Matches(msg, m.keys.Activate) {
			return m.openPicker()
		}
	case fieldSubmit:
		if key.Matches(msg, m.keys.Activate) {
			return m.submit()
		}
	case fieldClear:
		if key.Matches(msg, m.keys.Activate) {
			return m.clear(), nil
		}
	case fieldMaxTokens, fieldTemperature, fieldTopP:
		m.adjustSlider(msg)
	case fieldOutput:
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m App) handlePickerKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if key.Matches(msg, m.keys.Dismiss) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m.selectImage(path), cmd
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = &Notice{Title: controller.CategoryInput, Message: disabledFileText}
	}
	return m, cmd
}

func (m App) updateInput(msg tea.KeyMsg) (App, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == fieldKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	m.queryInput, cmd = m.queryInput.Update(msg)
	m.ctrl.SetQuery(m.queryInput.Value())
	return m, cmd
}

func (m App) setFocus(f field) (App, tea.Cmd) {
	m.focus = f
	m.keyInput.Blur()
	m.queryInput.Blur()
	switch f {
	case fieldKey:
		return m, m.keyInput.Focus()
	case fieldQuery:
		return m, m.queryInput.Focus()
	}
	return m, nil
}

func (m *App) adjustSlider(msg tea.KeyMsg) {
	steps, big := 0, false
	switch {
	case key.Matches(msg, m.keys.Inc):
		steps = 1
	case key.Matches(msg, m.keys.Dec):
		steps = -1
	case key.Matches(msg, m.keys.IncMore):
		steps, big = 1, true
	case key.Matches(msg, m.keys.DecMore):
		steps, big = -1, true
	default:
		return
	}

	s := m.ctrl.Sampling()
	switch m.focus {
	case fieldMaxTokens:
		v := m.sliders[0].Adjust(float64(s.MaxTokens), steps, big)
		m.ctrl.SetMaxTokens(int(v))
	case fieldTemperature:
		m.ctrl.SetTemperature(m.sliders[1].Adjust(s.Temperature, steps, big))
	case fieldTopP:
		m.ctrl.SetTopP(m.sliders[2].Adjust(s.TopP, steps, big))
	}
}

func (m App) openPicker() (App, tea.Cmd) {
	m.picking = true
	return m, m.picker.Init()
}

func (m App) selectImage(path string) App {
	img, err := m.ctrl.SelectImage(path)
	if err != nil {
		m.notice = noticeFor(err)
		return m
	}
	m.image = img.Image
	m.imageName = filepath.Base(path)
	m.previewSize = [2]int{}
	m.refreshPreview()
	return m
}

// refreshPreview re-renders the preview only when the image area changed size
func (m *App) refreshPreview() {
	if m.image == nil {
		m.previewArt = ""
		m.previewSize = [2]int{}
		return
	}
	size := [2]int{m.contentWidth() - 4, m.previewRows()}
	if size == m.previewSize && m.previewArt != "" {
		return
	}
	m.previewArt = renderPreview(m.image, size[0], size[1])
	m.previewSize = size
}

// pickerTypes lists the allowed extensions in both cases; the file picker
// matches suffixes case-sensitively
func pickerTypes() []string {
	types := make([]string, 0, 2*len(preview.AllowedExtensions))
	for _, ext := range preview.AllowedExtensions {
		types = append(types, ext, strings.ToUpper(ext))
	}
	return types
}

// submit validates on the event loop and runs the blocking call in a command
func (m App) submit() (App, tea.Cmd) {
	if m.pending != "" {
		return m, nil
	}

	req, err := m.ctrl.Prepare(m.keyInput.Value(), m.queryInput.Value())
	if err != nil {
		m.notice = noticeFor(err)
		return m, nil
	}

	m.pending = req.ID
	ctrl := m.ctrl
	run := func() tea.Msg {
		text, err := ctrl.Execute(context.Background(), req)
		return submitResultMsg{id: req.ID, text: text, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, run)
}

func (m App) clear() App {
	m.ctrl.Clear()
	m.queryInput.Reset()
	m.image = nil
	m.imageName = ""
	m.previewArt = ""
	m.previewSize = [2]int{}
	m.pending = ""
	m.setResult("")
	return m
}

func (m *App) setResult(text string) {
	m.result = text
	m.output.SetContent(text)
	m.output.GotoTop()
}

func (m *App) contentWidth() int {
	w := m.width - 2
	if w > maxContentWidth {
		w = maxContentWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *App) previewRows() int {
	rows := (m.height - 24) / 2
	if rows < 3 {
		rows = 3
	}
	if rows > 14 {
		rows = 14
	}
	return rows
}

func (m *App) layout() {
	w := m.contentWidth()
	m.keyInput.Width = w - m.styles.Label.GetWidth() - 4
	m.queryInput.Width = w - 4
	m.help.Width = w

	used := 20 + m.previewRows()
	h := m.height - used
	if h < 3 {
		h = 3
	}
	m.output.Width = w - 4
	m.output.Height = h
}

func (m App) View() string {
	if !m.ready {
		return "\nInitializing..."
	}

	if m.notice != nil {
		return m.notice.View(m.styles, m.width, m.height)
	}

	w := m.contentWidth()
	st := m.styles

	if m.picking {
		header := st.Section.Render("Open Image File") + " " + st.Dim.Render(strings.Join(preview.AllowedExtensions, " "))
		return lipgloss.JoinVertical(lipgloss.Left,
			st.Title.Width(w).Render(appTitle),
			"",
			header,
			st.Picker.Width(w-2).Render(m.picker.View()),
			st.Help.Render("enter select • esc cancel"),
		)
	}

	sections := []string{
		st.Title.Width(w).Render(appTitle),
		"",
		m.fieldRow(fieldKey, "GROQ Key:", m.keyInput.View()),
		m.uploadRow(),
		m.previewView(w),
		st.Label.Render("Image Query:"),
		m.fieldBox(fieldQuery, m.queryInput.View()),
		"",
	}

	sampling := m.ctrl.Sampling()
	values := []float64{float64(sampling.MaxTokens), sampling.Temperature, sampling.TopP}
	for i, s := range m.sliders {
		sections = append(sections, s.View(values[i], m.focus == fieldMaxTokens+field(i), st, w))
	}

	outputStyle := st.Output
	if m.focus == fieldOutput {
		outputStyle = st.OutputFocused
	}
	sections = append(sections,
		"",
		st.Section.Render("LLM Output:"),
		outputStyle.Width(w-2).Render(m.output.View()),
		m.buttonsRow(),
		m.help.View(m.keys),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m App) fieldRow(f field, label, input string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Label.Render(label), m.fieldBox(f, input))
}

func (m App) fieldBox(f field, input string) string {
	if m.focus == f {
		return m.styles.FieldFocused.Render(input)
	}
	return m.styles.Field.Render(input)
}

func (m App) uploadRow() string {
	st := m.styles
	button := styles.Focused(st.UploadButton, m.focus == fieldUpload).Render("Upload Image")
	name := st.Dim.Render("no image selected")
	if m.imageName != "" {
		name = m.imageName
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, st.Label.Render("Image Upload:"), button, name)
}

func (m App) previewView(w int) string {
	rows := m.previewRows()
	box := m.styles.Preview.Width(w - 2).Height(rows)
	if m.image == nil {
		return box.Render(m.styles.Dim.Render(previewPlaceholder))
	}
	return box.Render(m.previewArt)
}

func (m App) buttonsRow() string {
	st := m.styles
	submitStyle := styles.Focused(st.SubmitButton, m.focus == fieldSubmit)
	submitLabel := "Submit Query"
	if m.pending != "" {
		submitStyle = st.Disabled
		submitLabel = fmt.Sprintf("%s Waiting for response", m.spinner.View())
	}
	clearBtn := styles.Focused(st.ClearButton, m.focus == fieldClear).Render("Clear")
	return lipgloss.JoinHorizontal(lipgloss.Top, submitStyle.Render(submitLabel), clearBtn)
}

// Result returns the text currently shown in the output area
func (m App) Result() string {
	return m.result
}
