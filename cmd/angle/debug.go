package main

import (
	"flag"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/midbel/cli"
	"github.com/midbel/angle/xml"
	"github.com/midbel/angle/xpath"
)

var debugCmd = cli.Command{
	Name:    "debug",
	Summary: "evaluate xpath expressions interactively against a document",
	Handler: &DebugCmd{},
}

type DebugCmd struct {
	QueryOptions
}

func (d *DebugCmd) Run(args []string) error {
	set := flag.NewFlagSet("debug", flag.ContinueOnError)
	set.BoolVar(&d.Xpath1, "xpath1", false, "compile with the xpath 1.0 grammar")
	set.BoolVar(&d.Strict, "strict", true, "strict name and function resolution")
	set.Func("ns", "register a namespace as prefix=uri", d.Namespace)
	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := parseDocument(set.Arg(0))
	if err != nil {
		return err
	}
	xml.BuildTree(doc)

	model := newDebugModel(doc, d.QueryOptions)
	_, err = tea.NewProgram(model).Run()
	return err
}

var (
	promptStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	treeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

type debugModel struct {
	doc     *xml.Document
	options QueryOptions

	input   textinput.Model
	results []string
	tree    string
	err     error
	height  int
}

func newDebugModel(doc *xml.Document, options QueryOptions) debugModel {
	input := textinput.New()
	input.Placeholder = "xpath expression"
	input.Focus()
	return debugModel{
		doc:     doc,
		options: options,
		input:   input,
		height:  24,
	}
}

func (m debugModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.evaluate()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *debugModel) evaluate() {
	m.results = nil
	m.tree = ""
	m.err = nil

	query, err := xpath.BuildWith(m.input.Value(), m.options.Options()...)
	if err != nil {
		m.err = err
		return
	}
	m.tree = xpath.Dump(query.Expr())
	seq, err := query.Find(m.doc)
	if err != nil {
		m.err = err
		return
	}
	for i := range seq {
		if seq[i].Atomic() {
			m.results = append(m.results, stringifyItem(seq[i]))
		} else {
			m.results = append(m.results, xml.WriteNode(seq[i].Node()))
		}
	}
}

func (m debugModel) View() tea.View {
	var view strings.Builder
	view.WriteString(promptStyle.Render("query"))
	view.WriteString(" ")
	view.WriteString(m.input.View())
	view.WriteString("\n\n")
	switch {
	case m.err != nil:
		view.WriteString(errorStyle.Render(m.err.Error()))
		view.WriteString("\n")
	default:
		view.WriteString(countStyle.Render(fmt.Sprintf("%d item(s)", len(m.results))))
		view.WriteString("\n")
		limit := max(m.height-8, 4)
		for i, r := range m.results {
			if i >= limit {
				view.WriteString(countStyle.Render(fmt.Sprintf("... %d more", len(m.results)-limit)))
				view.WriteString("\n")
				break
			}
			view.WriteString(matchStyle.Render(r))
			view.WriteString("\n")
		}
	}
	if m.tree != "" {
		view.WriteString("\n")
		view.WriteString(treeStyle.Render(m.tree))
	}
	return tea.NewView(view.String())
}
