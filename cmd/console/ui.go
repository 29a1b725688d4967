package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/questforge/questforge/pkg/game"
	"github.com/questforge/questforge/pkg/play"
)

const (
	startAgainLabel = "Start again"
	returnLabel     = "Quit"
)

var (
	roomPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(3)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	flagChoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	gameOverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

// ConsoleUI is the BubbleTea model that runs the player.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	game     *game.Game
	session  *play.Session
	viewport viewport.Model
	choices  []play.Choice
	cursor   int
	gameOver bool
	ready    bool
	width    int
	height   int
	status   string
}

func NewConsoleUI(g *game.Game, session *play.Session) ConsoleUI {
	ui := ConsoleUI{
		game:    g,
		session: session,
	}
	ui.refreshChoices()
	return ui
}

func (ui *ConsoleUI) refreshChoices() {
	ui.choices = ui.session.Choices()
	ui.gameOver = len(ui.choices) == 0
	ui.cursor = 0
}

func (ui ConsoleUI) Init() tea.Cmd {
	return nil
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		if !ui.ready {
			ui.viewport = viewport.New(msg.Width, msg.Height)
			ui.ready = true
		} else {
			ui.viewport.Width = msg.Width
			ui.viewport.Height = msg.Height
		}
		ui.viewport.SetContent(ui.renderRoom())
		return ui, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return ui, tea.Quit

		case "up", "k":
			if ui.cursor > 0 {
				ui.cursor--
			}

		case "down", "j":
			if ui.cursor < ui.optionCount()-1 {
				ui.cursor++
			}

		case "c":
			if err := clipboard.WriteAll(ui.game.ID.String()); err != nil {
				ui.status = "Could not copy game id"
			} else {
				ui.status = "Game id copied"
			}

		case "enter":
			return ui.selectOption()
		}
	}

	if ui.ready {
		ui.viewport.SetContent(ui.renderRoom())
	}
	return ui, nil
}

func (ui ConsoleUI) optionCount() int {
	if ui.gameOver {
		return 2 // start again / quit
	}
	return len(ui.choices)
}

func (ui ConsoleUI) selectOption() (tea.Model, tea.Cmd) {
	ui.status = ""
	if ui.gameOver {
		if ui.cursor == 0 {
			ui.session.Restart()
			ui.refreshChoices()
			return ui, nil
		}
		return ui, tea.Quit
	}

	if ui.cursor < len(ui.choices) {
		if _, err := ui.session.Choose(ui.choices[ui.cursor].ID); err != nil {
			ui.status = err.Error()
			return ui, nil
		}
		ui.refreshChoices()
	}
	return ui, nil
}

func (ui ConsoleUI) renderRoom() string {
	room := ui.session.Current()
	width := ui.width - 6
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(titleCaser.String(room.Name)))
	b.WriteString("\n\n")
	b.WriteString(descriptionStyle.Render(wordwrap.String(room.Description, width)))
	b.WriteString("\n\n")

	if ui.gameOver {
		b.WriteString(gameOverStyle.Render("Game over"))
		b.WriteString("\n\n")
		for i, label := range []string{startAgainLabel, returnLabel} {
			b.WriteString(ui.renderOption(label, i, choiceStyle))
		}
	} else {
		for i, choice := range ui.choices {
			style := choiceStyle
			if choice.Type == game.TypeFlag {
				style = flagChoiceStyle
			}
			b.WriteString(ui.renderOption(choice.Name, i, style))
		}
	}

	if ui.status != "" {
		b.WriteString("\n" + helpStyle.Render(ui.status))
	}
	b.WriteString("\n" + helpStyle.Render("up/down: select  enter: choose  c: copy game id  q: quit"))

	return roomPanelStyle.Render(b.String())
}

func (ui ConsoleUI) renderOption(label string, index int, style lipgloss.Style) string {
	cursor := "  "
	if index == ui.cursor {
		cursor = "> "
		style = selectedChoiceStyle
	}
	return fmt.Sprintf("%s%s\n", cursor, style.Render(label))
}

func (ui ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}
	return ui.viewport.View()
}
