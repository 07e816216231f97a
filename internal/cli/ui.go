package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/farmease/farmease-ai/internal/model/chat"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#2E7D32")).
		Padding(0, 1)

	userStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1565C0"))

	botStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#43A047")).
		Padding(0, 1)

	noteStyle = lipgloss.NewStyle().
		Faint(true).
		Italic(true)

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2E7D32"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C62828"))
)

const offlineNote = "offline answer"

func renderReply(text string, offline bool) string {
	rendered := botStyle.Render(text)
	if offline {
		rendered += "\n" + noteStyle.Render(offlineNote)
	}
	return rendered
}

func renderMessage(msg chat.Message, offline bool) string {
	stamp := noteStyle.Render(msg.Timestamp.Format("15:04"))
	if msg.Role == chat.RoleUser {
		return fmt.Sprintf("%s %s %s", userStyle.Render("You:"), msg.Content, stamp)
	}
	return renderReply(msg.Content, offline) + " " + stamp
}

func printMessages(w io.Writer, msgs []chat.Message) {
	for _, msg := range msgs {
		fmt.Fprintln(w, renderMessage(msg, false))
	}
}
