package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nachoal/visionari-go/controller"
	"github.com/nachoal/visionari-go/tui/styles"
)

// Notice is a blocking notification; input is ignored until it is dismissed
type Notice struct {
	Title   string
	Message string
}

func noticeFor(err error) *Notice {
	return &Notice{
		Title:   controller.Category(err),
		Message: controller.Message(err),
	}
}

func (n *Notice) View(st *styles.Styles, width, height int) string {
	title := st.ModalTitle.Render(n.Title)
	if n.Title != controller.CategoryInput {
		title = st.ErrorTitle.Render(n.Title)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		n.Message,
		"",
		st.Dim.Render("enter/esc to dismiss"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, st.Modal.Render(body))
}
