package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(scene Scene) string {
	s := "1-4 scene"
	switch scene {
	case SceneSprings:
		s += "  space scatter  r recall"
	case SceneStagger:
		s += "  space replay  o origin  e easing"
	case SceneTimeline:
		s += "  space play/pause  r reset"
	case SceneTransition:
		s += "  space transition"
	}
	return s + "  q quit"
}
