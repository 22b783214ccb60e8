package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/wellstat/internal/model/modeltest"
	"github.com/abhisek/wellstat/internal/router"
)

func testScreen(t *testing.T) *SummaryScreen {
	t.Helper()
	return New(modeltest.Model(t, 300, 2).Summary())
}

func TestSummaryScreen_Title(t *testing.T) {
	s := testScreen(t)
	if s.Title() != "Model Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Model Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := testScreen(t)
	view := s.View(100, 80)
	if !strings.Contains(view, "Logistic regression") {
		t.Error("expected the report heading in the view")
	}
	if !strings.Contains(view, "daily_screen_time") {
		t.Error("expected coefficient rows in the view")
	}
}

func TestSummaryScreen_Scroll(t *testing.T) {
	s := testScreen(t)
	s.View(100, 6)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.offset != 1 {
		t.Errorf("offset = %d, want 1", s.offset)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.offset != 0 {
		t.Errorf("offset = %d, want 0 (clamped)", s.offset)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	if s.offset != s.maxOffset() || s.offset == 0 {
		t.Errorf("offset = %d, want %d", s.offset, s.maxOffset())
	}
	if !strings.Contains(s.View(100, 6), "▲ more") {
		t.Error("expected an upward scroll marker at the end")
	}
}

func TestSummaryScreen_QuitPops(t *testing.T) {
	s := testScreen(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected a command on q")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
