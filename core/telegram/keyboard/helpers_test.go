package keyboard

import (
	"strings"
	"testing"
)

func TestCallbackData(t *testing.T) {
	if got := CallbackData(InlineBtn{Unique: "team:card", Data: "12"}); got != "\fteam:card|12" {
		t.Fatalf("got %q", got)
	}
	if got := CallbackData(InlineBtn{Unique: "menu:main"}); got != "\fmenu:main" {
		t.Fatalf("got %q", got)
	}
}

func TestFits(t *testing.T) {
	if !Fits(InlineBtn{Unique: "workout:pick", Data: "Back Squat"}) {
		t.Fatal("short button should fit")
	}
	if Fits(InlineBtn{Unique: "workout:pick", Data: strings.Repeat("x", 60)}) {
		t.Fatal("long payload should not fit")
	}
}

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Unique: "a:x", Data: "1"}, {Text: "B", Unique: "b:y"}},
		nil,
		[]InlineBtn{{Text: "C", Unique: "c:z"}},
	)
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(m.InlineKeyboard))
	}
	if len(m.InlineKeyboard[0]) != 2 || m.InlineKeyboard[0][0].Unique != "a:x" || m.InlineKeyboard[0][0].Data != "1" {
		t.Fatalf("first row = %+v", m.InlineKeyboard[0])
	}
}
