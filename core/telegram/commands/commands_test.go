package commands

import "testing"

func TestVisible(t *testing.T) {
	cases := []struct {
		cmd  Command
		want bool
	}{
		{Command{}, true},
		{Command{Hidden: true}, false},
		{Command{AdminOnly: true}, false},
	}
	for i, tc := range cases {
		if got := tc.cmd.Visible(); got != tc.want {
			t.Fatalf("case %d: Visible()=%v want %v", i, got, tc.want)
		}
	}
}

func TestAnswers(t *testing.T) {
	cmd := Command{Aliases: []string{"enter", "/join_team"}}
	for _, name := range []string{"/enter", "/join_team"} {
		if !cmd.Answers(name) {
			t.Fatalf("expected %q to match", name)
		}
	}
	if cmd.Answers("/join") {
		t.Fatal("unexpected match for /join")
	}
}
