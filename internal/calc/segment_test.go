// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package calc

import "testing"

func collect(t *testing.T, line string, splitLines bool, separator string) []Command {
	t.Helper()
	seg := NewSegmenter(line, splitLines, separator)
	var out []Command
	for {
		cmd, ok, err := seg.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, cmd)
	}
}

func TestSegmenterSplitsOnWhitespace(t *testing.T) {
	cmds := collect(t, "  3   4 +  ", true, "")
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d: %v", len(cmds), cmds)
	}
	for i, want := range []string{"3", "4", "+"} {
		if cmds[i].Command != want {
			t.Errorf("command %d = %q, want %q", i, cmds[i].Command, want)
		}
		if cmds[i].Count != noCount {
			t.Errorf("command %d count = %d, want none", i, cmds[i].Count)
		}
	}
}

func TestSegmenterNoSplit(t *testing.T) {
	cmds := collect(t, "[1, 2, 3]", false, "")
	if len(cmds) != 1 || cmds[0].Command != "[1, 2, 3]" {
		t.Fatalf("unexpected commands: %v", cmds)
	}
}

func TestSegmenterCustomSeparator(t *testing.T) {
	cmds := collect(t, "3,4,+", true, ",")
	if len(cmds) != 3 || cmds[2].Command != "+" {
		t.Fatalf("unexpected commands: %v", cmds)
	}
}

func TestSegmenterModifierSuffix(t *testing.T) {
	cmds := collect(t, "+:p2", true, "")
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %v", cmds)
	}
	if cmds[0].Command != "+" || !cmds[0].Mods.Print || cmds[0].Count != 2 {
		t.Errorf("unexpected command: %+v", cmds[0])
	}
}

func TestSegmenterNextFieldModifiers(t *testing.T) {
	// A modifier-only field attaches to the previous command.
	cmds := collect(t, "+ :2", true, "")
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %v", cmds)
	}
	if cmds[0].Command != "+" || cmds[0].Count != 2 {
		t.Errorf("unexpected command: %+v", cmds[0])
	}
}

func TestSegmenterDictLiteralNotModifiers(t *testing.T) {
	// The colon inside a dict literal must not read as a modifier
	// separator.
	cmds := collect(t, "{'a': 27}", false, "")
	if len(cmds) != 1 || cmds[0].Command != "{'a': 27}" {
		t.Fatalf("unexpected commands: %v", cmds)
	}
	if cmds[0].Count != noCount {
		t.Errorf("count = %d, want none", cmds[0].Count)
	}
}

func TestSegmenterComment(t *testing.T) {
	cmds := collect(t, "3 4 # the rest is ignored", true, "")
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %v", cmds)
	}
	if cmds[2].Command != "" {
		t.Errorf("comment should yield an empty command, got %q", cmds[2].Command)
	}
}

func TestSegmenterIncompatibleModifiers(t *testing.T) {
	seg := NewSegmenter("3:=!", true, "")
	_, _, err := seg.Next()
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*IncompatibleModifiersError); !ok {
		t.Errorf("error type = %T (%s)", err, err)
	}
}
