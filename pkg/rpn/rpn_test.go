package rpn

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRuntimeExecute(t *testing.T) {
	out := &bytes.Buffer{}
	r := New(WithOutput(out), WithErrOutput(&bytes.Buffer{}))
	defer r.Close()

	ok, err := r.Execute("3 4 + print")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Execute failed")
	}
	if got := out.String(); got != "7\n" {
		t.Errorf("output = %q, want %q", got, "7\n")
	}
}

func TestRuntimeBatch(t *testing.T) {
	out := &bytes.Buffer{}
	r := New(WithOutput(out), WithErrOutput(&bytes.Buffer{}))
	defer r.Close()

	if err := r.Batch(strings.NewReader("5 6 *\n"), true); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "30\n" {
		t.Errorf("output = %q, want %q", got, "30\n")
	}
}

func TestRuntimeHistory(t *testing.T) {
	r := New(WithMemoryStore(), WithOutput(&bytes.Buffer{}), WithErrOutput(&bytes.Buffer{}))
	defer r.Close()

	for _, line := range []string{"3 4 +", "dup"} {
		if _, err := r.Execute(line); err != nil {
			t.Fatal(err)
		}
	}

	lines, err := r.History(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "3 4 +" || lines[1] != "dup" {
		t.Errorf("unexpected history: %v", lines)
	}
}

func TestRuntimeSessionRoundTrip(t *testing.T) {
	r := New(WithMemoryStore(), WithOutput(&bytes.Buffer{}), WithErrOutput(&bytes.Buffer{}))
	defer r.Close()

	for _, line := range []string{"10", "20", "+"} {
		if _, err := r.Execute(line); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.SaveSession("sums"); err != nil {
		t.Fatal(err)
	}

	// A fresh runtime sharing nothing but the transcript replays to
	// the same stack.
	r2 := New(WithMemoryStore(), WithOutput(&bytes.Buffer{}), WithErrOutput(&bytes.Buffer{}))
	defer r2.Close()
	r2.store = r.store
	if err := r2.ReplaySession("sums"); err != nil {
		t.Fatal(err)
	}

	st := r2.Stack()
	if len(st) != 1 || st[0] != int64(30) {
		t.Errorf("stack after replay = %v", st)
	}

	names, err := r2.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "sums" {
		t.Errorf("unexpected sessions: %v", names)
	}
}

func TestRuntimeStoreOpenFailure(t *testing.T) {
	errOut := &bytes.Buffer{}
	r := New(
		WithSQLiteStore(filepath.Join(t.TempDir(), "missing", "x.db")),
		WithOutput(&bytes.Buffer{}),
		WithErrOutput(errOut),
	)
	defer r.Close()

	if !strings.Contains(errOut.String(), "Could not open store") {
		t.Errorf("error output = %q, want a store-open diagnostic", errOut.String())
	}

	// The runtime still works, just without persistence.
	if _, err := r.Execute("3 4 +"); err != nil {
		t.Fatal(err)
	}
	lines, err := r.History(10)
	if err != nil || lines != nil {
		t.Errorf("history = %v, %v", lines, err)
	}
}

func TestRuntimeRegister(t *testing.T) {
	r := New(WithOutput(&bytes.Buffer{}), WithErrOutput(&bytes.Buffer{}))
	defer r.Close()

	if err := r.Register(func(x int64) int64 { return x + 1 }, "incr", -1); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Execute("41 incr"); err != nil {
		t.Fatal(err)
	}
	st := r.Stack()
	if len(st) != 1 || st[0] != int64(42) {
		t.Errorf("stack = %v", st)
	}
}
