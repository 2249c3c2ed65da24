package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
	"nickandperla.net/rpn/pkg/rpn"
)

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// handleREPLCommand intercepts the REPL's own commands (session
// management) before the calculator sees the line. Returns true when
// the line was handled.
func handleREPLCommand(runtime *rpn.Runtime, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], ".") {
		return false
	}

	switch fields[0] {
	case ".save":
		if len(fields) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: .save NAME")
			return true
		}
		if err := runtime.SaveSession(fields[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Could not save session: %v\n", err)
		}
	case ".replay":
		if len(fields) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: .replay NAME")
			return true
		}
		if err := runtime.ReplaySession(fields[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Could not replay session: %v\n", err)
		}
	case ".sessions":
		names, err := runtime.Sessions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not list sessions: %v\n", err)
			return true
		}
		for _, name := range names {
			fmt.Println(name)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown REPL command %s (try .save, .replay or .sessions)\n", fields[0])
	}
	return true
}

func runREPL(runtime *rpn.Runtime, prompt string) {
	if !isTerminal() {
		runBasicREPL(runtime, prompt)
		return
	}
	runRawREPL(runtime, prompt)
}

// runBasicREPL handles non-TTY input (piped input).
func runBasicREPL(runtime *rpn.Runtime, prompt string) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if handleREPLCommand(runtime, line) {
			continue
		}
		if _, err := runtime.Execute(line); errors.Is(err, rpn.ErrEndOfSession) {
			return
		}
	}
}

// runRawREPL handles TTY input with line editing and history recall.
// The terminal is only raw while a line is being read, so calculator
// output does not need newline translation.
func runRawREPL(runtime *rpn.Runtime, prompt string) {
	fd := int(os.Stdin.Fd())

	// Seed the recall history from the store.
	history, err := runtime.History(1000)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not load history: %v\n", err)
	}

	for {
		fmt.Print(prompt)

		oldState, err := term.MakeRaw(fd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
			runBasicREPL(runtime, prompt)
			return
		}
		line, eof := readLineRaw(fd, history)
		term.Restore(fd, oldState)

		if eof {
			fmt.Println()
			return
		}
		if strings.TrimSpace(line) != "" {
			history = append(history, line)
		}

		if handleREPLCommand(runtime, line) {
			continue
		}
		if _, err := runtime.Execute(line); errors.Is(err, rpn.ErrEndOfSession) {
			return
		}
	}
}

// readLineRaw reads a line in raw mode with basic editing and up/down
// history recall. Returns the line and whether EOF was encountered.
func readLineRaw(fd int, history []string) (string, bool) {
	var line []rune
	cursor := 0
	histPos := len(history)
	var pending []rune // line being edited before history recall
	buf := make([]byte, 1)

	redrawFromCursor := func() {
		fmt.Print("\x1b[K")
		for i := cursor; i < len(line); i++ {
			fmt.Print(string(line[i]))
		}
		if cursor < len(line) {
			fmt.Printf("\x1b[%dD", len(line)-cursor)
		}
	}

	replaceLine := func(text string) {
		if cursor > 0 {
			fmt.Printf("\x1b[%dD", cursor)
		}
		fmt.Print("\x1b[K")
		line = []rune(text)
		cursor = len(line)
		fmt.Print(text)
	}

	insert := func(r rune) {
		newLine := make([]rune, 0, len(line)+1)
		newLine = append(newLine, line[:cursor]...)
		newLine = append(newLine, r)
		newLine = append(newLine, line[cursor:]...)
		line = newLine
		cursor++
		fmt.Print(string(r))
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return string(line), true
		}

		b := buf[0]

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter
			fmt.Print("\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Print("\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - arrow key sequences
			nextBuf := make([]byte, 1)
			n, err := os.Stdin.Read(nextBuf)
			if err != nil || n == 0 {
				continue
			}
			if nextBuf[0] != '[' {
				continue
			}
			arrowBuf := make([]byte, 1)
			n, err = os.Stdin.Read(arrowBuf)
			if err != nil || n == 0 {
				continue
			}

			switch arrowBuf[0] {
			case 'A': // Up - older history
				if histPos > 0 {
					if histPos == len(history) {
						pending = line
					}
					histPos--
					replaceLine(history[histPos])
				}
			case 'B': // Down - newer history
				if histPos < len(history) {
					histPos++
					if histPos == len(history) {
						replaceLine(string(pending))
					} else {
						replaceLine(history[histPos])
					}
				}
			case 'C': // Right
				if cursor < len(line) {
					cursor++
					fmt.Print("\x1b[C")
				}
			case 'D': // Left
				if cursor > 0 {
					cursor--
					fmt.Print("\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				delBuf := make([]byte, 1)
				os.Stdin.Read(delBuf)
				if delBuf[0] == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Printf("\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Print("\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b < 0x7f {
				insert(rune(b))
			} else if b >= 0x80 {
				// UTF-8 multi-byte sequence
				utfBuf := []byte{b}
				numBytes := 0
				if b&0xE0 == 0xC0 {
					numBytes = 1
				} else if b&0xF0 == 0xE0 {
					numBytes = 2
				} else if b&0xF8 == 0xF0 {
					numBytes = 3
				}
				for i := 0; i < numBytes; i++ {
					n, err := os.Stdin.Read(buf)
					if err != nil || n == 0 {
						break
					}
					utfBuf = append(utfBuf, buf[0])
				}
				insert([]rune(string(utfBuf))[0])
			}
		}
	}
}
