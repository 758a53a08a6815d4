package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	return readLine(reader)
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseTimes reads whitespace separated dose times. Each token is either an
// RFC 3339 timestamp or a wall-clock "15:04" meaning its next occurrence
// after now, in now's location. Input order is kept.
func parseTimes(input string, now time.Time) ([]time.Time, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, errors.New("at least one time is required")
	}

	times := make([]time.Time, 0, len(fields))
	for _, f := range fields {
		if ts, err := time.Parse(time.RFC3339, f); err == nil {
			times = append(times, ts.UTC())
			continue
		}
		clock, err := time.ParseInLocation("15:04", f, now.Location())
		if err != nil {
			return nil, fmt.Errorf("bad time %q: use HH:MM or RFC 3339", f)
		}
		ts := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
		if !ts.After(now) {
			ts = ts.AddDate(0, 0, 1)
		}
		times = append(times, ts.UTC())
	}
	return times, nil
}
