package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date format the console reads and prints.
const DateLayout = "2006-01-02"

// clearToken entered at an optional prompt erases the stored value.
const clearToken = "-"

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) fail(err error) {
	a.printf("[ERROR]: %v\n", err)
}

func (a *App) info(format string, args ...any) {
	a.printf("[INFO]: "+format+"\n", args...)
}

func (a *App) ok(format string, args ...any) {
	a.printf("[OK]: "+format+"\n", args...)
}

type line struct {
	text string
	err  error
}

// readLine returns the next input line without its terminator. io.EOF is
// only returned once no input is left. Lines are read on a separate
// goroutine so that a cancelled Run context unblocks the prompt with
// errInterrupted.
func (a *App) readLine() (string, error) {
	if a.eof != nil {
		return "", a.eof
	}
	if a.lines == nil {
		a.lines = make(chan line)
		go a.readLines()
	}
	select {
	case <-a.done:
		return "", errInterrupted
	case l := <-a.lines:
		if l.err != nil {
			a.eof = l.err
		}
		return l.text, l.err
	}
}

func (a *App) readLines() {
	send := func(l line) bool {
		select {
		case a.lines <- l:
			return true
		case <-a.done:
			return false
		}
	}
	for {
		s, err := a.in.ReadString('\n')
		s = strings.TrimRight(s, "\r\n")
		if err != nil {
			if s != "" && !send(line{text: s}) {
				return
			}
			send(line{err: err})
			return
		}
		if !send(line{text: s}) {
			return
		}
	}
}

func (a *App) text(label string) (string, error) {
	a.printf("%s: ", label)
	v, err := a.readLine()
	return strings.TrimSpace(v), err
}

// required reprompts until a non-blank value is entered.
func (a *App) required(label string) (string, error) {
	for {
		v, err := a.text(label)
		if err != nil || v != "" {
			return v, err
		}
		a.fail(fmt.Errorf("%s is required", strings.ToLower(label)))
	}
}

// edit shows the current value and returns nil when the input is blank. The
// clear token yields an empty string when clearable.
func (a *App) edit(label, current string, clearable bool) (*string, error) {
	hint := current
	if clearable {
		hint += ", " + clearToken + " to clear"
	}
	v, err := a.text(fmt.Sprintf("%s [%s]", label, hint))
	if err != nil || v == "" {
		return nil, err
	}
	if clearable && v == clearToken {
		v = ""
	}
	return &v, nil
}

func (a *App) parsed(label string, parse func(string) error) error {
	for {
		v, err := a.text(label)
		if err != nil {
			return err
		}
		if err := parse(v); err != nil {
			a.fail(err)
			continue
		}
		return nil
	}
}

func (a *App) id(label string) (int64, error) {
	var n int64
	err := a.parsed(label, func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("enter a positive whole number")
		}
		n = v
		return nil
	})
	return n, err
}

func (a *App) count(label string) (int, error) {
	var n int
	err := a.parsed(label, func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		n = v
		return nil
	})
	return n, err
}

func (a *App) amount(label string) (float64, error) {
	var f float64
	err := a.parsed(label, func(s string) error {
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("enter a number")
		}
		f = v
		return nil
	})
	return f, err
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("enter a date as YYYY-MM-DD")
	}
	return t, nil
}

func (a *App) date(label string) (time.Time, error) {
	var t time.Time
	err := a.parsed(label+" (YYYY-MM-DD)", func(s string) error {
		v, err := parseDate(s)
		t = v
		return err
	})
	return t, err
}

// editDate is edit for dates. Blank keeps the current value.
func (a *App) editDate(label string, current time.Time) (*time.Time, error) {
	var out *time.Time
	err := a.parsed(fmt.Sprintf("%s [%s]", label, formatDate(current)), func(s string) error {
		if s == "" {
			return nil
		}
		v, err := parseDate(s)
		if err != nil {
			return err
		}
		out = &v
		return nil
	})
	return out, err
}

func (a *App) confirm(question string) (bool, error) {
	v, err := a.text(question + " (y/n)")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(v) {
	case "y", "yes", "s", "si":
		return true, nil
	}
	return false, nil
}

// choose prints a numbered menu and reprompts until a listed number is
// entered. 0 is always the exit entry.
func (a *App) choose(title string, items []string, exit string) (int, error) {
	a.printf("\n--- %s ---\n", title)
	for i, it := range items {
		a.printf("%d. %s\n", i+1, it)
	}
	a.printf("0. %s\n", exit)
	for {
		v, err := a.text("Select an option")
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 || n > len(items) {
			a.fail(errors.New("invalid option, try again"))
			continue
		}
		return n, nil
	}
}
