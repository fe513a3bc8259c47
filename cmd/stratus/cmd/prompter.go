package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stratus-cloud/stratus/pkg/linker"
)

// terminalPrompter answers linker prompts on stdin/stdout. Kept minimal on
// purpose: questions are one-shot line reads, not a full-screen UI.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *terminalPrompter) Confirm(message string, def bool) (bool, error) {
	hint := "[Y/n]"
	if !def {
		hint = "[y/N]"
	}
	fmt.Fprintf(p.out, "%s %s ", message, hint)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *terminalPrompter) Select(message string, options []string, def string) (string, error) {
	fmt.Fprintln(p.out, message)
	for i, opt := range options {
		marker := " "
		if opt == def {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, opt)
	}
	fmt.Fprintf(p.out, "choice [%s]: ", def)
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	if n, nerr := strconv.Atoi(answer); nerr == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, opt := range options {
		if opt == answer {
			return opt, nil
		}
	}
	return "", fmt.Errorf("invalid choice %q", answer)
}

func (p *terminalPrompter) MultiSelect(message string, options []linker.SelectOption) ([]int, error) {
	fmt.Fprintln(p.out, message)
	checked := make([]int, 0, len(options))
	for i, opt := range options {
		marker := "[ ]"
		if opt.Checked {
			marker = "[x]"
			checked = append(checked, i)
		}
		fmt.Fprintf(p.out, " %s %d) %s\n", marker, i+1, opt.Label)
	}
	fmt.Fprint(p.out, "select (comma-separated, empty keeps the checked ones): ")
	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return checked, nil
	}
	var picked []int
	for _, field := range strings.Split(answer, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, nerr := strconv.Atoi(field)
		if nerr != nil || n < 1 || n > len(options) {
			return nil, fmt.Errorf("invalid choice %q", field)
		}
		picked = append(picked, n-1)
	}
	return picked, nil
}
