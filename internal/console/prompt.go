// Package console implements the interactive terminal surface.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"iss-report/internal/config"
	"iss-report/internal/models"
)

// Prompter asks questions on out and reads answers line by line from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// YesNo asks question until the answer starts with y or n, case-insensitively.
func (p *Prompter) YesNo(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s Y/N: ", question)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch {
		case strings.HasPrefix(strings.ToLower(answer), "y"):
			return true, nil
		case strings.HasPrefix(strings.ToLower(answer), "n"):
			return false, nil
		}
		fmt.Fprintln(p.out, "Invalid input")
		fmt.Fprintln(p.out, "Please enter a valid answer between Y and N")
	}
}

// BranchCodes reads a comma separated list of branch codes.
func (p *Prompter) BranchCodes(question string) ([]string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	return config.SplitCodes(line), nil
}

// ChooseReport lists the reports and asks for one by number or identifier.
func (p *Prompter) ChooseReport(options []models.ReportType) (models.ReportType, error) {
	var menu []string
	for i, t := range options {
		menu = append(menu, strconv.Itoa(i+1)+")"+t.Title())
	}
	for {
		fmt.Fprintln(p.out, strings.Join(menu, "  "))
		fmt.Fprint(p.out, "Choose a report category: ")
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, t := range options {
			if strings.EqualFold(answer, string(t)) {
				return t, nil
			}
		}
		fmt.Fprintf(p.out, "Invalid choice %q\n", answer)
	}
}
