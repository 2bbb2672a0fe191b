package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/treasury"
	"google.golang.org/genai"
)

// Session is an interactive conversation about a treasury book. The user
// talks to the desk lead who dispatches questions to the desk experts.
type Session struct {
	w    io.Writer
	r    *bufio.Reader
	book *treasury.Book

	Lead    *Expert
	Experts []*Expert

	// Format turns the markdown answers into terminal output, verbatim when nil.
	Format func(markdown string) string

	briefed bool
}

// NewSession opens a conversation about the book of sim, written to w and
// read from r. The desk lead runs on model.
func NewSession(w io.Writer, r io.Reader, model string, sim *treasury.Simulator, experts ...*Expert) *Session {
	return &Session{
		w:       w,
		r:       bufio.NewReader(r),
		book:    sim.Book,
		Lead:    NewLead(model, experts...),
		Experts: experts,
	}
}

// Start opens a chat for the lead and every expert.
func (s *Session) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range append([]*Expert{s.Lead}, s.Experts...) {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("cannot start %s: %w", e.Name, err)
		}
	}
	return nil
}

const prompt = "assist> "

// quit reports whether input ends the session.
func quit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "bye", "quit", "exit":
		return true
	}
	return false
}

// Run reads questions until the user quits or r is exhausted. prompts are
// asked first, as if typed.
func (s *Session) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if s.Lead.chat == nil {
		if err := s.Start(ctx, client); err != nil {
			return err
		}
	}

	brief := Briefing(s.book)
	fmt.Fprintf(s.w, "tsy treasury desk. %s\nType 'bye' to exit.\n", headline(s.book))

	for {
		fmt.Fprint(s.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(s.w, input)
		} else {
			line, err := s.r.ReadString('\n')
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			input = line
		}
		if quit(input) {
			return nil
		}

		parts := []*genai.Part{{Text: input}}
		if !s.briefed {
			// the lead gets the state of the book with the first question
			parts = append([]*genai.Part{{Text: brief}}, parts...)
			s.briefed = true
		}
		content, err := s.Lead.Ask(ctx, parts...)
		if err != nil {
			return err
		}
		answer := content.Parts[0].Text
		if s.Format != nil {
			answer = s.Format(answer)
		}
		fmt.Fprintln(s.w, answer)
	}
}
