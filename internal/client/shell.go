package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/DayKeeper/internal/models"
)

const usage = `Available commands:
  help                       show this help
  register                   create an account and log in
  login                      log in
  logout                     log out
  show                       show the current month
  prev | next                show the previous or next month
  today                      show the month of today
  goto YYYY-MM               show the given month
  add YYYY-MM-DD <title>     add an event
  list                       list your events
  export [file]              write your events as iCalendar (stdout if no file)
  exit                       quit`

// Shell is the interactive command loop of the terminal calendar.
type Shell struct {
	ctrl   *Controller
	prompt *Prompter
	out    io.Writer
	opts   RenderOptions
}

// NewShell creates a Shell driving ctrl.
func NewShell(ctrl *Controller, prompt *Prompter, out io.Writer) *Shell {
	return &Shell{ctrl: ctrl, prompt: prompt, out: out, opts: DefaultRenderOptions()}
}

// Run reads commands until "exit", end of input or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) {
	if id, ok := s.ctrl.Identity(); ok {
		fmt.Fprintf(s.out, "Logged in as %s\n", id.Email)
		s.show()
	} else {
		fmt.Fprintln(s.out, "Type 'register' or 'login' to start, 'help' for all commands.")
	}

	for ctx.Err() == nil {
		line, ok := s.prompt.ReadLine("daykeeper> ")
		if !ok {
			fmt.Fprintln(s.out)
			return
		}
		if s.Execute(ctx, line) {
			return
		}
	}
}

// Execute runs one command line and reports whether the shell should quit.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, usage)
	case "register", "login":
		s.authenticate(ctx, args[0])
	case "logout":
		if err := s.ctrl.Logout(ctx); err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintln(s.out, "Logged out")
	case "show":
		s.show()
	case "prev":
		s.ctrl.Prev()
		s.show()
	case "next":
		s.ctrl.Next()
		s.show()
	case "today":
		s.ctrl.Today()
		s.show()
	case "goto":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: goto YYYY-MM")
			return false
		}
		if err := s.ctrl.Goto(args[1]); err != nil {
			s.fail(err)
			return false
		}
		s.show()
	case "add":
		if len(args) < 3 {
			fmt.Fprintln(s.out, "Usage: add YYYY-MM-DD <title>")
			return false
		}
		title := strings.Join(args[2:], " ")
		if err := s.ctrl.AddEvent(ctx, args[1], title); err != nil {
			s.fail(err)
			return false
		}
		fmt.Fprintln(s.out, "Event added")
	case "list":
		if !s.requireLogin() {
			return false
		}
		fmt.Fprintln(s.out, RenderEvents(s.ctrl.Events()))
	case "export":
		s.export(args[1:])
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) authenticate(ctx context.Context, cmd string) {
	email, ok := s.prompt.ReadLine("Email: ")
	if !ok {
		return
	}
	password, err := s.prompt.ReadPassword("Password: ")
	if err != nil {
		s.fail(err)
		return
	}

	if cmd == "register" {
		err = s.ctrl.Register(ctx, email, password)
	} else {
		err = s.ctrl.Login(ctx, email, password)
	}

	// A login whose events failed to load still succeeded.
	if err != nil && !errors.Is(err, ErrEventsNotLoaded) {
		s.fail(err)
		return
	}
	id, _ := s.ctrl.Identity()
	fmt.Fprintf(s.out, "Logged in as %s\n", id.Email)
	if err != nil {
		s.fail(err)
	}
	s.show()
}

func (s *Shell) export(args []string) {
	body, err := s.ctrl.ExportICS()
	if err != nil {
		s.fail(err)
		return
	}
	if len(args) == 0 {
		fmt.Fprint(s.out, body)
		return
	}
	if err := os.WriteFile(args[0], []byte(body), 0o600); err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Exported %d events to %s\n", len(s.ctrl.Events()), args[0])
}

func (s *Shell) show() {
	fmt.Fprintln(s.out, RenderMonth(s.ctrl.Month(), s.opts))
}

func (s *Shell) requireLogin() bool {
	if _, ok := s.ctrl.Identity(); !ok {
		s.fail(models.ErrUnauthenticated)
		return false
	}
	return true
}

// fail prints err in terms the user can act on.
func (s *Shell) fail(err error) {
	var msg string
	switch {
	case errors.Is(err, models.ErrAlreadyExists):
		msg = "An account with this email already exists."
	case errors.Is(err, models.ErrInvalidCredentials):
		msg = "Wrong email or password."
	case errors.Is(err, models.ErrUnauthenticated):
		msg = "Please log in first."
	case errors.Is(err, models.ErrCorruptData):
		msg = "Saved data was unreadable and has been reset."
	case errors.Is(err, models.ErrStoreUnavailable):
		msg = "Storage is unavailable; changes are kept until you exit."
	default:
		msg = err.Error()
	}
	fmt.Fprintln(s.out, "Error:", msg)
}
