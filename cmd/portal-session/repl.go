package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/apiclient"
	"github.com/Currypiekers/bestattungssoftware-portfolio/internal/bootstrap"
	domainsession "github.com/Currypiekers/bestattungssoftware-portfolio/internal/domain/session"
	apperrors "github.com/Currypiekers/bestattungssoftware-portfolio/internal/errors"
)

// errQuit ends the read loop without an error.
var errQuit = errors.New("quit")

type commandFn func(ctx context.Context, r *repl, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			usage:       "login <username> <password>",
			description: "Exchange credentials for a session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			usage:       "logout",
			description: "End the session and clear stored credentials",
			run:         runLogout,
		},
		"status": {
			name:        "status",
			usage:       "status",
			description: "Show session state, tenant and current view",
			run:         runStatus,
		},
		"whoami": {
			name:        "whoami",
			usage:       "whoami",
			description: "Show the stored user profile",
			run:         runWhoami,
		},
		"company": {
			name:        "company",
			usage:       "company",
			description: "Show the cached company profile",
			run:         runCompany,
		},
		"tenant": {
			name:        "tenant",
			usage:       "tenant [name]",
			description: "Show or switch the tenant (anonymous only)",
			run:         runTenant,
		},
		"get": {
			name:        "get",
			usage:       "get <path>",
			description: "Issue an authenticated GET against the tenant backend",
			run:         runGet,
		},
		"help": {
			name:        "help",
			usage:       "help",
			description: "List commands",
			run:         runHelp,
		},
		"quit": {
			name:        "quit",
			usage:       "quit",
			description: "Leave the client; the session stays stored",
			run:         func(context.Context, *repl, []string) error { return errQuit },
		},
	}
}

// repl reads commands line by line. Every line counts as user activity.
type repl struct {
	session *bootstrap.SessionContainer
	in      io.Reader
	out     io.Writer
}

func newREPL(sc *bootstrap.SessionContainer, in io.Reader, out io.Writer) *repl {
	return &repl{session: sc, in: in, out: out}
}

// Run processes input until EOF, quit or ctx cancellation.
func (r *repl) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	r.prompt()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line := <-lines:
			if err := r.Exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				_ = writef(r.out, "error: %s\n", userMessage(err))
			}
			r.prompt()
		}
	}
}

// Exec runs a single command line.
func (r *repl) Exec(ctx context.Context, line string) error {
	r.session.Activity.Publish(domainsession.InteractionKeyPress)

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := commands()[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return cmd.run(ctx, r, fields[1:])
}

func (r *repl) prompt() {
	tenant := r.session.Controller.Tenant()
	if tenant == "" {
		tenant = "-"
	}
	_ = writef(r.out, "%s> ", tenant)
}

func runLogin(ctx context.Context, r *repl, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <username> <password>")
	}
	res, err := r.session.Controller.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return writef(r.out, "logged in as %s (%s) at tenant %q\n", res.Profile.Username, res.Profile.Role, res.Tenant)
}

func runLogout(ctx context.Context, r *repl, _ []string) error {
	r.session.Controller.Logout(ctx)
	return writef(r.out, "logged out\n")
}

func runStatus(ctx context.Context, r *repl, _ []string) error {
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"state", string(r.session.Controller.State())},
		{"tenant", r.session.Controller.Tenant()},
		{"base url", r.session.Tenants.CurrentBaseAddress()},
		{"view", string(r.session.Navigator.Current())},
		{"monitor", fmt.Sprintf("%t", r.session.Monitor.Running())},
	}
	if raw, ok, err := r.session.Store.Get(ctx, domainsession.KeyTokenExpiration); err == nil && ok {
		if deadline, perr := domainsession.ParseDeadline(raw); perr == nil {
			rows = append(rows, [2]string{"idle deadline", deadline.Format("2006-01-02 15:04:05 MST")})
		}
	}
	for _, row := range rows {
		if err := writef(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runWhoami(ctx context.Context, r *repl, _ []string) error {
	profile, ok := r.session.Controller.Profile(ctx)
	if !ok {
		return errors.New("not logged in")
	}
	return writeJSON(r.out, profile)
}

func runCompany(ctx context.Context, r *repl, _ []string) error {
	company, ok := r.session.Controller.Company(ctx)
	if !ok {
		return errors.New("no company profile stored")
	}
	return writef(r.out, "%s\n", company.Raw)
}

func runTenant(ctx context.Context, r *repl, args []string) error {
	if len(args) == 0 {
		return writef(r.out, "%s\n", r.session.Controller.Tenant())
	}
	if err := r.session.Controller.SwitchTenant(ctx, args[0]); err != nil {
		return err
	}
	return writef(r.out, "tenant set to %q\n", args[0])
}

func runGet(ctx context.Context, r *repl, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <path>")
	}
	var body json.RawMessage
	if err := r.session.Client.Get(ctx, strings.TrimPrefix(args[0], "/"), &body); err != nil {
		return err
	}
	if len(body) == 0 {
		return writef(r.out, "(empty)\n")
	}
	return writef(r.out, "%s\n", body)
}

func runHelp(_ context.Context, r *repl, _ []string) error {
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		if err := writef(tw, "  %s\t%s\n", cmds[name].usage, cmds[name].description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// userMessage prefers the message meant for display over the wrapped chain.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	if code := apiclient.StatusCode(err); code != 0 {
		return fmt.Sprintf("request failed with status %d", code)
	}
	return err.Error()
}

func writeNavigation(w io.Writer, view domainsession.View) {
	_ = writef(w, "\n-> %s\n", view)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
