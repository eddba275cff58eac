// Package interactive implements the menu-driven terminal mode.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/time/rate"

	omnidim "github.com/ryu-ryuk/omnidim-go"
	"github.com/ryu-ryuk/omnidim-go/internal/config"
	"github.com/ryu-ryuk/omnidim-go/internal/output"
	"github.com/ryu-ryuk/omnidim-go/internal/payload"
	"github.com/ryu-ryuk/omnidim-go/internal/views"
)

const backLabel = "← Back"

var errNoClient = errors.New("API key not configured, set one under Configuration")

// Options configures a Session. Client may be nil until a key is set.
type Options struct {
	Client     *omnidim.Client
	Settings   config.Settings
	ConfigPath string
	Prompter   Prompter
	Out        io.Writer
	Format     output.Format
	Limiter    *rate.Limiter
	Logger     *slog.Logger
}

// Session is one run of the interactive menu.
type Session struct {
	client   *omnidim.Client
	settings config.Settings
	path     string
	prompt   Prompter
	out      io.Writer
	format   output.Format
	limiter  *rate.Limiter
	logger   *slog.Logger
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

func New(opts Options) *Session {
	s := &Session{
		client:   opts.Client,
		settings: opts.Settings,
		path:     opts.ConfigPath,
		prompt:   opts.Prompter,
		out:      opts.Out,
		format:   opts.Format,
		limiter:  opts.Limiter,
		logger:   opts.Logger,
	}
	if s.prompt == nil {
		s.prompt = Terminal{}
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.format == "" {
		s.format = output.FormatTable
	}
	if s.limiter == nil {
		s.limiter = views.NewLimiter()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Run shows the main menu until the user exits or interrupts.
func (s *Session) Run(ctx context.Context) error {
	output.Header(s.out, "OmniDimension CLI")
	if s.client == nil {
		output.Warning(s.out, "No API key configured. Open Configuration to set one.")
	}

	menu := []action{
		{"Manage Agents", s.agentMenu},
		{"Manage Calls", s.callMenu},
		{"Manage Simulations", s.simulationMenu},
		{"Knowledge Base", s.knowledgeBaseMenu},
		{"Phone Numbers", s.phoneMenu},
		{"Integrations", s.integrationMenu},
		{"Configuration", s.configMenu},
	}
	labels := make([]string, 0, len(menu)+1)
	for _, a := range menu {
		labels = append(labels, a.label)
	}
	labels = append(labels, "Exit")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		i, err := s.prompt.Select("What would you like to do?", labels)
		if err != nil {
			if isInterrupt(err) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("reading menu choice: %w", err)
		}
		if i == len(menu) {
			output.Info(s.out, "Goodbye!")
			return nil
		}
		output.Header(s.out, menu[i].label)
		if err := menu[i].run(ctx); err != nil {
			return err
		}
	}
}

// submenu loops over actions until Back. Action failures are reported and
// the menu is shown again.
func (s *Session) submenu(ctx context.Context, title string, actions []action) error {
	labels := make([]string, 0, len(actions)+1)
	for _, a := range actions {
		labels = append(labels, a.label)
	}
	labels = append(labels, backLabel)

	for {
		i, err := s.prompt.Select(title, labels)
		if err != nil {
			if isInterrupt(err) {
				return nil
			}
			return fmt.Errorf("reading menu choice: %w", err)
		}
		if i == len(actions) {
			return nil
		}
		if err := actions[i].run(ctx); err != nil {
			switch {
			case isInterrupt(err):
				output.Info(s.out, "Cancelled")
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				s.logger.Debug("interactive action failed", "action", actions[i].label, "error", err)
				output.Error(s.out, "%s failed: %v", actions[i].label, err)
			}
		}
	}
}

func (s *Session) api() (*omnidim.Client, error) {
	if s.client == nil {
		return nil, errNoClient
	}
	return s.client, nil
}

func (s *Session) render(resp *omnidim.Response, columns []output.Column, listKeys ...string) error {
	return output.Render(s.out, s.format, resp.JSON, columns, listKeys...)
}

func (s *Session) askID(label string) (int, error) {
	raw, err := s.prompt.Input(label, "", func(v string) error {
		_, err := payload.ParseID(v, label)
		return err
	})
	if err != nil {
		return 0, err
	}
	return payload.ParseID(raw, label)
}

// askOptionalID returns 0 when the answer is blank.
func (s *Session) askOptionalID(label string) (int, error) {
	raw, err := s.prompt.Input(label+" (blank for none)", "", func(v string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		_, err := payload.ParseID(v, label)
		return err
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		return 0, err
	}
	return payload.ParseID(raw, label)
}

func (s *Session) askRequired(label, def string) (string, error) {
	v, err := s.prompt.Input(label, def, func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	})
	return strings.TrimSpace(v), err
}

func (s *Session) confirm(label string) (bool, error) {
	ok, err := s.prompt.Confirm(label)
	if err != nil {
		return false, err
	}
	if !ok {
		output.Info(s.out, "Cancelled")
	}
	return ok, nil
}

func (s *Session) reportCreated(what string, resp *omnidim.Response) {
	if id, ok := output.ExtractID(resp.JSON, "id"); ok {
		output.Success(s.out, "%s created with ID %d", what, id)
		return
	}
	output.Success(s.out, "%s created", what)
}
