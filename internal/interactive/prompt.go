package interactive

import (
	"errors"
	"io"

	"github.com/manifoldco/promptui"
)

// Prompter asks the user for input.
type Prompter interface {
	Select(label string, items []string) (int, error)
	Input(label, def string, validate func(string) error) (string, error)
	Secret(label string) (string, error)
	Confirm(label string) (bool, error)
}

// Terminal prompts on a TTY with promptui.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

func (t Terminal) Select(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Size:   len(items),
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}
	i, _, err := sel.Run()
	return i, err
}

func (t Terminal) Input(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: def != "",
		Validate:  validate,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	return p.Run()
}

func (t Terminal) Secret(label string) (string, error) {
	p := promptui.Prompt{
		Label:  label,
		Mask:   '*',
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}
	return p.Run()
}

// Confirm treats an answer other than y as a plain no.
func (t Terminal) Confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isInterrupt reports whether the user pressed Ctrl-C or closed input.
func isInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF)
}
