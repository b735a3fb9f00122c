// Package admin implements the account management commands.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"demo/interview/internal/model"
)

// ProfileCreator is the slice of the service the commands need.
type ProfileCreator interface {
	CreateUser(ctx context.Context, in model.CreateProfileInput) (model.UserProfile, error)
	CreateSuperuser(ctx context.Context, in model.CreateProfileInput) (model.UserProfile, error)
}

type Command struct {
	Name  string
	Input model.CreateProfileInput
}

// ParseArgs parses "createsuperuser|createuser [flags]".
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, errors.New("usage: admin createsuperuser|createuser [flags]")
	}
	cmd := Command{Name: args[0]}
	switch cmd.Name {
	case "createsuperuser", "createuser":
	default:
		return Command{}, fmt.Errorf("unknown command %q", cmd.Name)
	}

	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cmd.Input.Email, "email", "", "email address (required)")
	fs.StringVar(&cmd.Input.Password, "password", "", "password (required for createsuperuser)")
	fs.StringVar(&cmd.Input.Username, "username", "", "optional unique username")
	fs.StringVar(&cmd.Input.FirstName, "first-name", "", "first name")
	fs.StringVar(&cmd.Input.LastName, "last-name", "", "last name")
	fs.BoolVar(&cmd.Input.IsAdmin, "admin", false, "set the is_admin flag")
	if err := fs.Parse(args[1:]); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// Run executes cmd and writes a one-line summary to out.
func Run(ctx context.Context, svc ProfileCreator, cmd Command, out io.Writer) error {
	create := svc.CreateUser
	if cmd.Name == "createsuperuser" {
		create = svc.CreateSuperuser
	}
	p, err := create(ctx, cmd.Input)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("invalid input: %w", ve)
		}
		return err
	}
	_, err = fmt.Fprintf(out, "created %s id=%s staff=%t superuser=%t\n", p, p.ID, p.IsStaff, p.IsSuperuser)
	return err
}
