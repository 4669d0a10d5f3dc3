package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"modelcatalog/internal/auth"
	"modelcatalog/internal/storage"
)

type tokenCmd struct {
	Subject string        `arg:"" help:"Operator identity placed in the sub claim."`
	Roles   []string      `short:"r" default:"viewer" help:"Roles to grant (admin, viewer)."`
	TTL     time.Duration `default:"12h" help:"Token lifetime."`
	Secret  string        `env:"JWT_SECRET" required:"" help:"HS256 signing secret."`
}

func (c *tokenCmd) Run(out io.Writer) error {
	roles, err := auth.ParseRoles(c.Roles)
	if err != nil {
		return err
	}

	token, exp, err := auth.GenerateAdminJWT([]byte(c.Secret), c.Subject, roles, c.TTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
	return nil
}

type keygenCmd struct{}

func (keygenCmd) Run(out io.Writer) error {
	key, err := storage.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, key)
	return nil
}

type cli struct {
	Token  tokenCmd  `cmd:"" help:"Mint an admin JWT."`
	Keygen keygenCmd `cmd:"" help:"Generate an ENCRYPTION_KEY value."`
}

func run(args []string, out io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("issue-token"),
		kong.Description("Operator tooling for the model catalog service."),
		kong.Writers(out, os.Stderr),
		kong.BindTo(out, (*io.Writer)(nil)),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "issue-token: %v\n", err)
		os.Exit(1)
	}
}
