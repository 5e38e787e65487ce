package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/auth"
)

// runToken prints a signed bearer token. The secret comes from
// GRAYLOGIC_JWT_SECRET so it never appears in shell history.
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	subject := fs.String("sub", "", "token subject (user or service name)")
	role := fs.String("role", string(auth.RoleOperator), "operator, automation or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("GRAYLOGIC_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("GRAYLOGIC_JWT_SECRET is not set")
	}

	token, err := auth.GenerateToken(*subject, auth.Role(*role), secret, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
