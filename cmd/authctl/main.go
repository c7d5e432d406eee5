package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/tokenstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	c := config.New()
	provider, err := newProvider(c)
	if err != nil {
		return err
	}
	provider.Initialize()

	ctx := context.Background()

	switch args[0] {
	case "login":
		return loginCmd(ctx, provider, args[1:])
	case "logout":
		provider.Logout()
		fmt.Println("You have been logged out")
		return nil
	case "register":
		return registerCmd(ctx, provider, args[1:])
	case "whoami":
		return whoamiCmd(provider)
	case "profile":
		return profileCmd(ctx, provider, args[1:])
	case "change-password":
		return changePasswordCmd(ctx, provider, args[1:])
	case "reset-request":
		return resetRequestCmd(ctx, provider, args[1:])
	case "reset-confirm":
		return resetConfirmCmd(ctx, provider, args[1:])
	case "serve":
		return serveCmd(provider, c)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newProvider(c config.Config) (*session.Provider, error) {
	store := tokenstore.NewFileStore(c.GetTokenFile())
	return session.NewProvider(c.GetBaseURL(), store,
		session.WithHTTPClient(&http.Client{Timeout: c.GetHTTPTimeout()}),
		session.WithExpirySkew(c.GetExpirySkew()),
		session.WithLogger(zlog.Logger),
	)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: authctl <command> [flags]

Commands:
  login            Log in with email and password
  logout           Clear the stored session
  register         Create a new account
  whoami           Show the current session identity
  profile          Show or update the profile (-full-name, -bio, -image)
  change-password  Change the account password
  reset-request    Request a password reset link
  reset-confirm    Complete a password reset from an emailed link
  serve            Run the guarded demo UI`)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
