// Package main is the interactive quote browser client. It drives the same
// application layer as the API server, but keeps a local session: the
// stay-logged-in preference and the persisted tokens live in the preference
// store, and a restored session is re-attached to the gateway on startup.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/quoteapp/quoted/internal/adapters/clients"
	"github.com/quoteapp/quoted/internal/adapters/clients/supabase"
	"github.com/quoteapp/quoted/internal/adapters/prefs"
	"github.com/quoteapp/quoted/internal/app"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/platform/config"
	"github.com/quoteapp/quoted/internal/platform/logging"
	"github.com/quoteapp/quoted/internal/ports"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The terminal is the UI; logs go to the rolling file when enabled,
	// otherwise they are discarded.
	logger := clientLogger(cfg)
	slog.SetDefault(logger)

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Supabase.URL,
		ServiceName: "supabase",
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	gateway := supabase.New(supabase.Config{
		Client:  httpClient,
		BaseURL: cfg.Supabase.URL,
		AnonKey: cfg.Supabase.AnonKey,
		Logger:  logger,
	})

	store, err := prefs.Open(prefs.Config{
		FilePath: cfg.Session.FilePath,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}

	authService := app.NewAuthService(app.AuthServiceConfig{
		Auth:     gateway,
		Tokens:   gateway,
		Sessions: store,
		Logger:   logger,
	})

	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Backend:  gateway,
		Flags:    config.NewStaticFlags(cfg.Flags),
		Logger:   logger,
		PageSize: cfg.Quotes.PageSize,
	})

	cli := &cli{
		auth:   authService,
		quotes: quoteService,
		out:    os.Stdout,
	}

	return cli.repl(context.Background(), os.Stdin)
}

// clientLogger builds a logger that keeps the terminal clean.
func clientLogger(cfg *config.Config) *slog.Logger {
	if !cfg.Log.File.Enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  "json",
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    true,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
}

type cli struct {
	auth   *app.AuthService
	quotes *app.QuoteService
	out    io.Writer
}

// repl reads commands until EOF or "quit".
func (c *cli) repl(ctx context.Context, in io.Reader) error {
	if session, ok := c.auth.Restore(); ok {
		fmt.Fprintf(c.out, "welcome back, %s\n", session.Name)
	}

	c.showStartup(ctx)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(c.out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}

		c.dispatch(ctx, fields[0], fields[1:])
	}
}

func (c *cli) showStartup(ctx context.Context) {
	userID := ""
	if session, ok := c.auth.CurrentSession(); ok {
		userID = session.UserID
	}

	content := c.quotes.LoadStartupContent(ctx, userID)

	fmt.Fprintf(c.out, "quote of the day: %q (%s)\n", content.Daily.Text, content.Daily.Author)

	if len(content.Favorites) > 0 {
		fmt.Fprintf(c.out, "you have %d favorite(s)\n", len(content.Favorites))
	}
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) {
	var err error

	switch cmd {
	case "help":
		c.printHelp()
	case "signup":
		err = c.signUp(ctx, args)
	case "login":
		err = c.login(ctx, args)
	case "logout":
		err = c.auth.Logout()
	case "recover":
		err = c.recover(ctx, args)
	case "stay":
		err = c.stay(args)
	case "whoami":
		c.whoami()
	case "daily":
		quote := c.quotes.QuoteOfTheDay(ctx)
		c.printQuote(quote)
	case "quotes":
		err = c.listQuotes(ctx, args)
	case "search":
		err = c.search(ctx, args)
	case "categories":
		fmt.Fprintln(c.out, strings.Join(c.quotes.Categories(), ", "))
	case "favorites":
		err = c.listFavorites(ctx)
	case "fav":
		err = c.favorite(ctx, args, true)
	case "unfav":
		err = c.favorite(ctx, args, false)
	case "collections":
		err = c.listCollections(ctx)
	case "newcol":
		err = c.createCollection(ctx, args)
	case "delcol":
		err = c.deleteCollection(ctx, args)
	case "col":
		err = c.showCollection(ctx, args)
	case "coladd":
		err = c.collectionQuote(ctx, args, true)
	case "colrm":
		err = c.collectionQuote(ctx, args, false)
	default:
		fmt.Fprintf(c.out, "unknown command %q, try \"help\"\n", cmd)
	}

	if err != nil {
		c.printError(err)
	}
}

func (c *cli) printHelp() {
	fmt.Fprint(c.out, `commands:
  signup <email> <password> <name>   create an account
  login <email> <password>           sign in
  logout                             sign out
  recover <email>                    request a password reset email
  stay on|off                        persist the session across restarts
  whoami                             show the signed-in user
  daily                              quote of the day
  quotes [page]                      browse quotes, newest first
  search <text>                      search quote text
  categories                         list categories
  favorites                          list your favorites
  fav <quote-id>                     add a favorite
  unfav <quote-id>                   remove a favorite
  collections                        list your collections
  newcol <name>                      create a collection
  delcol <collection-id>             delete a collection
  col <collection-id>                show a collection's quotes
  coladd <collection-id> <quote-id>  add a quote to a collection
  colrm <collection-id> <quote-id>   remove a quote from a collection
  quit                               exit
`)
}

func (c *cli) signUp(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return domain.ErrInvalidInput
	}

	result, err := c.auth.SignUp(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}

	if result.ConfirmationPending {
		fmt.Fprintln(c.out, "account created, check your email to confirm before logging in")
		return nil
	}

	fmt.Fprintf(c.out, "signed up and logged in as %s\n", result.Session.Name)

	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return domain.ErrInvalidInput
	}

	session, err := c.auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "logged in as %s\n", session.Name)

	return nil
}

func (c *cli) recover(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return domain.ErrInvalidInput
	}

	if err := c.auth.ResetPassword(ctx, args[0]); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "recovery email requested")

	return nil
}

func (c *cli) stay(args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return domain.ErrInvalidInput
	}

	if err := c.auth.SetStayLoggedIn(args[0] == "on"); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "stay-logged-in is %s\n", args[0])

	return nil
}

func (c *cli) whoami() {
	session, ok := c.auth.CurrentSession()
	if !ok {
		fmt.Fprintln(c.out, "not logged in")
		return
	}

	fmt.Fprintf(c.out, "%s <%s> (id %s)\n", session.Name, session.Email, session.UserID)
}

func (c *cli) listQuotes(ctx context.Context, args []string) error {
	page := 0

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return domain.ErrInvalidInput
		}

		page = n
	}

	quotes, err := c.quotes.FetchQuotes(ctx, ports.QuoteQuery{Page: page})
	if err != nil {
		return err
	}

	c.printQuotes(quotes)

	return nil
}

func (c *cli) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return domain.ErrInvalidInput
	}

	quotes, err := c.quotes.FetchQuotes(ctx, ports.QuoteQuery{Search: strings.Join(args, " ")})
	if err != nil {
		return err
	}

	c.printQuotes(quotes)

	return nil
}

func (c *cli) listFavorites(ctx context.Context) error {
	session, ok := c.auth.CurrentSession()
	if !ok {
		return domain.ErrUnauthorized
	}

	quotes, err := c.quotes.Favorites(ctx, session.UserID)
	if err != nil {
		return err
	}

	c.printQuotes(quotes)

	return nil
}

func (c *cli) favorite(ctx context.Context, args []string, add bool) error {
	if len(args) != 1 {
		return domain.ErrInvalidInput
	}

	session, ok := c.auth.CurrentSession()
	if !ok {
		return domain.ErrUnauthorized
	}

	if add {
		return c.quotes.AddToFavorites(ctx, session.UserID, args[0])
	}

	return c.quotes.RemoveFromFavorites(ctx, session.UserID, args[0])
}

func (c *cli) listCollections(ctx context.Context) error {
	session, ok := c.auth.CurrentSession()
	if !ok {
		return domain.ErrUnauthorized
	}

	collections, err := c.quotes.Collections(ctx, session.UserID)
	if err != nil {
		return err
	}

	if len(collections) == 0 {
		fmt.Fprintln(c.out, "no collections yet")
		return nil
	}

	for _, col := range collections {
		fmt.Fprintf(c.out, "%s  %s\n", col.ID, col.Name)
	}

	return nil
}

func (c *cli) createCollection(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return domain.ErrInvalidInput
	}

	session, ok := c.auth.CurrentSession()
	if !ok {
		return domain.ErrUnauthorized
	}

	collection, err := c.quotes.CreateCollection(ctx, session.UserID, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "created collection %s\n", collection.ID)

	return nil
}

func (c *cli) deleteCollection(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return domain.ErrInvalidInput
	}

	session, ok := c.auth.CurrentSession()
	if !ok {
		return domain.ErrUnauthorized
	}

	return c.quotes.DeleteCollection(ctx, session.UserID, args[0])
}

func (c *cli) showCollection(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return domain.ErrInvalidInput
	}

	quotes, err := c.quotes.CollectionQuotes(ctx, args[0])
	if err != nil {
		return err
	}

	c.printQuotes(quotes)

	return nil
}

func (c *cli) collectionQuote(ctx context.Context, args []string, add bool) error {
	if len(args) != 2 {
		return domain.ErrInvalidInput
	}

	if add {
		return c.quotes.AddQuoteToCollection(ctx, args[0], args[1])
	}

	return c.quotes.RemoveQuoteFromCollection(ctx, args[0], args[1])
}

func (c *cli) printQuotes(quotes []*domain.Quote) {
	if len(quotes) == 0 {
		fmt.Fprintln(c.out, "no quotes")
		return
	}

	for _, q := range quotes {
		c.printQuote(q)
	}
}

func (c *cli) printQuote(q *domain.Quote) {
	fmt.Fprintf(c.out, "[%s] %q (%s, %s)\n", q.ID, q.Text, q.Author, q.Category)
}

// printError shows backend messages verbatim; everything else gets the
// domain error text, which is already written for end users.
func (c *cli) printError(err error) {
	if msg := domain.APIMessage(err); msg != "" {
		fmt.Fprintln(c.out, msg)
		return
	}

	fmt.Fprintln(c.out, err.Error())
}
