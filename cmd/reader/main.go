package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dom/reader/internal/client"
	"github.com/dom/reader/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global settings
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	storePath := os.Getenv("READER_STORE")
	if storePath == "" {
		path, err := client.DefaultStorePath()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		storePath = path
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.NewAPIClient(apiURL, client.NewSession(client.NewFileStore(storePath)))

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "register":
		err = registerCmd(ctx, api, args)
	case "login":
		err = loginCmd(ctx, api, args)
	case "logout":
		err = api.Logout()
		if err == nil {
			fmt.Println("Signed out")
		}
	case "whoami":
		err = whoamiCmd(api)
	case "search":
		err = searchCmd(ctx, api, args)
	case "books":
		err = booksCmd(ctx, api, args)
	case "forgot":
		err = emailCmd(ctx, "forgot", args, api.ForgotPassword, "Reset link sent")
	case "resend":
		err = emailCmd(ctx, "resend", args, api.ResendEmailConfirmation, "Confirmation link sent")
	case "reset":
		err = resetCmd(ctx, api, args)
	case "confirm":
		err = confirmCmd(ctx, api, args)
	case "passwd":
		err = passwdCmd(ctx, api, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Reader - command line client for the reading log

USAGE:
  reader <command> [options]

COMMANDS:
  register  Create an account and sign in
  login     Sign in and store the session token
  logout    Forget the stored session token
  whoami    Show the signed-in user from the stored token
  search    Search the book catalog
  books     Manage read books (list, add, update, delete)
  forgot    Email a password reset link
  reset     Set a new password with a reset code
  confirm   Confirm an email address
  resend    Email a fresh confirmation link
  passwd    Change the password of the signed-in user
  help      Show this help message

ENVIRONMENT:
  API_URL       Backend URL (default: http://localhost:8080)
  READER_STORE  Token store file (default: <config dir>/reader/storage.json)

EXAMPLES:
  reader register --email=a@x.com --password=Secret1! --terms
  reader search tolkien
  reader books add --name="The Hobbit" --catalog-id=pD6arNyKyi8C --start=2024-01-02
  reader books delete 12`)
}

func registerCmd(ctx context.Context, api *client.APIClient, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	terms := fs.Bool("terms", false, "Agree to the terms and conditions")
	fs.Parse(args)

	result, err := api.Register(ctx, client.Credentials{
		Email:         *email,
		Password:      *password,
		TermsAgreedTo: *terms,
	})
	if err != nil {
		return err
	}
	return reportAuth(api, result)
}

func loginCmd(ctx context.Context, api *client.APIClient, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	fs.Parse(args)

	result, err := api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return reportAuth(api, result)
}

func reportAuth(api *client.APIClient, result *client.AuthResponse) error {
	if !result.IsAuthSuccessful {
		return fmt.Errorf("%s", result.ErrorMessage)
	}
	return whoamiCmd(api)
}

func whoamiCmd(api *client.APIClient) error {
	state, err := api.Session().State()
	if err != nil {
		return err
	}
	if !state.Authenticated {
		fmt.Println("Not signed in")
		return nil
	}

	fmt.Printf("Signed in as %s (id: %s)\n", state.Claims.Name, state.Claims.UserID())
	if len(state.Claims.Roles) > 0 {
		fmt.Printf("  Roles:   %s\n", strings.Join(state.Claims.Roles, ", "))
	}
	if state.Claims.ExpiresAt != nil {
		fmt.Printf("  Expires: %s\n", state.Claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func searchCmd(ctx context.Context, api *client.APIClient, args []string) error {
	term := strings.Join(args, " ")
	result, err := api.SearchBooks(ctx, term)
	if err != nil {
		return err
	}

	fmt.Printf("%d results\n", result.TotalItems)
	for _, v := range result.Items {
		authors := strings.Join(v.VolumeInfo.Authors, ", ")
		fmt.Printf("  %-14s %s", v.ID, v.VolumeInfo.Title)
		if authors != "" {
			fmt.Printf(" (%s)", authors)
		}
		fmt.Println()
	}
	return nil
}

func booksCmd(ctx context.Context, api *client.APIClient, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("books needs a subcommand: list, add, update, delete")
	}

	switch args[0] {
	case "list":
		resp, err := api.Get(ctx, "readbooks")
		if err != nil {
			return err
		}
		var books []domain.ReadBook
		if err := resp.Decode(&books); err != nil {
			return err
		}
		for _, b := range books {
			fmt.Printf("  [%d] %s (%s)%s\n", b.ID, b.Name, b.ExternalCatalogID, formatPeriod(b))
		}
		return nil

	case "add", "update":
		fs := flag.NewFlagSet("books "+args[0], flag.ExitOnError)
		id := fs.Int64("id", 0, "Read book id (update only)")
		name := fs.String("name", "", "Book title")
		catalogID := fs.String("catalog-id", "", "Catalog volume id")
		start := fs.String("start", "", "Start date (YYYY-MM-DD)")
		end := fs.String("end", "", "End date (YYYY-MM-DD)")
		fs.Parse(args[1:])

		body := map[string]interface{}{
			"name":              *name,
			"externalCatalogId": *catalogID,
		}
		if *start != "" {
			body["startDate"] = *start
		}
		if *end != "" {
			body["endDate"] = *end
		}

		var resp *client.APIResponse
		var err error
		if args[0] == "add" {
			resp, err = api.Create(ctx, "readbooks", body)
		} else {
			body["id"] = *id
			resp, err = api.Update(ctx, "readbooks", body)
		}
		if err != nil {
			return err
		}

		var book domain.ReadBook
		if err := resp.Decode(&book); err != nil {
			return err
		}
		fmt.Printf("Saved [%d] %s\n", book.ID, book.Name)
		return nil

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("books delete needs an id")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}
		ok, err := api.Delete(ctx, "readbooks", id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("read book %d was not deleted", id)
		}
		fmt.Printf("Deleted %d\n", id)
		return nil
	}

	return fmt.Errorf("unknown books subcommand: %s", args[0])
}

func formatPeriod(b domain.ReadBook) string {
	if b.StartDate == nil {
		return ""
	}
	period := " " + b.StartDate.Format("2006-01-02") + " -"
	if b.EndDate != nil {
		period += " " + b.EndDate.Format("2006-01-02")
	}
	return period
}

func emailCmd(ctx context.Context, name string, args []string, send func(context.Context, string) (bool, error), done string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	fs.Parse(args)

	ok, err := send(ctx, *email)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("request was rejected")
	}
	fmt.Println(done)
	return nil
}

func resetCmd(ctx context.Context, api *client.APIClient, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "New password")
	confirm := fs.String("confirm", "", "New password again")
	code := fs.String("code", "", "Code from the reset link")
	fs.Parse(args)

	ok, err := api.ResetPassword(ctx, client.ResetPasswordRequest{
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		Code:            *code,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("password was not reset")
	}
	fmt.Println("Password reset, sign in with the new password")
	return nil
}

func confirmCmd(ctx context.Context, api *client.APIClient, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	userID := fs.String("user-id", "", "User id from the confirmation link")
	code := fs.String("code", "", "Code from the confirmation link")
	fs.Parse(args)

	ok, err := api.ConfirmEmail(ctx, *userID, *code)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("email was not confirmed")
	}
	fmt.Println("Email confirmed")
	return nil
}

func passwdCmd(ctx context.Context, api *client.APIClient, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	oldPassword := fs.String("old", "", "Current password")
	newPassword := fs.String("new", "", "New password")
	fs.Parse(args)

	resp, err := api.ChangePassword(ctx, client.ChangePasswordRequest{
		OldPassword: *oldPassword,
		NewPassword: *newPassword,
	})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s", strings.TrimSpace(resp.Message))
	}
	fmt.Println("Password changed")
	return nil
}
