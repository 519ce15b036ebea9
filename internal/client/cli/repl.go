package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/linksphere/internal/client/services"
)

// printlnFn and printFn are test seams for user-facing REPL output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Home(ctx context.Context, args []string) error
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Sort(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Page(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Dashboard(ctx context.Context, args []string) error
	Admin(ctx context.Context, args []string) error
	Account(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Theme(ctx context.Context, args []string) error
}

type access int

const (
	anyone access = iota
	guestOnly
	membersOnly
)

type command struct {
	run    func(execIface, context.Context, []string) error
	access access
	usage  string
}

var commands = map[string]command{
	"home":      {execIface.Home, anyone, "home                      overview"},
	"register":  {execIface.Register, guestOnly, "register                  create an account"},
	"login":     {execIface.Login, guestOnly, "login                     sign in"},
	"verify":    {execIface.Verify, guestOnly, "verify [code]             confirm your email with the emailed code"},
	"resend":    {execIface.Resend, guestOnly, "resend                    send a new verification code"},
	"theme":     {execIface.Theme, anyone, "theme [system|light|dark|toggle]"},
	"logout":    {execIface.Logout, membersOnly, "logout                    sign out"},
	"upload":    {execIface.Upload, membersOnly, "upload                    share a new link"},
	"list":      {execIface.List, membersOnly, "list                      reload links and show the first page"},
	"search":    {execIface.Search, membersOnly, "search [text]             search titles and descriptions (no text clears)"},
	"sort":      {execIface.Sort, membersOnly, "sort <date|topic|uploader|url> [asc|desc] | sort off"},
	"filter":    {execIface.Filter, membersOnly, "filter <topic|uploader> <text> | filter clear"},
	"page":      {execIface.Page, membersOnly, "page <n>                  show page n"},
	"show":      {execIface.Show, membersOnly, "show <id>                 link details"},
	"open":      {execIface.Open, membersOnly, "open <id>                 open a link in the browser and count the click"},
	"delete":    {execIface.Delete, membersOnly, "delete <id>               delete a link"},
	"dashboard": {execIface.Dashboard, membersOnly, "dashboard                 your statistics"},
	"admin":     {execIface.Admin, membersOnly, "admin                     site statistics"},
	"account":   {execIface.Account, membersOnly, "account                   your profile"},
	"rename":    {execIface.Rename, membersOnly, "rename <username>         change your username"},
}

var aliases = map[string]string{
	"l":   "list",
	"ls":  "list",
	"add": "upload",
	"rm":  "delete",
	"/":   "home",
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The first word selects the command and the rest are its arguments.
// Commands that need a session are refused while logged out, and guest-only
// commands (login, register, verify, resend) are refused while logged in.
// Errors returned by handlers are printed and never end the loop.
func runREPL(ctx context.Context, a execIface, promptFn func() string, reader *bufio.Reader) {
	for {
		printFn(promptFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]
		if full, ok := aliases[name]; ok {
			name = full
		}

		switch name {
		case "help":
			printlnFn(helpText(a.isLoggedIn()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name, "(type 'help')")
			continue
		}

		switch {
		case cmd.access == membersOnly && !a.isLoggedIn():
			printlnFn("Please log in first (type 'login').")
			continue
		case cmd.access == guestOnly && a.isLoggedIn():
			printlnFn("You are already logged in. Type 'logout' to switch accounts.")
			continue
		}

		if err := cmd.run(a, ctx, args); err != nil {
			printlnFn("Error:", services.UserMessage(err))
		}
	}
}

func helpText(loggedIn bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range commandOrder {
		cmd := commands[name]
		if (cmd.access == membersOnly && !loggedIn) || (cmd.access == guestOnly && loggedIn) {
			continue
		}
		b.WriteString("  " + cmd.usage + "\n")
	}
	b.WriteString("  help | exit")
	return b.String()
}

var commandOrder = []string{
	"home", "register", "verify", "resend", "login",
	"list", "page", "search", "sort", "filter", "show", "open", "upload", "delete",
	"dashboard", "admin", "account", "rename", "theme", "logout",
}
