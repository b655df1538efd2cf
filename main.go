package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/illarion/sprintdeck/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "login":
		runLogin(ctx, os.Args[2:])
	case "logout":
		runLogout(ctx, os.Args[2:])
	case "status":
		runNoArgs(ctx, "status", os.Args[2:], cmd.Status)
	case "projects":
		runNoArgs(ctx, "projects", os.Args[2:], cmd.Projects)
	case "select":
		runOneArg(ctx, "select", "<KEY>", os.Args[2:], cmd.Select)
	case "sprints":
		runNoArgs(ctx, "sprints", os.Args[2:], cmd.Sprints)
	case "issues":
		runOneArg(ctx, "issues", "<sprint-id>", os.Args[2:], cmd.Issues)
	case "backlog":
		runNoArgs(ctx, "backlog", os.Args[2:], cmd.Backlog)
	case "members":
		runNoArgs(ctx, "members", os.Args[2:], cmd.Members)
	case "board":
		runBoard(ctx, os.Args[2:])
	case "standup":
		runStandup(ctx, os.Args[2:])
	case "transitions":
		runOneArg(ctx, "transitions", "<ISSUE>", os.Args[2:], cmd.Transitions)
	case "transition":
		runTransition(ctx, os.Args[2:])
	case "comments":
		runOneArg(ctx, "comments", "<ISSUE>", os.Args[2:], cmd.Comments)
	case "comment":
		runComment(ctx, os.Args[2:])
	case "sweep":
		runSweep(ctx, os.Args[2:])
	case "compact":
		runNoArgs(ctx, "compact", os.Args[2:], cmd.Compact)
	case "session":
		runSession(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runNoArgs(ctx context.Context, name string, args []string, run func(context.Context)) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	parseFlags(fs, args)
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Usage: sprintdeck %s\n", name)
		os.Exit(1)
	}

	run(ctx)
}

func runOneArg(ctx context.Context, name, argName string, args []string, run func(context.Context, string)) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	parseFlags(fs, args)
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: sprintdeck %s %s\n", name, argName)
		os.Exit(1)
	}

	run(ctx, fs.Arg(0))
}

func runLogin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	verify := fs.Bool("verify", false, "Check the credentials against the tracker")
	parseFlags(fs, args)

	cmd.Login(ctx, *verify)
}

func runLogout(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	all := fs.Bool("all", false, "Drop the whole session, not only credentials")
	parseFlags(fs, args)

	cmd.Logout(ctx, *all)
}

func runBoard(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("board", flag.ExitOnError)
	watch := fs.Bool("watch", false, "Refresh until interrupted")
	interval := fs.Duration("interval", 30*time.Second, "Refresh interval in watch mode")
	sprint := fs.Int("sprint", 0, "Sprint ID (default: the active sprint)")
	parseFlags(fs, args)

	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --interval must be positive")
		os.Exit(1)
	}

	cmd.Board(ctx, *sprint, *watch, *interval)
}

func runStandup(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("standup", flag.ExitOnError)
	all := fs.Bool("all", false, "Print the whole speaking order at once")
	sprint := fs.Int("sprint", 0, "Sprint ID (default: the active sprint)")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed for the speaking order")
	parseFlags(fs, args)

	cmd.Standup(ctx, *sprint, *all, *seed)
}

func runTransition(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("transition", flag.ExitOnError)
	parseFlags(fs, args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: sprintdeck transition <ISSUE> <transition-id|name>")
		os.Exit(1)
	}

	cmd.Transition(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "))
}

func runComment(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	parseFlags(fs, args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: sprintdeck comment <ISSUE> <text>")
		os.Exit(1)
	}

	cmd.Comment(ctx, fs.Arg(0), strings.Join(fs.Args()[1:], " "))
}

func runSweep(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	verboseShort := fs.Bool("v", false, "Print vault counters")
	verboseLong := fs.Bool("verbose", false, "Print vault counters")
	parseFlags(fs, args)

	cmd.Sweep(ctx, *verboseShort || *verboseLong)
}

func runSession(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sprintdeck session <new|list>")
		os.Exit(1)
	}
	switch args[0] {
	case "new":
		cmd.SessionNew()
	case "list":
		cmd.SessionList()
	default:
		fmt.Fprintf(os.Stderr, "Unknown session command: %s\n", args[0])
		os.Exit(1)
	}
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sprintdeck keyring <save|delete|status>")
		os.Exit(1)
	}
	switch args[0] {
	case "save":
		cmd.KeyringSave()
	case "delete":
		cmd.KeyringDelete()
	case "status":
		cmd.KeyringStatus()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sprintdeck completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("sprintdeck - sprint board for the terminal with an encrypted session vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sprintdeck <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login        Store tracker credentials in the session")
	fmt.Println("  logout       Forget stored credentials")
	fmt.Println("  status       Show session contents and expiry")
	fmt.Println("  projects     List visible projects")
	fmt.Println("  select       Select the current project")
	fmt.Println("  sprints      List sprints of the selected project")
	fmt.Println("  issues       List issues of a sprint")
	fmt.Println("  backlog      List all issues of the selected project")
	fmt.Println("  members      List assignable members of the selected project")
	fmt.Println("  board        Show the active sprint grouped by status")
	fmt.Println("  standup      Call on sprint members in random order")
	fmt.Println("  transitions  List status transitions of an issue")
	fmt.Println("  transition   Move an issue to another status")
	fmt.Println("  comments     Show the comments of an issue")
	fmt.Println("  comment      Comment on an issue")
	fmt.Println("  sweep        Remove expired session items")
	fmt.Println("  compact      Compact the session database")
	fmt.Println("  session      Create or list sessions")
	fmt.Println("  keyring      Manage the encryption passphrase in the OS keyring")
	fmt.Println("  completion   Generate shell completions")
	fmt.Println("  help         Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  sprintdeck login --verify        # Store and check credentials")
	fmt.Println("  sprintdeck select DEV            # Work on project DEV")
	fmt.Println("  sprintdeck board --watch         # Live sprint board")
	fmt.Println()
	fmt.Println("Use 'sprintdeck help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "login":
		fmt.Println("sprintdeck login [--verify]")
		fmt.Println()
		fmt.Println("Prompts for project name, tracker URL, email and API token and stores")
		fmt.Println("them in the current session. Email and token are encrypted.")
		fmt.Println("Credentials expire after the session timeout (default 60 minutes).")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --verify   Fetch the project list to check the credentials")
	case "logout":
		fmt.Println("sprintdeck logout [--all]")
		fmt.Println()
		fmt.Println("Removes the stored credentials and project selection.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --all      Drop the whole session")
	case "status":
		fmt.Println("sprintdeck status")
		fmt.Println()
		fmt.Println("Shows the stored credentials (token masked), the selected project and")
		fmt.Println("the age and expiry of every stored item.")
		fmt.Println()
		fmt.Println("Does not contact the tracker.")
	case "projects":
		fmt.Println("sprintdeck projects")
		fmt.Println()
		fmt.Println("Lists the projects visible with the stored credentials.")
		fmt.Println("The selected project is marked with *.")
	case "select":
		fmt.Println("sprintdeck select <KEY>")
		fmt.Println()
		fmt.Println("Stores the project with the given key as the current selection")
		fmt.Println("and shows what changed compared to the previous one.")
	case "sprints":
		fmt.Println("sprintdeck sprints")
		fmt.Println()
		fmt.Println("Lists active and future sprints of the selected project.")
	case "issues":
		fmt.Println("sprintdeck issues <sprint-id>")
		fmt.Println()
		fmt.Println("Lists the issues of a sprint ordered by status.")
	case "backlog":
		fmt.Println("sprintdeck backlog")
		fmt.Println()
		fmt.Println("Lists every issue of the selected project.")
	case "members":
		fmt.Println("sprintdeck members")
		fmt.Println()
		fmt.Println("Lists the people who can be assigned issues in the selected project.")
	case "board":
		fmt.Println("sprintdeck board [--watch] [--interval 30s] [--sprint <id>]")
		fmt.Println()
		fmt.Println("Shows the active sprint of the selected project grouped by status.")
		fmt.Println("In watch mode expired session items are swept in the background.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --watch      Refresh until interrupted")
		fmt.Println("  --interval   Refresh interval (default 30s)")
		fmt.Println("  --sprint     Show this sprint instead of the active one")
	case "standup":
		fmt.Println("sprintdeck standup [--all] [--sprint <id>] [--seed <n>]")
		fmt.Println()
		fmt.Println("Calls on the people of the active sprint in random order, without")
		fmt.Println("repeats, and lists the tickets of each one ordered by status.")
		fmt.Println("Answer n (next), p (previous), r (reset) or q (quit) at the prompt.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --all        Print the whole speaking order at once")
		fmt.Println("  --sprint     Use this sprint instead of the active one")
		fmt.Println("  --seed       Random seed, to repeat an order")
	case "transitions":
		fmt.Println("sprintdeck transitions <ISSUE>")
		fmt.Println()
		fmt.Println("Lists the status transitions available for an issue.")
	case "transition":
		fmt.Println("sprintdeck transition <ISSUE> <transition-id|name>")
		fmt.Println()
		fmt.Println("Moves an issue. The target may be a transition ID, a transition name")
		fmt.Println("or the name of the target status.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  sprintdeck transition DEV-12 31")
		fmt.Println("  sprintdeck transition DEV-12 In Progress")
	case "comments":
		fmt.Println("sprintdeck comments <ISSUE>")
		fmt.Println()
		fmt.Println("Shows the comments of an issue as plain text.")
	case "comment":
		fmt.Println("sprintdeck comment <ISSUE> <text>")
		fmt.Println()
		fmt.Println("Adds a plain-text comment to an issue.")
	case "sweep":
		fmt.Println("sprintdeck sweep [-v|--verbose]")
		fmt.Println()
		fmt.Println("Removes expired and corrupted items from the session.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -v, --verbose   Print vault counters")
	case "compact":
		fmt.Println("sprintdeck compact")
		fmt.Println()
		fmt.Println("Compacts the session database to reclaim unused disk space.")
	case "session":
		fmt.Println("sprintdeck session <new|list>")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  new    Print a fresh session ID for SPRINTDECK_SESSION")
		fmt.Println("  list   List sessions stored in the database")
	case "keyring":
		fmt.Println("sprintdeck keyring <save|delete|status>")
		fmt.Println()
		fmt.Println("Manages the encryption passphrase in the OS keyring.")
		fmt.Println("SPRINTDECK_ENCRYPTION_KEY takes precedence over the keyring.")
		fmt.Println("Without either, a built-in default passphrase is used.")
	case "completion":
		fmt.Println("sprintdeck completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(sprintdeck completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(sprintdeck completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  sprintdeck completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
