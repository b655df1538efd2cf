package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_sprintdeck() {
    local cur prev words cword
    _init_completion || return

    local commands="login logout status projects select sprints issues backlog members board standup transitions transition comments comment sweep compact session keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        login)
            COMPREPLY=($(compgen -W "--verify" -- "$cur"))
            ;;
        logout)
            COMPREPLY=($(compgen -W "--all" -- "$cur"))
            ;;
        select)
            local keys
            keys=$(sprintdeck projects 2>/dev/null | awk '{print ($1 == "*") ? $2 : $1}')
            COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            ;;
        board)
            COMPREPLY=($(compgen -W "--watch --interval --sprint" -- "$cur"))
            ;;
        standup)
            COMPREPLY=($(compgen -W "--all --sprint --seed" -- "$cur"))
            ;;
        sweep)
            COMPREPLY=($(compgen -W "-v --verbose" -- "$cur"))
            ;;
        session)
            COMPREPLY=($(compgen -W "new list" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _sprintdeck sprintdeck
`

const zshCompletion = `#compdef sprintdeck

_sprintdeck() {
    local -a commands
    commands=(
        'login:Store tracker credentials in the session'
        'logout:Forget stored credentials'
        'status:Show session contents and expiry'
        'projects:List visible projects'
        'select:Select the current project'
        'sprints:List sprints of the selected project'
        'issues:List issues of a sprint'
        'backlog:List all issues of the selected project'
        'members:List assignable project members'
        'board:Show the active sprint board'
        'standup:Run a stand-up in random order'
        'transitions:List transitions of an issue'
        'transition:Move an issue to another status'
        'comments:Show comments of an issue'
        'comment:Comment on an issue'
        'sweep:Remove expired session items'
        'compact:Compact the session database'
        'session:Create or list sessions'
        'keyring:Manage passphrase in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'sprintdeck commands' commands
            ;;
        args)
            case "${words[2]}" in
                login)
                    _arguments '--verify[Check credentials against the tracker]'
                    ;;
                logout)
                    _arguments '--all[Drop the whole session]'
                    ;;
                board)
                    _arguments \
                        '--watch[Refresh until interrupted]' \
                        '--interval[Refresh interval]:duration' \
                        '--sprint[Sprint ID]:sprint'
                    ;;
                standup)
                    _arguments \
                        '--all[Print the whole order at once]' \
                        '--sprint[Sprint ID]:sprint' \
                        '--seed[Random seed]:seed'
                    ;;
                sweep)
                    _arguments \
                        '-v[Print vault counters]' \
                        '--verbose[Print vault counters]'
                    ;;
                session)
                    _values 'subcommand' new list
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'sprintdeck commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_sprintdeck "$@"
`

const fishCompletion = `# sprintdeck fish completions

set -l commands login logout status projects select sprints issues backlog members board standup transitions transition comments comment sweep compact session keyring help completion

complete -c sprintdeck -f

# Commands
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a login -d 'Store tracker credentials'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a logout -d 'Forget credentials'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show session status'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a projects -d 'List projects'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a select -d 'Select project'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a sprints -d 'List sprints'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a issues -d 'List sprint issues'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a backlog -d 'List project issues'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a members -d 'List project members'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a board -d 'Show sprint board'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a standup -d 'Run a stand-up in random order'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a transitions -d 'List issue transitions'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a transition -d 'Move an issue'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a comments -d 'Show issue comments'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a comment -d 'Comment on an issue'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a sweep -d 'Remove expired items'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact database'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a session -d 'Create or list sessions'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage passphrase in OS keyring'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c sprintdeck -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# flags
complete -c sprintdeck -n "__fish_seen_subcommand_from login" -l verify -d 'Check credentials'
complete -c sprintdeck -n "__fish_seen_subcommand_from logout" -l all -d 'Drop the whole session'
complete -c sprintdeck -n "__fish_seen_subcommand_from board" -l watch -d 'Refresh until interrupted'
complete -c sprintdeck -n "__fish_seen_subcommand_from board" -l interval -d 'Refresh interval'
complete -c sprintdeck -n "__fish_seen_subcommand_from board" -l sprint -d 'Sprint ID'
complete -c sprintdeck -n "__fish_seen_subcommand_from standup" -l all -d 'Print the whole order at once'
complete -c sprintdeck -n "__fish_seen_subcommand_from standup" -l sprint -d 'Sprint ID'
complete -c sprintdeck -n "__fish_seen_subcommand_from standup" -l seed -d 'Random seed'
complete -c sprintdeck -n "__fish_seen_subcommand_from sweep" -s v -l verbose -d 'Print vault counters'

# subcommands
complete -c sprintdeck -n "__fish_seen_subcommand_from session" -a "new list"
complete -c sprintdeck -n "__fish_seen_subcommand_from keyring" -a "save delete status"
complete -c sprintdeck -n "__fish_seen_subcommand_from help" -a "$commands"
complete -c sprintdeck -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
