package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandKind identifies a slash command typed in the chat input.
type CommandKind int

const (
	CmdNone CommandKind = iota // plain chat text
	CmdTasks
	CmdDone
	CmdClear
	CmdExport
	CmdTemperature
	CmdMaxTokens
	CmdTopP
	CmdStats
	CmdHelp
	CmdQuit
)

type Command struct {
	Kind CommandKind

	TaskID int
	Float  float64
	Int    int
}

// ParseCommand interprets input starting with a known "/" command. Anything
// else, including an unknown "/word", is chat text and yields CmdNone.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return Command{Kind: CmdNone}, nil
	}

	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/tasks":
		return Command{Kind: CmdTasks}, nil
	case "/done":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: /done <task id>")
		}
		id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
		if err != nil || id < 1 {
			return Command{}, fmt.Errorf("invalid task id %q", args[0])
		}
		return Command{Kind: CmdDone, TaskID: id}, nil
	case "/clear":
		return Command{Kind: CmdClear}, nil
	case "/export":
		return Command{Kind: CmdExport}, nil
	case "/temp", "/temperature":
		f, err := floatArg(name, args)
		return Command{Kind: CmdTemperature, Float: f}, err
	case "/topp", "/top_p":
		f, err := floatArg(name, args)
		return Command{Kind: CmdTopP, Float: f}, err
	case "/tokens", "/max_tokens":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("usage: %s <n>", name)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("invalid number %q", args[0])
		}
		return Command{Kind: CmdMaxTokens, Int: n}, nil
	case "/stats":
		return Command{Kind: CmdStats}, nil
	case "/help", "/?":
		return Command{Kind: CmdHelp}, nil
	case "/quit", "/exit":
		return Command{Kind: CmdQuit}, nil
	default:
		return Command{Kind: CmdNone}, nil
	}
}

func floatArg(name string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s <value>", name)
	}
	f, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return f, nil
}

const helpText = `Commands:
  /tasks           toggle the task list
  /done <id>       mark task #id as completed
  /clear           clear the conversation (tasks are kept)
  /export          write the chat to a JSON file
  /temp <0-2>      set temperature
  /tokens <n>      set max output tokens (256-2048)
  /topp <0.1-1>    set top-p
  /stats           show session statistics
  /quit            exit

Keys: enter send · esc cancel a running reply · ctrl+t tasks · ctrl+e export · ctrl+c quit`
