package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command is a cobra command whose errors are rendered for humans
type Command struct {
	*cobra.Command
	runner Runner
}

// Runner runs a command
type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wires run into cmd. A returned error is printed and exits with 1
func New(cmd *cobra.Command, run Runner) *Command {
	c := &Command{
		cmd,
		run,
	}
	c.Command.Run = func(cmd *cobra.Command, args []string) {
		if err := run.RunE(cmd, args); err != nil {
			fmt.Println(Render(err))
			os.Exit(1)
		}
	}

	return c
}
