package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

const requestTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "classroomctl",
		Short: "Operate a classroom server",
		Long: `classroomctl lists and creates classrooms, dumps the activity journal
and follows a classroom live from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		roomsCmd(),
		createCmd(),
		journalCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		color.Error.Println("Error:", err)
		os.Exit(1)
	}
}

func addrFlag(cmd *cobra.Command, addr *string) {
	cmd.Flags().StringVar(addr, "addr", "localhost:8080", "Classroom server address (host:port)")
}

func success(format string, args ...any) {
	color.Green.Printf("✓ %s\n", fmt.Sprintf(format, args...))
}
