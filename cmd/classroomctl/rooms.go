package main

import (
	"classroom-lab/client"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func roomsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List the classrooms of a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			rooms, err := client.New(addr).ListRooms(ctx)
			if err != nil {
				return err
			}

			table := newTable([]string{"ID", "Name", "Users", "Notes", "Polls", "Created"})
			for _, room := range rooms {
				table.Append([]string{
					string(room.ID),
					room.Name,
					strconv.Itoa(room.UserCount),
					strconv.Itoa(room.NoteCount),
					strconv.Itoa(room.PollCount),
					room.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()
			return nil
		},
	}
	addrFlag(cmd, &addr)
	return cmd
}

func createCmd() *cobra.Command {
	var addr, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a classroom",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			room, err := client.New(addr).CreateRoom(ctx, name)
			if err != nil {
				return err
			}
			success("Classroom %q created", room.Name)
			fmt.Println(room.ID)
			return nil
		},
	}
	addrFlag(cmd, &addr)
	cmd.Flags().StringVar(&name, "name", "", "Classroom name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
