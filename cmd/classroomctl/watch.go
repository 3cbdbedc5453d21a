package main

import (
	"classroom-lab/client"
	"classroom-lab/domain/classroom"
	"classroom-lab/domain/event"
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

var eventStyles = map[event.Name]color.Style{
	event.ClassroomStateName: color.New(color.FgCyan, color.OpBold),
	event.NoteAddedName:      color.New(color.FgGreen),
	event.NoteUpdatedName:    color.New(color.FgYellow),
	event.NoteDeletedName:    color.New(color.FgRed),
	event.PollCreatedName:    color.New(color.FgGreen, color.OpBold),
	event.PollUpdatedName:    color.New(color.FgYellow, color.OpBold),
	event.PollDeletedName:    color.New(color.FgRed, color.OpBold),
	event.UserJoinedName:     color.New(color.FgBlue),
	event.UserLeftName:       color.New(color.FgMagenta),
	event.ErrorName:          color.New(color.BgRed, color.FgWhite),
}

func watchCmd() *cobra.Command {
	var addr, room, name string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Join a classroom and print its live events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dialCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()
			session, err := client.New(addr).Dial(dialCtx)
			if err != nil {
				return err
			}
			go func() {
				<-ctx.Done()
				_ = session.Close()
			}()

			if err := session.Join(classroom.RoomID(room), name); err != nil {
				return err
			}
			success("Watching classroom %s as %q", room, name)

			for {
				envelope, err := session.Next(0)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				style, ok := eventStyles[event.Name(envelope.Event)]
				if !ok {
					style = color.New(color.FgDefault)
				}
				fmt.Printf("%s %s %s\n",
					time.Now().Format("15:04:05"),
					style.Sprintf("%-16s", envelope.Event),
					string(envelope.Data))
			}
		},
	}
	addrFlag(cmd, &addr)
	cmd.Flags().StringVar(&room, "room", "", "Classroom id")
	cmd.Flags().StringVar(&name, "name", "classroomctl", "Display name used in the classroom")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}
