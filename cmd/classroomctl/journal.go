package main

import (
	"classroom-lab/repositories"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

const journalPage = 100

func journalCmd() *cobra.Command {
	var dbPath, room string
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Dump the activity journal of a classroom, newest first",
		Long: `journal opens the badger journal of a stopped or running server in read-only mode
and prints the recorded events of one classroom.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := badger.Open(badger.DefaultOptions(dbPath).
				WithReadOnly(true).
				WithLogger(nil).
				WithBypassLockGuard(true))
			if err != nil {
				return fmt.Errorf("error while opening badger: %w", err)
			}
			defer db.Close()

			page := journalPage
			repository := repositories.NewActivityRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)), &page)

			table := newTable([]string{"At", "Event", "Payload"})
			var cursor *string
			count := 0
			for count < limit {
				activities, next, err := repository.GetActivity(room, cursor)
				if err != nil {
					return err
				}
				for _, activity := range activities {
					if count == limit {
						break
					}
					payload, _ := json.Marshal(activity.Payload)
					table.Append([]string{
						activity.At.Format("2006-01-02 15:04:05.000"),
						activity.Event,
						string(payload),
					})
					count++
				}
				if next == nil || len(activities) < page {
					break
				}
				cursor = next
			}
			table.Render()
			success("%d activities", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the badger journal")
	cmd.Flags().StringVar(&room, "room", "", "Classroom id")
	cmd.Flags().IntVar(&limit, "limit", 500, "Maximum number of activities printed")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}
