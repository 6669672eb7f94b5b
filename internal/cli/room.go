package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomDeleteCmd())
	cmd.AddCommand(newRoomStatsCmd())

	return cmd
}

func roomPath(code string, suffix ...string) string {
	parts := append([]string{"/api/v1/rooms", url.PathEscape(strings.ToUpper(code))}, suffix...)
	return strings.Join(parts, "/")
}

func newRoomCreateCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a new room hosted by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": args[0],
				"mode":     mode,
			}

			var result Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "duel", "Game mode: duel, battle_royale")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Get(roomPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <username>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": args[1]}

			var result Room

			if err := client.Post(roomPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete a room and disconnect its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(roomPath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Deleted room %s", strings.ToUpper(args[0])))
			return nil
		},
	}
}

func newRoomStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show room counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomCounts

			if err := client.Get("/api/v1/rooms/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
