package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aceleracloud/mongo-queue/internal/conf"
	"github.com/aceleracloud/mongo-queue/pkg/mqueue"
)

// CLI bundles the wire-assembled components the admin commands operate on.
type CLI struct {
	queue  *mqueue.Queue
	logger *zap.Logger
}

// NewCLI creates the CLI component bundle.
func NewCLI(queue *mqueue.Queue, logger *zap.Logger) *CLI {
	return &CLI{queue: queue, logger: logger}
}

var rootCmd = &cobra.Command{
	Use:   "mongo-queue",
	Short: "MongoDB-backed message queue administration",
	Long:  `Administration commands for a mongo-queue backed collection: enqueue, claim, acknowledge and inspect messages.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// withCLI loads the config, assembles the CLI and runs fn against it.
func withCLI(cmd *cobra.Command, fn func(ctx context.Context, cli *CLI) error) {
	confFile, _ := cmd.Flags().GetString("config")
	appConfig, err := conf.NewConfig(confFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cli, cleanup, err := InitializeCLI(appConfig)
	if err != nil {
		log.Fatalf("failed to init cli: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := fn(ctx, cli); err != nil {
		log.Fatalf("%v", err)
	}
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Ensure the queue indexes exist",
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			if err := cli.queue.CreateIndexes(ctx); err != nil {
				return err
			}
			fmt.Printf("indexes ensured on %s\n", cli.queue.Name())
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print queue message counts",
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			total, err := cli.queue.Total(ctx)
			if err != nil {
				return err
			}
			size, err := cli.queue.Size(ctx)
			if err != nil {
				return err
			}
			inFlight, err := cli.queue.InFlight(ctx)
			if err != nil {
				return err
			}
			done, err := cli.queue.Done(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("queue:     %s\n", cli.queue.Name())
			fmt.Printf("total:     %d\n", total)
			fmt.Printf("waiting:   %d\n", size)
			fmt.Printf("in flight: %d\n", inFlight)
			fmt.Printf("done:      %d\n", done)
			return nil
		})
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove acknowledged messages from the collection",
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			if err := cli.queue.Clean(ctx); err != nil {
				return err
			}
			fmt.Println("acknowledged messages removed")
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <payload-json>",
	Short: "Enqueue one message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			var payload interface{}
			if err := json.Unmarshal([]byte(args[0]), &payload); err != nil {
				return fmt.Errorf("payload must be valid JSON: %w", err)
			}

			var opts []mqueue.AddOption
			if delay, _ := cmd.Flags().GetInt("delay"); cmd.Flags().Changed("delay") {
				opts = append(opts, mqueue.WithAddDelay(time.Duration(delay)*time.Second))
			}

			msg, err := cli.queue.Add(ctx, payload, opts...)
			if err != nil {
				return err
			}
			fmt.Printf("id: %s\n", msg.ID)
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Claim the oldest visible message",
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			var opts []mqueue.GetOption
			if vis, _ := cmd.Flags().GetInt("visibility"); cmd.Flags().Changed("visibility") {
				opts = append(opts, mqueue.WithGetVisibility(time.Duration(vis)*time.Second))
			}

			msg, err := cli.queue.Get(ctx, opts...)
			if err != nil {
				return err
			}
			if msg == nil {
				fmt.Println("no message available")
				return nil
			}
			fmt.Printf("id:      %s\n", msg.ID)
			fmt.Printf("ack:     %s\n", msg.Ack)
			fmt.Printf("tries:   %d\n", msg.Tries)
			fmt.Printf("payload: %s\n", msg.Payload.String())
			return nil
		})
	},
}

var ackCmd = &cobra.Command{
	Use:   "ack <token>",
	Short: "Acknowledge a claimed message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			id, err := cli.queue.Ack(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("acked %s\n", id)
			return nil
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping <token>",
	Short: "Extend the lease on a claimed message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withCLI(cmd, func(ctx context.Context, cli *CLI) error {
			var opts []mqueue.PingOption
			if vis, _ := cmd.Flags().GetInt("visibility"); cmd.Flags().Changed("visibility") {
				opts = append(opts, mqueue.WithPingVisibility(time.Duration(vis)*time.Second))
			}

			id, err := cli.queue.Ping(ctx, args[0], opts...)
			if err != nil {
				return err
			}
			fmt.Printf("lease extended on %s\n", id)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().Int("delay", 0, "delay in seconds before the message becomes visible, overrides the queue default")
	getCmd.Flags().Int("visibility", 0, "visibility timeout in seconds for this claim, overrides the queue default")
	pingCmd.Flags().Int("visibility", 0, "visibility timeout in seconds for this extension, overrides the queue default")

	rootCmd.AddCommand(indexesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.PersistentFlags().StringP("config", "c", "internal/conf/config.yaml", "path to config file")
}
