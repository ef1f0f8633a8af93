package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taskforge/taskforge/internal/bus"
)

func interruptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interrupt <job-id>",
		Short: "Request cooperative cancellation of a running job",
		Long:  "Publishes to the job's interrupt channel. The loop stops before its next iteration; the current tool call is allowed to finish.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runInterrupt(args[0])
		},
	}
}

func runInterrupt(jobID string) {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	transport := bus.NewRedisTransport(client)
	if err := transport.Publish(ctx, bus.InterruptChannel(jobID), []byte("interrupt")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Interrupt requested for job %s\n", jobID)
}
