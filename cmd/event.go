package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlavigne/client-management/internal/core/events"
	"github.com/mlavigne/client-management/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events, monitor event bus, inspect handlers`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [group,...]",
	Short: "Publish a test code-set invalidation",
	Long:  `Publish a code-set change event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(strings.Split(args[0], ","))
	},
}

func publishTestEvent(groups []string) {
	log := logger.L()

	eventBus := events.NewEventBus(log)

	eventBus.Subscribe(events.TypeCodeSetChanged, func(ctx context.Context, event events.Event) error {
		log.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"groups", events.CodeSetGroups(event))
		return nil
	})

	testEvent := events.NewCodeSetChanged(groups)
	log.Info("publishing test event", "event_type", testEvent.EventType(), "event_id", testEvent.EventID())

	ctx := context.Background()
	if err := eventBus.Publish(ctx, testEvent); err != nil {
		log.Error("failed to publish event", "error", err)
		return
	}

	time.Sleep(100 * time.Millisecond)
	log.Info("test event published successfully")
}

func init() {
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
