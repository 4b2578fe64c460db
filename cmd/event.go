package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Beamwelly/CRM-Application-sub001/internal/core/events"
	"github.com/Beamwelly/CRM-Application-sub001/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the in-process event bus: publish an event and watch a handler receive it`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test event",
	Long:      `Publish a test event to the event bus for testing and debugging`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeSessionEnded, events.EventTypeUserDeleted, events.EventTypePermissionsUpdated, events.EventTypeSystemDataCleared},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventSubject string
	eventActor   string
)

// buildTestEvent maps a known type onto its typed constructor so subscribers
// see the same payload they would in production.
func buildTestEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeSessionEnded:
		return events.NewSessionEndedEvent(fmt.Sprintf("cli-%d", time.Now().Unix()), eventSubject), nil
	case events.EventTypeUserDeleted:
		return events.NewUserDeletedEvent(eventSubject, "employee", eventActor), nil
	case events.EventTypePermissionsUpdated:
		return events.NewPermissionsUpdatedEvent(eventSubject, eventActor), nil
	case events.EventTypeSystemDataCleared:
		return events.NewSystemDataClearedEvent(eventActor, map[string]int64{}), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.LoggerWrapper()

	event, err := buildTestEvent(eventType)
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus(log)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		log.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	log.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())
	if err := eventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	log.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventSubject, "user", "cli-user", "User the event is about")
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "cli", "User credited with the change")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
