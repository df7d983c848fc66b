/*
Package botflow is a conversational workflow engine. A workflow is a typed
graph of nodes (messages, milestones, conditions, actions, AI responses,
bookings) joined by typed connections; the engine advances one contact
session through the graph per inbound message and streams the turn's
lifecycle events in execution order.

The architecture is hexagonal: the runtime in internal/runtime depends only
on the ports in pkg/ports, and the adapters under pkg/adapters provide the
concrete stores (memory, Redis, YAML files), the AI collaborators (OpenAI
goal judgment and text generation), the CRM client, and the HTTP surface.

# Usage

	engine, err := botflow.New(
		botflow.WithGraphStore(store),
		botflow.WithJudge(judge),
		botflow.WithCRM(crm),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close(context.Background())

	events, err := engine.Turn(ctx, botflow.TurnRequest{
		WorkflowID: "onboarding",
		SessionID:  "contact-42",
		Message:    "hi there",
	})
	if err != nil {
		log.Fatal(err)
	}
	for ev := range events {
		fmt.Println(ev.Type, ev.Content)
	}

The event channel closes after the terminal complete or error event. Turns
against the same session are serialized; sessions never observe a partial
turn.
*/
package botflow
