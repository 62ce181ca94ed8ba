// gen-samples generates sample flow artifacts for README documentation.
// Run: go run ./cmd/gen-samples
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rendis/flowdoc/internal/render"
	"github.com/rendis/flowdoc/pkg/schema"
)

func main() {
	catalog := &schema.Catalog{
		Domains: []schema.ServiceDomain{
			{ID: "dom-orders", Name: "Orders", Color: "#4C78A8", Services: []schema.Service{
				{ID: "svc-order", Name: "Order Service", Code: "ORD", Datastore: "PostgreSQL"},
				{ID: "svc-inventory", Name: "Inventory Service", Code: "INV", Datastore: "Redis"},
			}},
			{ID: "dom-payments", Name: "Payments", Color: "#F58518", Services: []schema.Service{
				{ID: "svc-payment", Name: "Payment Gateway", Code: "PAY"},
			}},
		},
		Actors: []schema.Actor{
			{ID: "act-customer", Code: "CU", Name: "Customer", Kind: schema.ActorHuman},
			{ID: "act-fulfillment", Code: "FB", Name: "Fulfillment Bot", Kind: schema.ActorAutomated},
		},
		IntegrationTypes: []schema.IntegrationType{
			{ID: "it-rest", Name: "REST", Code: "R", LinePattern: "solid"},
			{ID: "it-queue", Name: "Message Queue", Code: "Q", LinePattern: "dashed"},
		},
	}

	// Branching flow: place order → check stock → decision → pay or backorder → confirm.
	flow := &schema.Flow{
		ID:                 "flow-place-order",
		Name:               "Place Order",
		Description:        "A customer places an order; stock is checked before payment.",
		Priority:           schema.PriorityHigh,
		Status:             schema.FlowStatusApproved,
		Version:            "1.2.0",
		DomainID:           "dom-orders",
		InvolvedServiceIDs: []string{"svc-order", "svc-inventory", "svc-payment"},
		ActorIDs:           []string{"act-customer", "act-fulfillment"},
		Trigger:            "Customer submits the checkout form",
		Tags:               []string{"orders", "checkout"},
		Steps: []schema.Step{
			{Number: 1, ActorID: "act-customer", Action: "Submit order",
				ServiceIDs: []string{"svc-order"}, CommunicationTypeID: "it-rest",
				Input: &schema.DataSpec{Description: "Cart contents and shipping address"}},
			{Number: 2, ActorID: "act-fulfillment", Action: "Check stock",
				ServiceIDs: []string{"svc-inventory"},
				IsDecisionPoint: true, DecisionCriteria: "All items in stock?",
				ConditionalPaths: []schema.ConditionalPath{
					{Condition: "in stock", NextStep: 3},
					{Condition: "out of stock", NextStep: 4},
				}},
			{Number: 3, ActorID: "act-fulfillment", Action: "Charge payment",
				ServiceIDs: []string{"svc-payment"}, CommunicationTypeID: "it-rest",
				SLA: "2s"},
			{Number: 4, ActorID: "act-fulfillment", Action: "Create backorder and confirm",
				ServiceIDs: []string{"svc-order"}, CommunicationTypeID: "it-queue"},
		},
		Interactions: []schema.ServiceInteraction{
			{FromServiceID: "svc-order", ToServiceID: "svc-inventory",
				Kind: schema.InteractionSynchronous, Method: "GET", Endpoint: "/stock/{sku}"},
			{FromServiceID: "svc-order", ToServiceID: "svc-payment",
				Kind: schema.InteractionSynchronous, Method: "POST", Endpoint: "/charges"},
			{FromServiceID: "svc-inventory", ToServiceID: "svc-order",
				Kind: schema.InteractionEventDriven, Data: "stock.depleted"},
		},
		ErrorScenarios: []schema.ErrorScenario{
			{Scenario: "Payment declined", Handling: "Order held for 24h, customer notified"},
		},
	}

	renderer := render.NewRenderer(catalog)

	outDir := filepath.Join("docs", "assets")
	os.MkdirAll(outDir, 0o755)

	for _, format := range render.Formats() {
		out, err := renderer.Render(flow, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s: %v\n", format, err)
			os.Exit(1)
		}
		name := render.SuggestedFilename(flow, format)
		os.WriteFile(filepath.Join(outDir, name), []byte(out), 0o644)
		fmt.Printf("=== %s ===\n%s\n", format, out)
	}

	// Image (PNG)
	png, imgErr := renderer.TopologyImage(flow)
	if imgErr != nil {
		fmt.Fprintf(os.Stderr, "image error: %v\n", imgErr)
	} else {
		pngPath := filepath.Join(outDir, "place-order-topology.png")
		os.WriteFile(pngPath, png, 0o644)
		fmt.Printf("=== Image (PNG) ===\nWritten: %s (%d bytes)\n", pngPath, len(png))
	}
}
