/*
prompt.go - Prompt construction and the structured-response schema

PURPOSE:
  Builds the bridge-day planning prompt from a ledger snapshot and pins the
  model's output to a JSON schema so the answer parses straight into Plan.
*/
package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/leave-ledger/ledger"
)

// planResponseSchema constrains the model output to the Plan shape.
var planResponseSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"suggestions": {
			"type": "ARRAY",
			"items": {
				"type": "OBJECT",
				"properties": {
					"title": {"type": "STRING"},
					"description": {"type": "STRING"},
					"dates": {"type": "STRING"},
					"benefit": {"type": "STRING"}
				},
				"required": ["title", "description", "dates", "benefit"]
			}
		},
		"summary": {"type": "STRING"}
	},
	"required": ["suggestions", "summary"]
}`)

// buildPrompt renders the planning prompt from a ledger snapshot.
func buildPrompt(req PlanRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I have a leave tracking app. Current year is %d.\n", req.Year)
	fmt.Fprintf(&b, "My total annual quota is: Vacation: %d, Sick: %d.\n",
		req.Totals[ledger.LeaveVacation], req.Totals[ledger.LeaveSick])
	fmt.Fprintf(&b, "My remaining balance is: Vacation: %d, Sick: %d.\n\n",
		req.Remaining[ledger.LeaveVacation], req.Remaining[ledger.LeaveSick])

	b.WriteString("The following public holidays are configured in my system:\n")
	for _, h := range req.Holidays {
		fmt.Fprintf(&b, "- %s: %s\n", h.Name, h.Date)
	}

	b.WriteString("\nCurrent booked leaves:\n")
	for _, e := range req.Entries {
		fmt.Fprintf(&b, "- %s: %s to %s (%s)\n", e.Type, e.StartDate, e.EndDate, e.Description)
	}

	b.WriteString(`
Act as a professional HR and life coach. Suggest 3 creative ways to use my remaining VACATION days effectively.
Crucially, look at the configured public holidays and suggest "bridge days" to maximize my time off (e.g., if a holiday is on a Thursday, suggest taking the Friday off for a 4-day weekend).
Provide specific dates based on the configured holidays.
Also provide a brief motivational summary of my current balance.`)

	return b.String()
}
