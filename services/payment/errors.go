package payment

import (
	"fmt"
	"strings"
)

// InvalidMetadataMessage is the error text returned to the processor when a completed
// checkout lacks the fields needed to grant the tier.
const InvalidMetadataMessage = "Metadata inválida"

// WebhookSignatureError means the webhook could not be authenticated.
type WebhookSignatureError struct {
	Reason string
	Err    error
}

func (e *WebhookSignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook signature: %s: %v", e.Reason, e.Err)
	}
	return "webhook signature: " + e.Reason
}

func (e *WebhookSignatureError) Unwrap() error {
	return e.Err
}

// WebhookPayloadError means the event was authentic but unusable.
type WebhookPayloadError struct {
	Missing []string
	Err     error
}

func (e *WebhookPayloadError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "webhook payload: missing " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		return fmt.Sprintf("webhook payload: %v", e.Err)
	default:
		return "webhook payload: invalid"
	}
}

func (e *WebhookPayloadError) Unwrap() error {
	return e.Err
}
