package messaging

import "github.com/hilthontt/chatrelay/internal/domain"

const (
	AuditQueue      = "relay_audit"
	DeadLetterQueue = "dead_letter_queue"
)

type RelayEventData struct {
	Entry domain.RelayAuditLog `json:"entry"`
}
