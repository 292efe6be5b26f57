package procurement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/shared"
)

const AggregateTypePurchase = "Purchase"

const (
	EventTypePurchaseStatusChanged = "PurchaseStatusChanged"
	EventTypePurchaseReceived      = "PurchaseReceived"
)

// PurchaseStatusChangedEvent is raised on every lifecycle transition.
type PurchaseStatusChangedEvent struct {
	shared.BaseDomainEvent
	PurchaseID uuid.UUID      `json:"purchase_id"`
	Reference  string         `json:"reference"`
	SupplierID uuid.UUID      `json:"supplier_id"`
	OldStatus  PurchaseStatus `json:"old_status"`
	NewStatus  PurchaseStatus `json:"new_status"`
}

// NewPurchaseStatusChangedEvent creates a PurchaseStatusChangedEvent.
func NewPurchaseStatusChangedEvent(p *Purchase, from, to PurchaseStatus) *PurchaseStatusChangedEvent {
	return &PurchaseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseStatusChanged, AggregateTypePurchase, p.ID, p.TenantID),
		PurchaseID:      p.ID,
		Reference:       p.Reference,
		SupplierID:      p.SupplierID,
		OldStatus:       from,
		NewStatus:       to,
	}
}

func (e *PurchaseStatusChangedEvent) EventType() string {
	return EventTypePurchaseStatusChanged
}

// ReceivedLine describes one booked receipt line inside a PurchaseReceivedEvent.
type ReceivedLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// PurchaseReceivedEvent is raised after a receipt is booked. The
// accounting handler turns it into a stock-in posting; the notification
// handler informs the supplier contact.
type PurchaseReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	Reference   string          `json:"reference"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Complete    bool            `json:"complete"`
	Total       decimal.Decimal `json:"total"`
	Lines       []ReceivedLine  `json:"lines"`
}

// NewPurchaseReceivedEvent creates a PurchaseReceivedEvent snapshotting
// the received state of every line.
func NewPurchaseReceivedEvent(p *Purchase, complete bool) *PurchaseReceivedEvent {
	lines := make([]ReceivedLine, 0, len(p.Items))
	for i := range p.Items {
		lines = append(lines, ReceivedLine{
			ProductID: p.Items[i].ProductID,
			Quantity:  p.Items[i].QuantityReceived,
			UnitCost:  p.Items[i].UnitCost,
		})
	}
	return &PurchaseReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceived, AggregateTypePurchase, p.ID, p.TenantID),
		PurchaseID:      p.ID,
		Reference:       p.Reference,
		SupplierID:      p.SupplierID,
		WarehouseID:     p.WarehouseID,
		Complete:        complete,
		Total:           p.Total(),
		Lines:           lines,
	}
}

func (e *PurchaseReceivedEvent) EventType() string {
	return EventTypePurchaseReceived
}
