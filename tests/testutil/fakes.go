package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops/backend/internal/domain/fulfillment"
	"github.com/retailops/backend/internal/domain/procurement"
	"github.com/retailops/backend/internal/domain/replenishment"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/domain/stock"
	"github.com/retailops/backend/internal/domain/warehouse"
)

func positionKey(tenantID, productID, warehouseID uuid.UUID) string {
	return tenantID.String() + "|" + productID.String() + "|" + warehouseID.String()
}

// FakeStockRepository is an in-memory stock.StockRepository. Lookups hand
// back the stored aggregate itself, so mutations between Get and Save are
// visible the way they are under a real row lock.
type FakeStockRepository struct {
	mu        sync.Mutex
	positions map[string]*stock.Stock
	byID      map[uuid.UUID]*stock.Stock

	// SaveErr, when set, is returned from Save and SaveWithLock.
	SaveErr error
}

// NewFakeStockRepository creates an empty fake.
func NewFakeStockRepository() *FakeStockRepository {
	return &FakeStockRepository{
		positions: make(map[string]*stock.Stock),
		byID:      make(map[uuid.UUID]*stock.Stock),
	}
}

// Seed stores a position directly, for test arrangement.
func (r *FakeStockRepository) Seed(s *stock.Stock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[positionKey(s.TenantID, s.ProductID, s.WarehouseID)] = s
	r.byID[s.ID] = s
}

func (r *FakeStockRepository) FindByID(_ context.Context, id uuid.UUID) (*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *FakeStockRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*stock.Stock, error) {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *FakeStockRepository) FindByProductAndWarehouse(_ context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.positions[positionKey(tenantID, productID, warehouseID)]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *FakeStockRepository) FindByProductAndWarehouseForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	return r.FindByProductAndWarehouse(ctx, tenantID, productID, warehouseID)
}

func (r *FakeStockRepository) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Stock
	for _, s := range r.positions {
		if s.TenantID == tenantID && s.WarehouseID == warehouseID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *FakeStockRepository) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Stock
	for _, s := range r.positions {
		if s.TenantID == tenantID && s.ProductID == productID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *FakeStockRepository) FindLow(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Stock
	for _, s := range r.positions {
		if s.TenantID == tenantID && s.IsLow() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *FakeStockRepository) GetOrCreate(_ context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := positionKey(tenantID, productID, warehouseID)
	if s, ok := r.positions[key]; ok {
		return s, nil
	}
	s, err := stock.NewStock(tenantID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.positions[key] = s
	r.byID[s.ID] = s
	return s, nil
}

func (r *FakeStockRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*stock.Stock, error) {
	return r.GetOrCreate(ctx, tenantID, productID, warehouseID)
}

func (r *FakeStockRepository) Save(_ context.Context, s *stock.Stock) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.Seed(s)
	return nil
}

func (r *FakeStockRepository) SaveWithLock(ctx context.Context, s *stock.Stock) error {
	return r.Save(ctx, s)
}

func (r *FakeStockRepository) SumValueByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, s := range r.positions {
		if s.TenantID == tenantID && s.WarehouseID == warehouseID {
			total = total.Add(s.Value())
		}
	}
	return total, nil
}

func (r *FakeStockRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.positions {
		if s.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// FakeMovementRepository is an in-memory stock.MovementRepository with the
// same idempotency behavior as the real one: a duplicate key fails the
// Create with shared.ErrAlreadyReceived.
type FakeMovementRepository struct {
	mu        sync.Mutex
	movements []*stock.Movement
	idemKeys  map[string]*stock.Movement
}

// NewFakeMovementRepository creates an empty fake.
func NewFakeMovementRepository() *FakeMovementRepository {
	return &FakeMovementRepository{idemKeys: make(map[string]*stock.Movement)}
}

// All returns every recorded movement.
func (r *FakeMovementRepository) All() []*stock.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*stock.Movement, len(r.movements))
	copy(out, r.movements)
	return out
}

func (r *FakeMovementRepository) Create(_ context.Context, m *stock.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := m.TenantID.String() + "|" + m.IdempotencyKey
	if _, ok := r.idemKeys[key]; ok {
		return shared.ErrAlreadyReceived
	}
	r.idemKeys[key] = m
	r.movements = append(r.movements, m)
	return nil
}

func (r *FakeMovementRepository) CreateBatch(ctx context.Context, ms []*stock.Movement) error {
	for _, m := range ms {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeMovementRepository) FindByID(_ context.Context, id uuid.UUID) (*stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakeMovementRepository) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) ([]stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.Reference == reference {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *FakeMovementRepository) FindByIdempotencyKey(_ context.Context, tenantID uuid.UUID, key string) (*stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.idemKeys[tenantID.String()+"|"+key]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *FakeMovementRepository) FindByProduct(_ context.Context, tenantID, productID uuid.UUID, _ shared.Filter) ([]stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.ProductID == productID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *FakeMovementRepository) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Movement
	for _, m := range r.movements {
		if m.TenantID != tenantID {
			continue
		}
		if (m.FromWarehouseID != nil && *m.FromWarehouseID == warehouseID) ||
			(m.ToWarehouseID != nil && *m.ToWarehouseID == warehouseID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *FakeMovementRepository) FindForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]stock.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []stock.Movement
	for _, m := range r.movements {
		if m.TenantID == tenantID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *FakeMovementRepository) SumByKindAndDateRange(_ context.Context, tenantID uuid.UUID, kind stock.MovementKind, start, end time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.Kind == kind &&
			!m.OccurredAt.Before(start) && !m.OccurredAt.After(end) {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (r *FakeMovementRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// documentStore is the shared bookkeeping of the document fakes.
type documentStore[T any] struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*T
	refSeq  int
	prefix  string
	tenant  func(*T) uuid.UUID
	SaveErr error
}

func newDocumentStore[T any](prefix string, tenant func(*T) uuid.UUID) documentStore[T] {
	return documentStore[T]{
		byID:   make(map[uuid.UUID]*T),
		prefix: prefix,
		tenant: tenant,
	}
}

func (d *documentStore[T]) findByID(id uuid.UUID) (*T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.byID[id]; ok {
		return doc, nil
	}
	return nil, shared.ErrNotFound
}

func (d *documentStore[T]) findByIDForTenant(tenantID, id uuid.UUID) (*T, error) {
	doc, err := d.findByID(id)
	if err != nil {
		return nil, err
	}
	if d.tenant(doc) != tenantID {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (d *documentStore[T]) save(id uuid.UUID, doc *T) error {
	if d.SaveErr != nil {
		return d.SaveErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[id] = doc
	return nil
}

func (d *documentStore[T]) nextReference() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refSeq++
	return fmt.Sprintf("%s-%s-%04d", d.prefix, time.Now().Format("20060102"), d.refSeq), nil
}

func (d *documentStore[T]) all(tenantID uuid.UUID) []T {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []T
	for _, doc := range d.byID {
		if d.tenant(doc) == tenantID {
			out = append(out, *doc)
		}
	}
	return out
}

func (d *documentStore[T]) count(tenantID uuid.UUID) int64 {
	return int64(len(d.all(tenantID)))
}

// FakePurchaseRepository is an in-memory procurement.PurchaseRepository.
type FakePurchaseRepository struct {
	documentStore[procurement.Purchase]
}

// NewFakePurchaseRepository creates an empty fake.
func NewFakePurchaseRepository() *FakePurchaseRepository {
	return &FakePurchaseRepository{
		documentStore: newDocumentStore("PO", func(p *procurement.Purchase) uuid.UUID { return p.TenantID }),
	}
}

func (r *FakePurchaseRepository) FindByID(_ context.Context, id uuid.UUID) (*procurement.Purchase, error) {
	return r.findByID(id)
}

func (r *FakePurchaseRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*procurement.Purchase, error) {
	return r.findByIDForTenant(tenantID, id)
}

func (r *FakePurchaseRepository) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*procurement.Purchase, error) {
	for _, p := range r.all(tenantID) {
		if p.Reference == reference {
			return r.findByID(p.ID)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakePurchaseRepository) FindByStatus(_ context.Context, tenantID uuid.UUID, status procurement.PurchaseStatus, _ shared.Filter) ([]procurement.Purchase, error) {
	var out []procurement.Purchase
	for _, p := range r.all(tenantID) {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *FakePurchaseRepository) FindBySupplier(_ context.Context, tenantID, supplierID uuid.UUID, _ shared.Filter) ([]procurement.Purchase, error) {
	var out []procurement.Purchase
	for _, p := range r.all(tenantID) {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *FakePurchaseRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]procurement.Purchase, error) {
	return r.all(tenantID), nil
}

func (r *FakePurchaseRepository) Save(_ context.Context, p *procurement.Purchase) error {
	return r.save(p.ID, p)
}

func (r *FakePurchaseRepository) SaveWithLock(ctx context.Context, p *procurement.Purchase) error {
	return r.Save(ctx, p)
}

func (r *FakePurchaseRepository) NextReference(_ context.Context, _ uuid.UUID) (string, error) {
	return r.nextReference()
}

func (r *FakePurchaseRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return r.count(tenantID), nil
}

// FakeStockRequestRepository is an in-memory replenishment.StockRequestRepository.
type FakeStockRequestRepository struct {
	documentStore[replenishment.StockRequest]
}

// NewFakeStockRequestRepository creates an empty fake.
func NewFakeStockRequestRepository() *FakeStockRequestRepository {
	return &FakeStockRequestRepository{
		documentStore: newDocumentStore("REQ", func(r *replenishment.StockRequest) uuid.UUID { return r.TenantID }),
	}
}

func (r *FakeStockRequestRepository) FindByID(_ context.Context, id uuid.UUID) (*replenishment.StockRequest, error) {
	return r.findByID(id)
}

func (r *FakeStockRequestRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*replenishment.StockRequest, error) {
	return r.findByIDForTenant(tenantID, id)
}

func (r *FakeStockRequestRepository) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*replenishment.StockRequest, error) {
	for _, req := range r.all(tenantID) {
		if req.Reference == reference {
			return r.findByID(req.ID)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakeStockRequestRepository) FindByStatus(_ context.Context, tenantID uuid.UUID, status replenishment.RequestStatus, _ shared.Filter) ([]replenishment.StockRequest, error) {
	var out []replenishment.StockRequest
	for _, req := range r.all(tenantID) {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *FakeStockRequestRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]replenishment.StockRequest, error) {
	return r.all(tenantID), nil
}

func (r *FakeStockRequestRepository) Save(_ context.Context, req *replenishment.StockRequest) error {
	return r.save(req.ID, req)
}

func (r *FakeStockRequestRepository) SaveWithLock(ctx context.Context, req *replenishment.StockRequest) error {
	return r.Save(ctx, req)
}

func (r *FakeStockRequestRepository) NextReference(_ context.Context, _ uuid.UUID) (string, error) {
	return r.nextReference()
}

func (r *FakeStockRequestRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return r.count(tenantID), nil
}

// FakeTransferRepository is an in-memory replenishment.TransferRepository.
type FakeTransferRepository struct {
	documentStore[replenishment.Transfer]
}

// NewFakeTransferRepository creates an empty fake.
func NewFakeTransferRepository() *FakeTransferRepository {
	return &FakeTransferRepository{
		documentStore: newDocumentStore("TX", func(t *replenishment.Transfer) uuid.UUID { return t.TenantID }),
	}
}

func (r *FakeTransferRepository) FindByID(_ context.Context, id uuid.UUID) (*replenishment.Transfer, error) {
	return r.findByID(id)
}

func (r *FakeTransferRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*replenishment.Transfer, error) {
	return r.findByIDForTenant(tenantID, id)
}

func (r *FakeTransferRepository) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*replenishment.Transfer, error) {
	for _, t := range r.all(tenantID) {
		if t.Reference == reference {
			return r.findByID(t.ID)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakeTransferRepository) FindByStatus(_ context.Context, tenantID uuid.UUID, status replenishment.TransferStatus, _ shared.Filter) ([]replenishment.Transfer, error) {
	var out []replenishment.Transfer
	for _, t := range r.all(tenantID) {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *FakeTransferRepository) FindByStockRequest(_ context.Context, tenantID, requestID uuid.UUID) ([]replenishment.Transfer, error) {
	var out []replenishment.Transfer
	for _, t := range r.all(tenantID) {
		if t.StockRequestID != nil && *t.StockRequestID == requestID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *FakeTransferRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]replenishment.Transfer, error) {
	return r.all(tenantID), nil
}

func (r *FakeTransferRepository) Save(_ context.Context, t *replenishment.Transfer) error {
	return r.save(t.ID, t)
}

func (r *FakeTransferRepository) SaveWithLock(ctx context.Context, t *replenishment.Transfer) error {
	return r.Save(ctx, t)
}

func (r *FakeTransferRepository) NextReference(_ context.Context, _ uuid.UUID) (string, error) {
	return r.nextReference()
}

func (r *FakeTransferRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return r.count(tenantID), nil
}

// FakeOrderRepository is an in-memory fulfillment.OrderRepository.
type FakeOrderRepository struct {
	documentStore[fulfillment.Order]
}

// NewFakeOrderRepository creates an empty fake.
func NewFakeOrderRepository() *FakeOrderRepository {
	return &FakeOrderRepository{
		documentStore: newDocumentStore("ORD", func(o *fulfillment.Order) uuid.UUID { return o.TenantID }),
	}
}

func (r *FakeOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	return r.findByID(id)
}

func (r *FakeOrderRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	return r.findByIDForTenant(tenantID, id)
}

func (r *FakeOrderRepository) FindByReference(_ context.Context, tenantID uuid.UUID, reference string) (*fulfillment.Order, error) {
	for _, o := range r.all(tenantID) {
		if o.Reference == reference {
			return r.findByID(o.ID)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakeOrderRepository) FindByStatus(_ context.Context, tenantID uuid.UUID, status fulfillment.OrderStatus, _ shared.Filter) ([]fulfillment.Order, error) {
	var out []fulfillment.Order
	for _, o := range r.all(tenantID) {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *FakeOrderRepository) FindByWarehouse(_ context.Context, tenantID, warehouseID uuid.UUID, _ shared.Filter) ([]fulfillment.Order, error) {
	var out []fulfillment.Order
	for _, o := range r.all(tenantID) {
		if o.WarehouseID == warehouseID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *FakeOrderRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]fulfillment.Order, error) {
	return r.all(tenantID), nil
}

func (r *FakeOrderRepository) Save(_ context.Context, o *fulfillment.Order) error {
	return r.save(o.ID, o)
}

func (r *FakeOrderRepository) SaveWithLock(ctx context.Context, o *fulfillment.Order) error {
	return r.Save(ctx, o)
}

func (r *FakeOrderRepository) NextReference(_ context.Context, _ uuid.UUID) (string, error) {
	return r.nextReference()
}

func (r *FakeOrderRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return r.count(tenantID), nil
}

// FakeWarehouseRepository is an in-memory warehouse.WarehouseRepository.
type FakeWarehouseRepository struct {
	documentStore[warehouse.Warehouse]
}

// NewFakeWarehouseRepository creates an empty fake.
func NewFakeWarehouseRepository() *FakeWarehouseRepository {
	return &FakeWarehouseRepository{
		documentStore: newDocumentStore("WH", func(w *warehouse.Warehouse) uuid.UUID { return w.TenantID }),
	}
}

func (r *FakeWarehouseRepository) FindByID(_ context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	return r.findByID(id)
}

func (r *FakeWarehouseRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*warehouse.Warehouse, error) {
	return r.findByIDForTenant(tenantID, id)
}

func (r *FakeWarehouseRepository) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*warehouse.Warehouse, error) {
	for _, w := range r.all(tenantID) {
		if w.Code == code {
			return r.findByID(w.ID)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *FakeWarehouseRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]warehouse.Warehouse, error) {
	return r.all(tenantID), nil
}

func (r *FakeWarehouseRepository) FindByKind(_ context.Context, tenantID uuid.UUID, kind warehouse.Kind, _ shared.Filter) ([]warehouse.Warehouse, error) {
	var out []warehouse.Warehouse
	for _, w := range r.all(tenantID) {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *FakeWarehouseRepository) Save(_ context.Context, w *warehouse.Warehouse) error {
	return r.save(w.ID, w)
}

func (r *FakeWarehouseRepository) CountForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) (int64, error) {
	return r.count(tenantID), nil
}
