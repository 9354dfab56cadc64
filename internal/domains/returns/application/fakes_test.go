package application

import (
	"context"
	"sync"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

const (
	callGetReturn   = "GetReturn"
	callStates      = "ListReturnStates"
	callItems       = "ListDeliveryItems"
	callDetails     = "ListDetails"
	callComplete    = "IsReviewComplete"
	callSubmit      = "SubmitDetail"
	callApprove     = "Approve"
	callReject      = "Reject"
	testDeliveryID  = int64(40)
	testReturnID    = int64(7)
	missingReturnID = int64(404)
)

// fakeBackend mimics the Kalium backend: it upserts detail lines and computes
// completeness itself.
type fakeBackend struct {
	mu      sync.Mutex
	returns map[int64]*domain.Return
	items   map[int64][]domain.SupplyItem
	details map[int64]map[int64]domain.DetailLine
	calls   map[string]int
	nextID  int64

	submitErr  error
	approveErr error
	rejectErr  error
	detailsErr error

	// when set, SubmitDetail signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func newFakeBackend(itemIDs ...int64) *fakeBackend {
	items := make([]domain.SupplyItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		items = append(items, domain.SupplyItem{ID: id, TypeName: "Vaso de precipitado", Category: "Vidrio"})
	}
	return &fakeBackend{
		returns: map[int64]*domain.Return{
			testReturnID: {ID: testReturnID, DeliveryID: testDeliveryID, OrderID: 3, Status: domain.StatusPending, StatusLabel: "Pendiente"},
		},
		items:   map[int64][]domain.SupplyItem{testDeliveryID: items},
		details: map[int64]map[int64]domain.DetailLine{},
		calls:   map[string]int{},
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) GetReturn(_ context.Context, returnID int64) (*domain.Return, error) {
	f.record(callGetReturn)
	f.mu.Lock()
	defer f.mu.Unlock()
	ret, ok := f.returns[returnID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	copyRet := *ret
	return &copyRet, nil
}

func (f *fakeBackend) ListReturnStates(context.Context) ([]domain.StateOption, error) {
	f.record(callStates)
	return []domain.StateOption{
		{ID: domain.StatusPending, Label: "Pendiente"},
		{ID: domain.StatusApproved, Label: "Aprobada"},
		{ID: domain.StatusRejected, Label: "Rechazada"},
	}, nil
}

func (f *fakeBackend) ListDeliveryItems(_ context.Context, deliveryID int64) ([]domain.SupplyItem, error) {
	f.record(callItems)
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SupplyItem(nil), f.items[deliveryID]...), nil
}

func (f *fakeBackend) ListDetails(_ context.Context, returnID int64) ([]domain.DetailLine, error) {
	f.record(callDetails)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	var lines []domain.DetailLine
	for _, line := range f.details[returnID] {
		lines = append(lines, line)
	}
	return lines, nil
}

func (f *fakeBackend) IsReviewComplete(_ context.Context, returnID int64) (bool, error) {
	f.record(callComplete)
	f.mu.Lock()
	defer f.mu.Unlock()
	ret, ok := f.returns[returnID]
	if !ok {
		return false, ports.ErrNotFound
	}
	items := f.items[ret.DeliveryID]
	if len(items) == 0 {
		return false, nil
	}
	for _, item := range items {
		if _, ok := f.details[returnID][item.ID]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeBackend) SubmitDetail(_ context.Context, line domain.DetailLine) (*domain.DetailLine, error) {
	f.record(callSubmit)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	byItem, ok := f.details[line.ReturnID]
	if !ok {
		byItem = map[int64]domain.DetailLine{}
		f.details[line.ReturnID] = byItem
	}
	if existing, ok := byItem[line.ItemID]; ok {
		line.ID = existing.ID
	} else {
		f.nextID++
		line.ID = f.nextID
	}
	byItem[line.ItemID] = line
	return &line, nil
}

func (f *fakeBackend) Approve(_ context.Context, returnID int64) (*domain.Return, error) {
	f.record(callApprove)
	return f.decide(returnID, domain.StatusApproved, nil, f.approveErr)
}

func (f *fakeBackend) Reject(_ context.Context, returnID int64, reason string) (*domain.Return, error) {
	f.record(callReject)
	return f.decide(returnID, domain.StatusRejected, &reason, f.rejectErr)
}

func (f *fakeBackend) decide(returnID int64, status domain.Status, reason *string, failure error) (*domain.Return, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if failure != nil {
		return nil, failure
	}
	ret, ok := f.returns[returnID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	ret.Status = status
	ret.RejectionReason = reason
	copyRet := *ret
	return &copyRet, nil
}

func (f *fakeBackend) detailCount(returnID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.details[returnID])
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.EventName())
	}
	return names
}
