//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/laboquimica/kalium-review/test/pact"

	reviewserver "github.com/laboquimica/kalium-review/go"
	operatorsmemory "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/memory"
	operatorsobs "github.com/laboquimica/kalium-review/internal/domains/operators/adapters/observability"
	operatorsapp "github.com/laboquimica/kalium-review/internal/domains/operators/application"
	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
	returnsobs "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/observability"
	returnsworkflows "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/workflows"
	returnsapp "github.com/laboquimica/kalium-review/internal/domains/returns/application"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	returnports "github.com/laboquimica/kalium-review/internal/domains/returns/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

const adminPassword = "pact-pass"

var adminOperator = operatordomain.Operator{
	ID:        1,
	FirstName: "Admin",
	LastName:  "Kalium",
	Email:     pacttest.AdminEmail,
	Role:      "ADMIN",
}

func TestConsoleProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateAdminSession: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StatePendingReturn: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPendingReturn()
			}
			return nil, nil
		},
		pacttest.StateReturnMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	mu      sync.RWMutex
	backend *contractBackend
	handler http.Handler
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		handler := app.handler
		app.mu.RUnlock()
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

// reset rebuilds the services so no review view survives between interactions.
func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	backend := newContractBackend()

	sessions := operatorsmemory.NewSessionStore()
	require.NoError(t, sessions.Save(context.Background(), operatordomain.Session{
		Token:     pacttest.AdminToken,
		Operator:  adminOperator,
		Scopes:    adminOperator.Scopes(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	operators := operatorsobs.New(operatorsapp.NewService(contractAuthenticator{}, sessions))

	reviews := returnsobs.New(returnsapp.NewService(backend,
		returnsapp.WithDecisionOrchestrator(returnsworkflows.NewInlineDecisions(backend)),
	))

	router := gin.New()
	router.Use(gin.Recovery())
	router = reviewserver.NewRouterWithGinEngine(router, reviewserver.ApiHandleFunctions{
		SessionAPI: reviewserver.NewSessionAPI(operators),
		ReviewAPI:  reviewserver.NewReviewAPI(reviews),
		Sessions:   operators,
	})

	a.mu.Lock()
	a.backend = backend
	a.handler = router
	a.mu.Unlock()
}

func (a *contractProviderApp) seedPendingReturn() {
	a.mu.RLock()
	backend := a.backend
	a.mu.RUnlock()
	backend.seed(&domain.Return{
		ID:          pacttest.ExistingReturnID,
		DeliveryID:  pacttest.DeliveryID,
		OrderID:     pacttest.OrderID,
		ReturnDate:  time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
		StatusLabel: "Pendiente",
		Student:     &domain.Student{ID: 21, FirstName: "Ana", LastName: "Quispe"},
	}, []domain.SupplyItem{
		{ID: pacttest.FirstItemID, TypeName: "Vaso de precipitado", Category: "Vidrio"},
		{ID: pacttest.SecondItemID, TypeName: "Pipeta", Category: "Vidrio"},
	})
}

type contractAuthenticator struct{}

func (contractAuthenticator) Authenticate(_ context.Context, creds operatordomain.Credentials) (*operatordomain.Operator, error) {
	if creds.Email != pacttest.AdminEmail || creds.Password != adminPassword {
		return nil, operatorports.ErrInvalidCredentials
	}
	op := adminOperator
	return &op, nil
}

// contractBackend stands in for Kalium: it upserts detail lines and computes completeness.
type contractBackend struct {
	mu      sync.Mutex
	returns map[int64]*domain.Return
	items   map[int64][]domain.SupplyItem
	details map[int64]map[int64]domain.DetailLine
	nextID  int64
}

func newContractBackend() *contractBackend {
	return &contractBackend{
		returns: map[int64]*domain.Return{},
		items:   map[int64][]domain.SupplyItem{},
		details: map[int64]map[int64]domain.DetailLine{},
	}
}

func (b *contractBackend) seed(ret *domain.Return, items []domain.SupplyItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.returns[ret.ID] = ret
	b.items[ret.DeliveryID] = items
}

func (b *contractBackend) GetReturn(_ context.Context, returnID int64) (*domain.Return, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ret, ok := b.returns[returnID]
	if !ok {
		return nil, returnports.ErrNotFound
	}
	copyRet := *ret
	return &copyRet, nil
}

func (b *contractBackend) ListReturnStates(context.Context) ([]domain.StateOption, error) {
	return []domain.StateOption{
		{ID: domain.StatusPending, Label: "Pendiente"},
		{ID: domain.StatusApproved, Label: "Aprobada"},
		{ID: domain.StatusRejected, Label: "Rechazada"},
	}, nil
}

func (b *contractBackend) ListDeliveryItems(_ context.Context, deliveryID int64) ([]domain.SupplyItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.SupplyItem(nil), b.items[deliveryID]...), nil
}

func (b *contractBackend) ListDetails(_ context.Context, returnID int64) ([]domain.DetailLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var lines []domain.DetailLine
	for _, line := range b.details[returnID] {
		lines = append(lines, line)
	}
	return lines, nil
}

func (b *contractBackend) IsReviewComplete(_ context.Context, returnID int64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ret, ok := b.returns[returnID]
	if !ok {
		return false, returnports.ErrNotFound
	}
	items := b.items[ret.DeliveryID]
	if len(items) == 0 {
		return false, nil
	}
	for _, item := range items {
		if _, ok := b.details[returnID][item.ID]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (b *contractBackend) SubmitDetail(_ context.Context, line domain.DetailLine) (*domain.DetailLine, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	byItem, ok := b.details[line.ReturnID]
	if !ok {
		byItem = map[int64]domain.DetailLine{}
		b.details[line.ReturnID] = byItem
	}
	if existing, ok := byItem[line.ItemID]; ok {
		line.ID = existing.ID
	} else {
		b.nextID++
		line.ID = b.nextID
	}
	byItem[line.ItemID] = line
	return &line, nil
}

func (b *contractBackend) Approve(_ context.Context, returnID int64) (*domain.Return, error) {
	return b.decide(returnID, domain.StatusApproved, nil)
}

func (b *contractBackend) Reject(_ context.Context, returnID int64, reason string) (*domain.Return, error) {
	return b.decide(returnID, domain.StatusRejected, &reason)
}

func (b *contractBackend) decide(returnID int64, status domain.Status, reason *string) (*domain.Return, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ret, ok := b.returns[returnID]
	if !ok {
		return nil, returnports.ErrNotFound
	}
	ret.Status = status
	ret.RejectionReason = reason
	copyRet := *ret
	return &copyRet, nil
}

var _ returnports.Backend = (*contractBackend)(nil)
