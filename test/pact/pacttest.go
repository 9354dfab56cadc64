//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Console contract: the browser console consumes the review API.
const (
	ProviderName = "kalium-review-api"
	ConsumerName = "kalium-console-ui"

	StateAdminSession  = "an admin operator session exists"
	StatePendingReturn = "return 7 is pending with two delivered items"
	StateReturnMissing = "no return with id 404"
)

// Backend contract: the review API consumes the Kalium REST backend.
const (
	BackendProviderName = "kalium-backend"
	BackendConsumerName = ProviderName

	BackendStatePendingReturn  = "devolucion 7 is pending"
	BackendStateReturnMissing  = "devolucion 404 does not exist"
	BackendStateApprovedReturn = "devolucion 8 is already approved"
)

const (
	ExistingReturnID int64 = 7
	MissingReturnID  int64 = 404
	ApprovedReturnID int64 = 8
	DeliveryID       int64 = 40
	OrderID          int64 = 3

	FirstItemID  int64 = 11
	SecondItemID int64 = 12

	AdminToken   = "pact-admin-token"
	AdminEmail   = "admin@kalium.edu"
	RejectReason = "Material incompleto"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file written by the console consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// BackendPactFile returns the pact file the Kalium backend team verifies.
func BackendPactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), BackendConsumerName+"-"+BackendProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleDevolucion is the backend body of the pending return.
func ExampleDevolucion() map[string]any {
	return map[string]any{
		"idDevolucion":    ExistingReturnID,
		"fechaDevolucion": "2024-05-06",
		"horaDevolucion":  "10:15:00",
		"pedido":          map[string]any{"idPedido": OrderID},
		"estDevolucion":   map[string]any{"idEstDevolucion": 1, "estadoDevolucion": "Pendiente"},
		"entrega": map[string]any{
			"idEntrega": DeliveryID,
			"estudiante": map[string]any{
				"idEstudiante": 21,
				"usuario": map[string]any{
					"idUsuario": 31,
					"nombre":    "Ana",
					"apellido":  "Quispe",
					"correo":    "ana.quispe@kalium.edu",
				},
			},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
