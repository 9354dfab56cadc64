package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/laboquimica/kalium-review/internal/clients/http/kalium"
	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

var _ ports.Backend = (*Kalium)(nil)

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Kalium adapts the REST client to the returns backend port.
type Kalium struct {
	client *kalium.Client
}

// NewKalium wraps the REST client.
func NewKalium(client *kalium.Client) *Kalium {
	return &Kalium{client: client}
}

func (k *Kalium) GetReturn(ctx context.Context, returnID int64) (*domain.Return, error) {
	payload, err := k.client.GetReturn(ctx, returnID)
	if err != nil {
		return nil, translate(err)
	}
	return ToDomainReturn(payload), nil
}

func (k *Kalium) ListReturnStates(ctx context.Context) ([]domain.StateOption, error) {
	payload, err := k.client.ListReturnStates(ctx)
	if err != nil {
		return nil, translate(err)
	}
	states := make([]domain.StateOption, 0, len(payload))
	for _, state := range payload {
		states = append(states, domain.StateOption{ID: domain.Status(state.IDEstDevolucion), Label: state.EstadoDevolucion})
	}
	return states, nil
}

func (k *Kalium) ListDeliveryItems(ctx context.Context, deliveryID int64) ([]domain.SupplyItem, error) {
	payload, err := k.client.ListDeliveryItems(ctx, deliveryID)
	if err != nil {
		return nil, translate(err)
	}
	items := make([]domain.SupplyItem, 0, len(payload))
	for _, link := range payload {
		if link.Insumo == nil {
			continue
		}
		items = append(items, toSupplyItem(link.Insumo))
	}
	return items, nil
}

func (k *Kalium) ListDetails(ctx context.Context, returnID int64) ([]domain.DetailLine, error) {
	payload, err := k.client.ListReturnDetails(ctx, returnID)
	if err != nil {
		return nil, translate(err)
	}
	lines := make([]domain.DetailLine, 0, len(payload))
	for i := range payload {
		if line, ok := ToDomainDetail(returnID, &payload[i]); ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (k *Kalium) IsReviewComplete(ctx context.Context, returnID int64) (bool, error) {
	complete, err := k.client.AllItemsReviewed(ctx, returnID)
	if err != nil {
		return false, translate(err)
	}
	return complete, nil
}

func (k *Kalium) SubmitDetail(ctx context.Context, line domain.DetailLine) (*domain.DetailLine, error) {
	if line.Outcome == domain.OutcomeNotReviewed {
		return nil, domain.ErrInvalidOutcome
	}
	payload, err := k.client.AddReturnDetail(ctx, kalium.NuevoDetalle{
		Devolucion:           kalium.DevolucionRef{IDDevolucion: line.ReturnID},
		Insumo:               kalium.InsumoRef{IDInsumo: line.ItemID},
		EstadoInsumoDevuelto: string(line.Outcome),
		Observaciones:        line.Observation,
	})
	if err != nil {
		return nil, translate(err)
	}
	stored, ok := ToDomainDetail(line.ReturnID, payload)
	if !ok {
		return &line, nil
	}
	return &stored, nil
}

func (k *Kalium) Approve(ctx context.Context, returnID int64) (*domain.Return, error) {
	payload, err := k.client.ApproveReturn(ctx, returnID)
	if err != nil {
		return nil, translate(err)
	}
	return ToDomainReturn(payload), nil
}

func (k *Kalium) Reject(ctx context.Context, returnID int64, reason string) (*domain.Return, error) {
	payload, err := k.client.RejectReturn(ctx, returnID, reason)
	if err != nil {
		return nil, translate(err)
	}
	return ToDomainReturn(payload), nil
}

// ToDomainReturn maps the wire return. Missing nested objects leave zero values.
func ToDomainReturn(payload *kalium.Devolucion) *domain.Return {
	if payload == nil {
		return nil
	}
	ret := &domain.Return{
		ID:              payload.IDDevolucion,
		RejectionReason: payload.MotivoRechazo,
	}
	if payload.FechaDevolucion != nil {
		if date, err := time.Parse(dateLayout, *payload.FechaDevolucion); err == nil {
			ret.ReturnDate = date
		}
	}
	if payload.HoraDevolucion != nil {
		ret.ReturnTime = parseDateTime(*payload.HoraDevolucion)
	}
	if payload.EstDevolucion != nil {
		ret.Status = domain.Status(payload.EstDevolucion.IDEstDevolucion)
		ret.StatusLabel = payload.EstDevolucion.EstadoDevolucion
	}
	if payload.Pedido != nil {
		ret.OrderID = payload.Pedido.IDPedido
	}
	if delivery := payload.Entrega; delivery != nil {
		ret.DeliveryID = delivery.IDEntrega
		if ret.OrderID == 0 && delivery.Pedido != nil {
			ret.OrderID = delivery.Pedido.IDPedido
		}
		if student := delivery.Estudiante; student != nil {
			ret.Student = &domain.Student{ID: student.IDEstudiante}
			if student.Usuario != nil {
				ret.Student.FirstName = student.Usuario.Nombre
				ret.Student.LastName = student.Usuario.Apellido
			}
		}
	}
	return ret
}

// ToDomainDetail maps a stored detail line. Lines without an item are dropped.
func ToDomainDetail(returnID int64, payload *kalium.DevolucionDetalle) (domain.DetailLine, bool) {
	if payload == nil || payload.Insumo == nil {
		return domain.DetailLine{}, false
	}
	outcome, err := domain.ParseOutcome(payload.EstadoInsumoDevuelto)
	if err != nil {
		// keep unknown server values so the item still counts as reviewed
		outcome = domain.Outcome(strings.TrimSpace(payload.EstadoInsumoDevuelto))
	}
	if payload.Devolucion != nil && payload.Devolucion.IDDevolucion != 0 {
		returnID = payload.Devolucion.IDDevolucion
	}
	return domain.DetailLine{
		ID:          payload.IDDevolucionDetalle,
		ReturnID:    returnID,
		ItemID:      payload.Insumo.IDInsumo,
		Outcome:     outcome,
		Observation: payload.Observaciones,
	}, true
}

func toSupplyItem(insumo *kalium.Insumo) domain.SupplyItem {
	item := domain.SupplyItem{ID: insumo.IDInsumo}
	if kind := insumo.TipoInsumo; kind != nil {
		item.TypeName = kind.NombreTipoInsumo
		if kind.Categoria != nil {
			item.Category = kind.Categoria.NombreCategoria
		}
	}
	return item
}

func parseDateTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

func translate(err error) error {
	var apiErr *kalium.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	remote := &ports.RemoteError{Status: apiErr.Status, Message: apiErr.Message}
	if apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ports.ErrNotFound, remote)
	}
	return remote
}
