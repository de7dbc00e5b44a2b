package service

import (
	"context"
	"fmt"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/storage"

	"github.com/google/uuid"
)

const DefaultStation = "kitchen"

// KitchenQueue turns tab items into kitchen tickets and moves tickets through
// their fixed sequence. A ticket keeps the items as they were when sent.
type KitchenQueue struct {
	deps Deps
}

func NewKitchenQueue(deps Deps) *KitchenQueue {
	return &KitchenQueue{deps: deps.withDefaults()}
}

type SendInput struct {
	TabID       string   `json:"tab_id"`
	LineItemIDs []string `json:"line_item_ids"`
	Station     string   `json:"station"`
}

func (q *KitchenQueue) SendToKitchen(ctx context.Context, in SendInput) (*domain.KitchenTicket, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	if in.TabID == "" {
		return nil, domain.Validation("tab id is required")
	}
	if len(in.LineItemIDs) == 0 {
		return nil, domain.Validation("at least one line item is required")
	}
	seen := make(map[string]bool, len(in.LineItemIDs))
	for _, id := range in.LineItemIDs {
		if seen[id] {
			return nil, domain.Validation("line item %s listed twice", id)
		}
		seen[id] = true
	}
	if in.Station == "" {
		in.Station = DefaultStation
	}

	var ticket *domain.KitchenTicket
	err = q.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		now := q.deps.Clock.Now()

		tab, err := r.Tabs().GetForUpdate(ctx, in.TabID)
		if err != nil {
			return notFound(err, domain.CodeTabNotFound, "tab", in.TabID)
		}
		if !tab.Live() {
			return domain.Conflict(domain.CodeTabClosed, "tab is already %s", tab.State).With("tab_id", tab.ID)
		}
		table, err := r.Tables().Get(ctx, tab.TableID)
		if err != nil {
			return notFound(err, domain.CodeTableNotFound, "table", tab.TableID)
		}

		snapshot := make(domain.TicketItems, 0, len(in.LineItemIDs))
		for _, id := range in.LineItemIDs {
			item, err := r.Tabs().GetItem(ctx, id)
			if err != nil {
				return notFound(err, domain.CodeItemNotFound, "line item", id)
			}
			if item.TabID != tab.ID {
				return domain.NotFound(domain.CodeItemNotFound, "line item %s is not on tab %s", id, tab.ID).With("id", id)
			}
			if item.State != domain.ItemActive {
				return domain.Conflict(domain.CodeItemNotActive, "line item %s is %s", id, item.State)
			}
			if item.SentAt != nil {
				return domain.Conflict(domain.CodeItemAlreadySent, "line item %s was already sent", id).With("id", id)
			}

			snapshot = append(snapshot, domain.TicketItem{
				LineItemID: item.ID,
				ProductID:  item.ProductID,
				Name:       item.Name,
				Qty:        item.Qty,
				Notes:      item.Notes,
			})
			item.SentAt = &now
			if err := r.Tabs().UpdateItem(ctx, item); err != nil {
				return err
			}
		}

		ticket = &domain.KitchenTicket{
			ID:          uuid.NewString(),
			TabID:       tab.ID,
			TableNumber: table.Number,
			Station:     in.Station,
			Status:      domain.TicketPending,
			Items:       snapshot,
			SentBy:      actor.StaffID,
			CreatedAt:   now,
		}
		return r.Tickets().Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	q.deps.publish(ctx, actor.TenantID, []domain.Event{
		{Name: domain.EventTicketCreated, Payload: *ticket, OccurredAt: ticket.CreatedAt},
	})
	return ticket, nil
}

// AdvanceTicket moves a ticket to next, which must be its immediate
// successor. The kitchen moves tickets up to ready; any staff member can
// mark a ready ticket delivered.
func (q *KitchenQueue) AdvanceTicket(ctx context.Context, ticketID string, next domain.TicketStatus) (*domain.KitchenTicket, error) {
	if !next.Valid() {
		return nil, domain.Validation("unknown ticket status %q", next)
	}
	need := domain.PrivilegeKitchen
	if next == domain.TicketDelivered {
		need = domain.PrivilegeStaff
	}
	actor, err := actorFrom(ctx, need)
	if err != nil {
		return nil, err
	}

	var (
		ticket *domain.KitchenTicket
		events []domain.Event
	)
	err = q.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		events = nil
		now := q.deps.Clock.Now()

		ticket, err = r.Tickets().GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFound(err, domain.CodeTicketNotFound, "ticket", ticketID)
		}
		expected, ok := ticket.Status.Next()
		if !ok || expected != next {
			return domain.Conflict(domain.CodeIllegalTransition, "ticket cannot move from %s to %s", ticket.Status, next).
				With("from", ticket.Status).With("to", next)
		}

		ticket.Status = next
		switch next {
		case domain.TicketInProgress:
			ticket.StartedAt = &now
		case domain.TicketReady:
			ticket.ReadyAt = &now
		case domain.TicketDelivered:
			ticket.DeliveredAt = &now
		}
		if err := r.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		events = append(events, domain.Event{Name: domain.EventTicketUpdated, Payload: *ticket, OccurredAt: now})
		if next == domain.TicketReady {
			events = append(events, domain.Event{
				Name: domain.EventWaiterNotification,
				Payload: domain.WaiterNotificationPayload{
					TicketID:    ticket.ID,
					TabID:       ticket.TabID,
					TableNumber: ticket.TableNumber,
					Station:     ticket.Station,
					Message:     fmt.Sprintf("Table %d: order ready at %s", ticket.TableNumber, ticket.Station),
				},
				OccurredAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	q.deps.Metrics.TicketsAdvanced.WithLabelValues(string(next)).Inc()
	q.deps.publish(ctx, actor.TenantID, events)
	return ticket, nil
}

// Queue lists undelivered tickets for a station, oldest first, each
// annotated with its urgency as of now.
func (q *KitchenQueue) Queue(ctx context.Context, station string) ([]domain.TicketView, error) {
	actor, err := actorFrom(ctx, domain.PrivilegeStaff)
	if err != nil {
		return nil, err
	}
	settings, err := q.deps.settings(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	var tickets []domain.KitchenTicket
	err = q.deps.UoW.RunInTransaction(ctx, actor.TenantID, func(ctx context.Context, r storage.Repos) error {
		tickets, err = r.Tickets().ListOpen(ctx, station)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := q.deps.Clock.Now()
	views := make([]domain.TicketView, 0, len(tickets))
	for _, t := range tickets {
		elapsed := now.Sub(t.CreatedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		views = append(views, domain.TicketView{
			KitchenTicket: t,
			Elapsed:       elapsed,
			Urgency:       domain.UrgencyFor(elapsed, settings.TicketWarning, settings.TicketCritical),
		})
	}
	return views, nil
}
