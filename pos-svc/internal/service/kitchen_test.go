package service_test

import (
	"testing"
	"time"

	"overcooked-pos/pos-svc/internal/domain"
	"overcooked-pos/pos-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKitchenQueue_TicketLifecycle(t *testing.T) {
	f, tabs := newTabFixture(t)
	kitchen := service.NewKitchenQueue(f.deps)
	ctx := as(domain.PrivilegeStaff)

	tab, err := tabs.OpenTable(ctx, service.OpenTableInput{TableID: "t5", PartySize: 2})
	require.NoError(t, err)
	first, err := tabs.AddLineItem(ctx, service.AddItemInput{TabID: tab.ID, ProductID: "menu-special", Qty: 2, Notes: "no onions"})
	require.NoError(t, err)

	ticket, err := kitchen.SendToKitchen(ctx, service.SendInput{TabID: tab.ID, LineItemIDs: []string{first.Item.ID}})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPending, ticket.Status)
	assert.Equal(t, service.DefaultStation, ticket.Station)
	assert.Equal(t, 5, ticket.TableNumber)
	require.Len(t, ticket.Items, 1)
	assert.Equal(t, "no onions", ticket.Items[0].Notes)

	_, err = kitchen.SendToKitchen(ctx, service.SendInput{TabID: tab.ID, LineItemIDs: []string{first.Item.ID}})
	assert.Equal(t, domain.CodeItemAlreadySent, codeOf(t, err))

	_, err = kitchen.AdvanceTicket(ctx, ticket.ID, domain.TicketInProgress)
	assert.True(t, domain.IsKind(err, domain.KindForbidden), "staff cannot start cooking")

	cook := as(domain.PrivilegeKitchen)
	_, err = kitchen.AdvanceTicket(cook, ticket.ID, domain.TicketReady)
	assert.Equal(t, domain.CodeIllegalTransition, codeOf(t, err))

	for _, next := range []domain.TicketStatus{domain.TicketInProgress, domain.TicketReady} {
		ticket, err = kitchen.AdvanceTicket(cook, ticket.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, ticket.Status)
	}
	assert.NotNil(t, ticket.StartedAt)
	assert.NotNil(t, ticket.ReadyAt)
	assert.Contains(t, f.published(), domain.EventWaiterNotification)

	ticket, err = kitchen.AdvanceTicket(ctx, ticket.ID, domain.TicketDelivered)
	require.NoError(t, err)
	assert.NotNil(t, ticket.DeliveredAt)

	_, err = kitchen.AdvanceTicket(ctx, ticket.ID, domain.TicketDelivered)
	assert.Equal(t, domain.CodeIllegalTransition, codeOf(t, err))
}

func TestKitchenQueue_SnapshotSurvivesVoid(t *testing.T) {
	f, tabs := newTabFixture(t)
	kitchen := service.NewKitchenQueue(f.deps)
	ctx := as(domain.PrivilegeStaff)

	tab, err := tabs.OpenTable(ctx, service.OpenTableInput{TableID: "t5", PartySize: 2})
	require.NoError(t, err)
	added, err := tabs.AddLineItem(ctx, service.AddItemInput{TabID: tab.ID, ProductID: "menu-special", Qty: 1})
	require.NoError(t, err)
	ticket, err := kitchen.SendToKitchen(ctx, service.SendInput{TabID: tab.ID, LineItemIDs: []string{added.Item.ID}})
	require.NoError(t, err)

	_, err = tabs.VoidLineItem(ctx, added.Item.ID, "sent by mistake")
	assert.True(t, domain.IsKind(err, domain.KindForbidden), "voiding a sent item needs a manager")
	_, err = tabs.VoidLineItem(as(domain.PrivilegeManager), added.Item.ID, "sent by mistake")
	require.NoError(t, err)

	views, err := kitchen.Queue(ctx, service.DefaultStation)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ticket.ID, views[0].ID)
	assert.Equal(t, "Chef special", views[0].Items[0].Name)
}

func TestKitchenQueue_Urgency(t *testing.T) {
	f, tabs := newTabFixture(t)
	kitchen := service.NewKitchenQueue(f.deps)
	ctx := as(domain.PrivilegeStaff)

	tab, err := tabs.OpenTable(ctx, service.OpenTableInput{TableID: "t5", PartySize: 2})
	require.NoError(t, err)
	added, err := tabs.AddLineItem(ctx, service.AddItemInput{TabID: tab.ID, ProductID: "menu-special", Qty: 1})
	require.NoError(t, err)
	_, err = kitchen.SendToKitchen(ctx, service.SendInput{TabID: tab.ID, LineItemIDs: []string{added.Item.ID}, Station: "grill"})
	require.NoError(t, err)

	tests := []struct {
		after time.Duration
		want  domain.Urgency
	}{
		{after: 0, want: domain.UrgencyNormal},
		{after: 10 * time.Minute, want: domain.UrgencyWarning},
		{after: 10 * time.Minute, want: domain.UrgencyCritical},
	}
	for _, testCase := range tests {
		f.clock.Advance(testCase.after)
		views, err := kitchen.Queue(ctx, "grill")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, testCase.want, views[0].Urgency)
	}

	views, err := kitchen.Queue(ctx, "bar")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestKitchenQueue_SendValidation(t *testing.T) {
	f, _ := newTabFixture(t)
	kitchen := service.NewKitchenQueue(f.deps)

	tests := []struct {
		name  string
		input service.SendInput
		want  domain.Kind
	}{
		{name: "no tab", input: service.SendInput{LineItemIDs: []string{"x"}}, want: domain.KindValidation},
		{name: "no items", input: service.SendInput{TabID: "tab"}, want: domain.KindValidation},
		{name: "duplicate items", input: service.SendInput{TabID: "tab", LineItemIDs: []string{"x", "x"}}, want: domain.KindValidation},
		{name: "unknown tab", input: service.SendInput{TabID: "tab", LineItemIDs: []string{"x"}}, want: domain.KindNotFound},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := kitchen.SendToKitchen(as(domain.PrivilegeStaff), testCase.input)
			assert.True(t, domain.IsKind(err, testCase.want), "got %v", err)
		})
	}
}
