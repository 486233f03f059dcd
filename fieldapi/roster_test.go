package fieldapi_test

import (
	"context"
	"testing"

	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/MrEthical07/goFieldOps/internal/devserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterItems(t *testing.T) {
	h := newHarness(t, devserver.Options{})
	ctx := context.Background()
	h.login(t, "admin@example.com", "admin-pass")

	before, err := h.api.Roster.Vehicles(ctx)
	require.NoError(t, err)

	v, err := h.api.Roster.CreateVehicle(ctx, "Van 3")
	require.NoError(t, err)
	assert.Equal(t, "Van 3", v.Name)

	after, err := h.api.Roster.Vehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	require.NoError(t, h.api.Roster.DeleteVehicle(ctx, v.ID))
	err = h.api.Roster.DeleteVehicle(ctx, v.ID)
	assert.ErrorIs(t, err, fieldapi.ErrNotFound)

	sub, err := h.api.Roster.CreateSubcontractor(ctx, "Bolt Co")
	require.NoError(t, err)
	subs, err := h.api.Roster.Subcontractors(ctx)
	require.NoError(t, err)
	assert.Contains(t, subs, *sub)

	eq, err := h.api.Roster.CreateEquipment(ctx, "Lift")
	require.NoError(t, err)
	require.NoError(t, h.api.Roster.DeleteEquipment(ctx, eq.ID))
	require.NoError(t, h.api.Roster.DeleteSubcontractor(ctx, sub.ID))
}

func TestRosterEmployees(t *testing.T) {
	h := newHarness(t, devserver.Options{})
	ctx := context.Background()
	h.login(t, "admin@example.com", "admin-pass")

	e, err := h.api.Roster.CreateEmployee(ctx, "Jo", "Field")
	require.NoError(t, err)
	assert.Equal(t, "Jo Field", e.Name)

	require.NoError(t, h.api.Roster.DeleteEmployee(ctx, e.ID))
	assert.ErrorIs(t, h.api.Roster.DeleteEmployee(ctx, e.ID), fieldapi.ErrNotFound)
}

func TestRosterUnknownKind(t *testing.T) {
	h := newHarness(t, devserver.Options{})
	_, err := h.api.Roster.Items(context.Background(), "cranes")
	assert.Error(t, err)
}
