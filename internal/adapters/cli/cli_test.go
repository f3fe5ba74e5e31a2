package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"souk-inventory/internal/app"
	"souk-inventory/internal/core"
	"souk-inventory/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) app.ApplicationService {
	t.Helper()
	store := memstore.New()
	store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 50})
	store.AddSupplier(core.Supplier{ID: 1, Name: "Atlas General Supply"})
	store.AddProduct(core.Product{ID: 1, SKU: "OIL-001", Name: "Argan Oil", QuantityInStock: 12, ReorderThreshold: 10, WarehouseID: 1})
	return app.NewEngine(store, core.DefaultReorderPolicy(), true, nil, nil)
}

func TestRun_AdjustTriggersReorder(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer

	err := Run(context.Background(), svc, []string{"adjust", "1", "-5", "damaged", "in", "transit"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "OIL-001 now has 7 in stock.")
	// 2*10 - 7
	assert.Contains(t, out.String(), "created for 13 units")
}

func TestRun_OrderAndReceive(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, Run(ctx, svc, []string{"order", "1", "100"}, &out))
	assert.Contains(t, out.String(), "Purchase order #1 created for 38 units.")
	assert.Contains(t, out.String(), "quantity reduced")

	out.Reset()
	require.NoError(t, Run(ctx, svc, []string{"receive", "1"}, &out))
	assert.Contains(t, out.String(), "38 units added")

	err := Run(ctx, svc, []string{"receive", "1"}, &out)
	assert.True(t, errors.Is(err, core.ErrAlreadyReceived))
}

func TestRun_Listings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, cmd := range []string{"products", "orders", "warehouses", "health"} {
		var out bytes.Buffer
		require.NoError(t, Run(ctx, svc, []string{cmd}, &out), cmd)
		assert.NotEmpty(t, out.String(), cmd)
	}

	var out bytes.Buffer
	require.NoError(t, Run(ctx, svc, []string{"warehouses"}, &out))
	assert.Contains(t, out.String(), "24.00")
}

func TestRun_BadInput(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	var out bytes.Buffer

	assert.Error(t, Run(ctx, svc, nil, &out))
	assert.Error(t, Run(ctx, svc, []string{"explode"}, &out))
	assert.Error(t, Run(ctx, svc, []string{"adjust", "1"}, &out))
	assert.Error(t, Run(ctx, svc, []string{"product", "x"}, &out))

	err := Run(ctx, svc, []string{"product", "42"}, &out)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
