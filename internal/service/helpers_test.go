package service

import (
	"context"
	"testing"

	"github.com/hugohenrick/verduleria-api/internal/domain/catalog"
	"github.com/hugohenrick/verduleria-api/internal/domain/lot"
	"github.com/hugohenrick/verduleria-api/internal/domain/session"
	"github.com/stretchr/testify/require"
)

func buyUnit(u catalog.BuyUnit) *catalog.BuyUnit {
	return &u
}

func (e *env) product(t *testing.T, name string, cat catalog.Category) *catalog.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), ProductInput{Name: name, Category: cat})
	require.NoError(t, err)
	return p
}

func (e *env) variant(t *testing.T, productID, name string, sale catalog.SaleUnit, buy *catalog.BuyUnit, conv string) *catalog.Variant {
	t.Helper()
	in := VariantInput{ProductID: productID, NameVariant: name, UnitSale: sale, UnitBuy: buy}
	if conv != "" {
		in.Conversion = decp(conv)
	}
	v, err := e.catalog.CreateVariant(context.Background(), in)
	require.NoError(t, err)
	return v
}

func (e *env) supplier(t *testing.T, nickname string) *catalog.Supplier {
	t.Helper()
	s, err := e.catalog.CreateSupplier(context.Background(), SupplierInput{Nickname: nickname, Name: "Juan", Lastname: "Pérez"})
	require.NoError(t, err)
	return s
}

// openSession crea una sesión con un ítem planificado por variante y la abre
func (e *env) openSession(t *testing.T, dateKey string, variants ...*catalog.Variant) (*session.Session, map[string]*session.Item) {
	t.Helper()
	ctx := context.Background()
	sess, err := e.sessions.Create(ctx, admin, CreateSessionInput{DateKey: dateKey})
	require.NoError(t, err)

	items := make(map[string]*session.Item, len(variants))
	for _, v := range variants {
		it, err := e.sessions.AddItem(ctx, admin, sess.ID, ItemInput{
			VariantID:  v.ID,
			Origin:     session.OriginPlanificado,
			PlannedQty: decp("10"),
		})
		require.NoError(t, err)
		items[v.ID] = it
	}
	sess, err = e.sessions.Open(ctx, sess.ID)
	require.NoError(t, err)
	return sess, items
}

func (e *env) confirm(t *testing.T, actor Actor, sessionID, itemID, supplierID string, qty, unitCost string, unit catalog.BuyUnit) *PurchaseResult {
	t.Helper()
	res, err := e.purchases.Confirm(context.Background(), actor, sessionID, ConfirmInput{
		ItemID: itemID,
		Confirmation: lot.Confirmation{
			SupplierID: supplierID,
			Qty:        dec(qty),
			UnitCost:   dec(unitCost),
			BuyUnit:    unit,
		},
	})
	require.NoError(t, err)
	return res
}

func kgConfirmation(supplierID, qty, unitCost string) lot.Confirmation {
	return lot.Confirmation{SupplierID: supplierID, Qty: dec(qty), UnitCost: dec(unitCost), BuyUnit: catalog.BuyKG}
}
