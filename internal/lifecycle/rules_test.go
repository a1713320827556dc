package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/listado/internal/models"
)

func publishableList() *models.OfferList {
	pct := 10.0
	return &models.OfferList{
		Title:         "September imports",
		ExchangeRate:  4000,
		TaxMode:       models.TaxModePercentage,
		TaxPercentage: &pct,
		Status:        models.ListStatusDraft,
	}
}

func pricedProduct(status string) models.Product {
	cost, final, profit := 220000.0, 440000.0, 220000.0
	return models.Product{
		Title:           "Wireless earbuds",
		Status:          status,
		TotalCostLocal:  &cost,
		FinalPriceLocal: &final,
		ProfitLocal:     &profit,
	}
}

func TestPublishListCascades(t *testing.T) {
	list := publishableList()
	products := []models.Product{
		pricedProduct(models.ProductStatusReady),
		pricedProduct(models.ProductStatusReady),
		pricedProduct(models.ProductStatusReady),
		pricedProduct(models.ProductStatusDraft),
		pricedProduct(models.ProductStatusDraft),
	}

	published, err := PublishList(list, products)
	require.NoError(t, err)
	assert.Equal(t, 3, published)
	assert.Equal(t, models.ListStatusPublished, list.Status)

	var gotPublished, gotDraft int
	for _, p := range products {
		switch p.Status {
		case models.ProductStatusPublished:
			gotPublished++
		case models.ProductStatusDraft:
			gotDraft++
		}
	}
	assert.Equal(t, 3, gotPublished)
	assert.Equal(t, 2, gotDraft)
}

func TestPublishListNoReadyProducts(t *testing.T) {
	list := publishableList()
	products := []models.Product{pricedProduct(models.ProductStatusDraft)}

	_, err := PublishList(list, products)
	var pf *PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Contains(t, pf.Reason, "at least one product ready")
	assert.Equal(t, models.ListStatusDraft, list.Status)
	assert.Equal(t, models.ProductStatusDraft, products[0].Status)
}

func TestPublishListBadParameters(t *testing.T) {
	t.Run("zero exchange rate", func(t *testing.T) {
		list := publishableList()
		list.ExchangeRate = 0
		_, err := PublishList(list, []models.Product{pricedProduct(models.ProductStatusReady)})
		var pf *PreconditionFailedError
		require.ErrorAs(t, err, &pf)
		assert.Equal(t, models.ListStatusDraft, list.Status)
	})

	t.Run("missing tax field", func(t *testing.T) {
		list := publishableList()
		list.TaxPercentage = nil
		_, err := PublishList(list, []models.Product{pricedProduct(models.ProductStatusReady)})
		var pf *PreconditionFailedError
		require.ErrorAs(t, err, &pf)
	})

	t.Run("fixed usd mode without amount", func(t *testing.T) {
		list := publishableList()
		list.TaxMode = models.TaxModeFixedUSD
		list.TaxPercentage = nil
		_, err := PublishList(list, []models.Product{pricedProduct(models.ProductStatusReady)})
		var pf *PreconditionFailedError
		require.ErrorAs(t, err, &pf)
	})
}

func TestPublishListWrongStatus(t *testing.T) {
	for _, status := range []string{models.ListStatusPublished, models.ListStatusClosed, models.ListStatusArchived} {
		list := publishableList()
		list.Status = status
		_, err := PublishList(list, []models.Product{pricedProduct(models.ProductStatusReady)})
		var it *IllegalTransitionError
		require.ErrorAs(t, err, &it, "status %s", status)
		assert.Equal(t, status, list.Status)
	}
}

func TestCloseList(t *testing.T) {
	list := publishableList()
	list.Status = models.ListStatusPublished
	require.NoError(t, CloseList(list))
	assert.Equal(t, models.ListStatusClosed, list.Status)

	for _, status := range []string{models.ListStatusDraft, models.ListStatusClosed, models.ListStatusArchived} {
		list := publishableList()
		list.Status = status
		var it *IllegalTransitionError
		require.ErrorAs(t, CloseList(list), &it, "status %s", status)
	}
}

func TestArchiveList(t *testing.T) {
	for _, status := range []string{models.ListStatusDraft, models.ListStatusPublished, models.ListStatusClosed} {
		list := publishableList()
		list.Status = status
		require.NoError(t, ArchiveList(list))
		assert.Equal(t, models.ListStatusArchived, list.Status)
	}

	list := publishableList()
	list.Status = models.ListStatusArchived
	var it *IllegalTransitionError
	require.ErrorAs(t, ArchiveList(list), &it)
}

func TestMarkProductReady(t *testing.T) {
	list := publishableList()
	p := pricedProduct(models.ProductStatusDraft)
	require.NoError(t, MarkProductReady(&p, list))
	assert.Equal(t, models.ProductStatusReady, p.Status)
}

func TestMarkProductReadyMissingPricing(t *testing.T) {
	list := publishableList()
	p := pricedProduct(models.ProductStatusDraft)
	p.FinalPriceLocal = nil

	err := MarkProductReady(&p, list)
	var pf *PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Contains(t, pf.Reason, "calculations")
	assert.Equal(t, models.ProductStatusDraft, p.Status)
}

func TestMarkProductReadyBelowCostRejected(t *testing.T) {
	list := publishableList()
	p := pricedProduct(models.ProductStatusDraft)
	// Manual override dropped the final price under total cost. The engine
	// accepts negative profit; marking ready must not.
	below := 100000.0
	p.FinalPriceLocal = &below

	err := MarkProductReady(&p, list)
	var pf *PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Contains(t, pf.Reason, "below its total cost")
	assert.Equal(t, models.ProductStatusDraft, p.Status)

	// Exactly at cost is allowed: the floor is >=, not >.
	atCost := *p.TotalCostLocal
	p.FinalPriceLocal = &atCost
	require.NoError(t, MarkProductReady(&p, list))
	assert.Equal(t, models.ProductStatusReady, p.Status)
}

func TestProductTransitionsBlockedUnderFrozenList(t *testing.T) {
	for _, listStatus := range []string{models.ListStatusClosed, models.ListStatusArchived} {
		list := publishableList()
		list.Status = listStatus

		draft := pricedProduct(models.ProductStatusDraft)
		ready := pricedProduct(models.ProductStatusReady)
		published := pricedProduct(models.ProductStatusPublished)

		var it *IllegalTransitionError
		require.ErrorAs(t, MarkProductReady(&draft, list), &it)
		require.ErrorAs(t, PublishProduct(&ready, list), &it)
		require.ErrorAs(t, HideProduct(&published, list), &it)

		assert.Equal(t, models.ProductStatusDraft, draft.Status)
		assert.Equal(t, models.ProductStatusReady, ready.Status)
		assert.Equal(t, models.ProductStatusPublished, published.Status)
	}
}

func TestPublishProductRequiresPublishedList(t *testing.T) {
	list := publishableList() // still draft
	p := pricedProduct(models.ProductStatusReady)

	err := PublishProduct(&p, list)
	var pf *PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, models.ProductStatusReady, p.Status)
}

func TestHideAndRepublish(t *testing.T) {
	list := publishableList()
	list.Status = models.ListStatusPublished

	p := pricedProduct(models.ProductStatusPublished)
	require.NoError(t, HideProduct(&p, list))
	assert.Equal(t, models.ProductStatusHidden, p.Status)

	// Re-publishing a hidden product skips the pricing check.
	p.FinalPriceLocal = nil
	require.NoError(t, PublishProduct(&p, list))
	assert.Equal(t, models.ProductStatusPublished, p.Status)
}

func TestPublishProductWrongStatus(t *testing.T) {
	list := publishableList()
	list.Status = models.ListStatusPublished

	p := pricedProduct(models.ProductStatusDraft)
	var it *IllegalTransitionError
	require.ErrorAs(t, PublishProduct(&p, list), &it)

	p = pricedProduct(models.ProductStatusPublished)
	require.ErrorAs(t, PublishProduct(&p, list), &it)
}

func TestSetOrderStatusFreeForm(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusDelivered}

	// Backward correction is allowed.
	require.NoError(t, SetOrderStatus(o, models.OrderStatusNew))
	assert.Equal(t, models.OrderStatusNew, o.Status)

	err := SetOrderStatus(o, "stuck")
	var pf *PreconditionFailedError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, models.OrderStatusNew, o.Status)
}

func TestSetDeliveredAtForcesDelivered(t *testing.T) {
	o := &models.Order{Status: models.OrderStatusInTransit}
	now := time.Now()

	SetDeliveredAt(o, &now)
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)

	SetDeliveredAt(o, nil)
	assert.Nil(t, o.DeliveredAt)
	// Clearing the date does not rewind the status.
	assert.Equal(t, models.OrderStatusDelivered, o.Status)
}

func TestRecomputeOrderTotals(t *testing.T) {
	o := &models.Order{}
	RecomputeOrderTotals(o)
	assert.Zero(t, o.TotalItems)
	assert.Zero(t, o.TotalSaleLocal)

	o.Items = []models.OrderItem{
		{Quantity: 2, UnitSaleLocal: 440000, UnitCostLocal: 220000},
		{Quantity: 1, UnitSaleLocal: 150000, UnitCostLocal: 90000},
	}
	RecomputeOrderTotals(o)
	assert.Equal(t, 3, o.TotalItems)
	assert.Equal(t, 1030000.0, o.TotalSaleLocal)
	assert.Equal(t, 530000.0, o.TotalCostLocal)
	assert.Equal(t, 500000.0, o.TotalProfitLocal)

	o.Items = o.Items[:1]
	RecomputeOrderTotals(o)
	assert.Equal(t, 2, o.TotalItems)
	assert.Equal(t, 880000.0, o.TotalSaleLocal)
	assert.Equal(t, 440000.0, o.TotalCostLocal)
	assert.Equal(t, 440000.0, o.TotalProfitLocal)
}

func TestBuildItemFromProduct(t *testing.T) {
	p := pricedProduct(models.ProductStatusPublished)
	p.ID = uuid.New()

	item, err := BuildItem(NewItem{Product: &p})
	require.NoError(t, err)
	assert.Equal(t, p.ID, *item.ProductID)
	assert.Equal(t, "Wireless earbuds", item.Title)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 440000.0, item.UnitSaleLocal)
	assert.Equal(t, 220000.0, item.UnitCostLocal)
	assert.Equal(t, models.ItemStatusRequested, item.Status)

	// Snapshot is decoupled: later product price changes must not affect it.
	newFinal := 1.0
	p.FinalPriceLocal = &newFinal
	assert.Equal(t, 440000.0, item.UnitSaleLocal)
}

func TestBuildItemFreehand(t *testing.T) {
	item, err := BuildItem(NewItem{
		Title:         "Phone case",
		Quantity:      3,
		UnitSaleLocal: 50000,
		UnitCostLocal: 20000,
	})
	require.NoError(t, err)
	assert.Nil(t, item.ProductID)
	assert.Equal(t, 3, item.Quantity)
}

func TestBuildItemValidation(t *testing.T) {
	var pf *PreconditionFailedError

	_, err := BuildItem(NewItem{Title: "x", Quantity: -1})
	require.ErrorAs(t, err, &pf)

	_, err = BuildItem(NewItem{Quantity: 1, UnitSaleLocal: 10})
	require.ErrorAs(t, err, &pf)

	unp := pricedProduct(models.ProductStatusDraft)
	unp.TotalCostLocal = nil
	_, err = BuildItem(NewItem{Product: &unp})
	require.ErrorAs(t, err, &pf)
}
