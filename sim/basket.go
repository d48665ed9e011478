/*
basket.go - Line item composition per cashier category

PURPOSE:
  Given a transaction and the category of the cashier it ran on, produce
  its line items. Each category has its own handler:

  gas:      one line, fuel SKU chosen between the two fuels, 0.10/unit
            discount, quantity ~N(37, 8) clamped to >= 15
  electric: one line on the charging SKU, quantity ~N(32, 8) clamped to
            >= 5, plus charge-session context (start = end - quantity
            minutes, at roughly 1 kWh per minute)
  service:  one line, quantity 1, catalog price; every 6th visit per
            customer is free and records a car-wash campaign redemption
  cashier:  1-5 lines of shop SKUs with small-basket-skewed quantities;
            campaign-targeted products first try to redeem a pending
            reward (one free unit, redemption recorded), otherwise accrue
            the purchased units toward the next reward

ERROR POLICY:
  A category with no catalog products, or an unresolvable car-wash
  campaign, is a data integrity violation and fails loudly. This is the
  opposite of the planner's silent-drop policy for sampling misses: by
  the time a basket is composed the transaction already exists, so a
  missing product would orphan it.

SEE ALSO:
  - ledger.go: the accrual/redemption state consulted here
  - engine.go: dispatches transactions into Compose
*/
package sim

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Basket line count and per-line quantity distributions. Both favor small
// baskets: 60% of register visits have 1-2 lines, 65% of lines 1-3 units.
var (
	lineCountWeights = []float64{0.30, 0.30, 0.20, 0.10, 0.10}
	quantityWeights  = []float64{0.15, 0.25, 0.25, 0.15, 0.10, 0.05, 0.02, 0.015, 0.01, 0.005}
)

// Composer builds transaction lines and campaign redemptions. It owns the
// per-run mutable state (campaign ledger, service visit counter) and the
// catalog indexes.
type Composer struct {
	sampler *Sampler
	ledger  *CampaignLedger
	visits  VisitCounter

	productsByCategory map[CashierCategory][]Product
	campaignByProduct  map[int64]Campaign
	campaignByID       map[int64]Campaign
	carWashCampaignID  int64
}

func NewComposer(ds *Dataset, sampler *Sampler, ledger *CampaignLedger) *Composer {
	byCategory := make(map[CashierCategory][]Product)
	for _, p := range ds.Products {
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	byProduct := make(map[int64]Campaign, len(ds.Campaigns))
	byID := make(map[int64]Campaign, len(ds.Campaigns))
	for _, c := range ds.Campaigns {
		byProduct[c.ProductID] = c
		byID[c.ID] = c
	}

	return &Composer{
		sampler:            sampler,
		ledger:             ledger,
		visits:             make(VisitCounter),
		productsByCategory: byCategory,
		campaignByProduct:  byProduct,
		campaignByID:       byID,
		carWashCampaignID:  ds.CarWashCampaignID,
	}
}

// Compose produces the line items for one transaction and any campaign
// redemptions they triggered.
func (c *Composer) Compose(txn Transaction, customerID string, category CashierCategory) ([]TransactionLine, []CampaignRedemption, error) {
	switch category {
	case CategoryGas:
		return c.gasLine(txn)
	case CategoryElectric:
		return c.electricLine(txn)
	case CategoryService:
		return c.serviceLine(txn, customerID)
	case CategoryCashier:
		return c.shopLines(txn, customerID)
	default:
		return nil, nil, missingRef("cashier category", string(category))
	}
}

// =============================================================================
// GAS
// =============================================================================

func (c *Composer) gasLine(txn Transaction) ([]TransactionLine, []CampaignRedemption, error) {
	product, err := c.pickProduct(CategoryGas)
	if err != nil {
		return nil, nil, err
	}

	price := decimal.NewFromFloat(c.sampler.Uniform(12.5, 14.0)).Round(2)
	discount := decimal.NewFromFloat(0.10) // fixed per liter
	quantity := clampedQuantity(c.sampler.Normal(37, 8), 15)

	net := price.Sub(discount)
	if net.IsNegative() {
		net = decimal.Zero
	}

	line := TransactionLine{
		ID:            c.sampler.NewID(),
		TransactionID: txn.ID,
		ProductID:     product.ID,
		Product:       product.Name,
		Price:         price,
		Discount:      discount,
		Quantity:      quantity,
		Total:         quantity.Mul(net).Round(2),
	}
	return []TransactionLine{line}, nil, nil
}

// =============================================================================
// ELECTRIC
// =============================================================================

func (c *Composer) electricLine(txn Transaction) ([]TransactionLine, []CampaignRedemption, error) {
	product, err := c.pickProduct(CategoryElectric)
	if err != nil {
		return nil, nil, err
	}

	price := decimal.NewFromFloat(c.sampler.Uniform(3.5, 6.5)).Round(2)
	quantity := clampedQuantity(c.sampler.Normal(32, 8), 5)

	// Charge duration runs at roughly 1 minute per kWh; the transaction
	// timestamp marks the end of the session.
	duration := time.Duration(quantity.IntPart()) * time.Minute
	start := txn.Timestamp.Add(-duration)

	line := TransactionLine{
		ID:            c.sampler.NewID(),
		TransactionID: txn.ID,
		ProductID:     product.ID,
		Product:       product.Name,
		Price:         price,
		Discount:      decimal.Zero,
		Quantity:      quantity,
		Total:         quantity.Mul(price).Round(2),
		Context: map[string]string{
			"type":       "charge",
			"start_time": start.Format(time.RFC3339),
			"end_time":   txn.Timestamp.Format(time.RFC3339),
		},
	}
	return []TransactionLine{line}, nil, nil
}

// =============================================================================
// SERVICE (car wash)
// =============================================================================

func (c *Composer) serviceLine(txn Transaction, customerID string) ([]TransactionLine, []CampaignRedemption, error) {
	product, err := c.pickProduct(CategoryService)
	if err != nil {
		return nil, nil, err
	}

	campaign, ok := c.campaignByID[c.carWashCampaignID]
	if !ok {
		return nil, nil, missingRef("campaign", fmt.Sprintf("car wash campaign %d", c.carWashCampaignID))
	}

	visit := c.visits.Next(customerID)
	free := visit%6 == 0 // every 6th wash is on the house

	line := TransactionLine{
		ID:            c.sampler.NewID(),
		TransactionID: txn.ID,
		ProductID:     product.ID,
		Product:       product.Name,
		Price:         product.Price,
		Discount:      decimal.Zero,
		Quantity:      decimal.NewFromInt(1),
		Total:         product.Price.Round(2),
	}

	if !free {
		return []TransactionLine{line}, nil, nil
	}

	redemption := CampaignRedemption{
		ID:         c.sampler.NewID(),
		CampaignID: campaign.ID,
		CustomerID: customerID,
	}
	line.Discount = decimal.NewFromInt(1)
	line.Total = decimal.Zero
	line.RedemptionID = redemption.ID

	return []TransactionLine{line}, []CampaignRedemption{redemption}, nil
}

// =============================================================================
// CASHIER (shop baskets)
// =============================================================================

func (c *Composer) shopLines(txn Transaction, customerID string) ([]TransactionLine, []CampaignRedemption, error) {
	products := c.productsByCategory[CategoryCashier]
	if len(products) == 0 {
		return nil, nil, missingRef("product", "no shop products in catalog")
	}

	numLines := c.sampler.WeightedIndex(lineCountWeights) + 1

	var lines []TransactionLine
	var redemptions []CampaignRedemption

	for i := 0; i < numLines; i++ {
		product := products[c.sampler.Pick(len(products))]
		quantity := c.sampler.WeightedIndex(quantityWeights) + 1

		freeUnits := 0
		redemptionID := ""

		if campaign, ok := c.campaignByProduct[product.ID]; ok {
			// Redemption before accrual: a line never both consumes a
			// reward and counts toward the next one.
			if c.ledger.TryRedeem(customerID, campaign.ID) {
				freeUnits = 1
				redemption := CampaignRedemption{
					ID:         c.sampler.NewID(),
					CampaignID: campaign.ID,
					CustomerID: customerID,
				}
				redemptions = append(redemptions, redemption)
				redemptionID = redemption.ID
			} else {
				c.ledger.Accrue(customerID, campaign.ID, quantity, campaign.Threshold)
			}
		}

		paid := quantity - freeUnits
		discount := decimal.Zero
		if freeUnits > 0 {
			discount = decimal.NewFromInt(1)
		}

		lines = append(lines, TransactionLine{
			ID:            c.sampler.NewID(),
			TransactionID: txn.ID,
			ProductID:     product.ID,
			Product:       product.Name,
			Price:         product.Price,
			Discount:      discount,
			Quantity:      decimal.NewFromInt(int64(quantity)),
			Total:         product.Price.Mul(decimal.NewFromInt(int64(paid))).Round(2),
			RedemptionID:  redemptionID,
		})
	}

	return lines, redemptions, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// pickProduct chooses uniformly among the catalog products of a category.
// An empty category is a data error: the transaction already exists and a
// missing product would orphan it.
func (c *Composer) pickProduct(category CashierCategory) (Product, error) {
	products := c.productsByCategory[category]
	if len(products) == 0 {
		return Product{}, missingRef("product", fmt.Sprintf("no %s products in catalog", category))
	}
	return products[c.sampler.Pick(len(products))], nil
}

// clampedQuantity rounds a normal draw to one decimal and clamps it to a
// minimum dispensed amount.
func clampedQuantity(draw float64, min int) decimal.Decimal {
	q := decimal.NewFromFloat(draw).Round(1)
	floor := decimal.NewFromInt(int64(min))
	if q.LessThan(floor) {
		return floor
	}
	return q
}
