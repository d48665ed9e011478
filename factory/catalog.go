package factory

import (
	"github.com/forecourt/pos-engine/sim"
	"github.com/shopspring/decimal"
)

// CarWashCampaignID is the campaign the service composer redeems the
// every-6th-wash-free reward against.
const CarWashCampaignID int64 = 8

func price(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Products is the default catalog: two fuels, the charging SKU, two wash
// programs, and the shop assortment. Fuel and charging prices are drawn
// per transaction, so their catalog price is only a reference value.
func Products() []sim.Product {
	return []sim.Product{
		{ID: 1, Name: "miles 95", Category: sim.CategoryGas, Price: price(13.29)},
		{ID: 2, Name: "miles+ diesel", Category: sim.CategoryGas, Price: price(12.99)},
		{ID: 3, Name: "ev charging", Category: sim.CategoryElectric, Price: price(4.75)},
		{ID: 5, Name: "car wash basic", Category: sim.CategoryService, Price: price(79.00)},
		{ID: 6, Name: "car wash premium", Category: sim.CategoryService, Price: price(129.00)},
		{ID: 10, Name: "coffee large", Category: sim.CategoryCashier, Price: price(25.00)},
		{ID: 11, Name: "hot dog", Category: sim.CategoryCashier, Price: price(32.00)},
		{ID: 12, Name: "soda 0.5l", Category: sim.CategoryCashier, Price: price(22.00)},
		{ID: 13, Name: "chocolate bar", Category: sim.CategoryCashier, Price: price(18.00)},
		{ID: 14, Name: "energy drink", Category: sim.CategoryCashier, Price: price(28.00)},
		{ID: 15, Name: "sandwich", Category: sim.CategoryCashier, Price: price(45.00)},
		{ID: 16, Name: "cinnamon roll", Category: sim.CategoryCashier, Price: price(24.00)},
		{ID: 17, Name: "windshield fluid", Category: sim.CategoryCashier, Price: price(49.00)},
	}
}

// Campaigns are the default frequency rewards: buy-N-get-one-free on two
// shop staples, plus the car wash loyalty program (its reward is driven
// by the visit counter, not the accrual ledger, but redemptions are
// recorded against it).
func Campaigns() []sim.Campaign {
	return []sim.Campaign{
		{ID: 1, Name: "coffee club", ProductID: 10, Threshold: 9},
		{ID: 2, Name: "hot dog deal", ProductID: 11, Threshold: 5},
		{ID: CarWashCampaignID, Name: "car wash loyalty", ProductID: 5, Threshold: 6},
	}
}
