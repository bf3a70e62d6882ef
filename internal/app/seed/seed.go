// Package seed writes a demo driver roster and a handful of demo orders
// for local bring-up. Production state comes from the upstream ingestion
// job, not from here.
package seed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"catering-dispatch/internal/adapter/jsonfile"
	"catering-dispatch/internal/domain"
)

var driverNames = []string{"Gero", "Luciano", "Peter", "Nacho", "Christine", "Uber"}

// Run populates the orders and drivers files, overwriting existing content.
func Run(orders *jsonfile.OrderRepository, drivers *jsonfile.DriverRepository, count int) error {
	roster := make([]domain.Driver, len(driverNames))
	for i, name := range driverNames {
		roster[i] = domain.Driver{ID: uuid.NewString(), Name: name}
	}
	if err := drivers.Save(roster); err != nil {
		return fmt.Errorf("failed to seed drivers: %w", err)
	}

	demo := make([]*domain.Order, count)
	now := time.Now().Truncate(time.Minute)
	for i := range demo {
		delivery := now.Add(time.Duration(2+i) * time.Hour)
		sku := fmt.Sprintf("CAT-%03d", i+1)
		demo[i] = &domain.Order{
			ID:           uuid.NewString(),
			OrderNumber:  fmt.Sprintf("#10%02d", i+1),
			CustomerName: fmt.Sprintf("Demo Customer %d", i+1),
			Address: &domain.Address{
				Line1:      fmt.Sprintf("%d Ponsonby Road", 10+i),
				City:       "Auckland",
				Region:     "Auckland",
				PostalCode: "1011",
				Country:    "New Zealand",
				Phone:      "6421555012" + fmt.Sprint(i),
			},
			Status:       domain.StatusPending,
			OrderDate:    now,
			DeliveryTime: &delivery,
			Items: []domain.OrderItem{
				{
					Product:  domain.Product{Name: "Catering Platter", SKU: &sku},
					Quantity: 1 + i%3,
					Price:    89.50,
				},
			},
		}
		demo[i].DispatchTime = domain.ComputeDispatchTime(demo[i].DeliveryTime, nil)
	}
	if err := orders.Save(demo); err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}
	return nil
}
