// Command storeflow-seed loads a starter catalog, staff roster, and a
// few customers into a running storeflow backend over its REST API.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/storeflow/storeflow/internal/apperr"
	"github.com/storeflow/storeflow/internal/app/domain/product"
	"github.com/storeflow/storeflow/internal/app/storage/restclient"
	"github.com/storeflow/storeflow/internal/httputil"
	"github.com/storeflow/storeflow/pkg/logger"
)

var products = []product.Product{
	{ProductID: "P001", Name: "Whole Milk 1L", Category: "Dairy", Price: 2.49, StockQuantity: 40, Aisle: "A1", Shelf: "S2"},
	{ProductID: "P002", Name: "Sharp Cheddar 200g", Category: "Dairy", Price: 4.99, StockQuantity: 25, Aisle: "A1", Shelf: "S3"},
	{ProductID: "P003", Name: "Sourdough Loaf", Category: "Bakery", Price: 3.75, StockQuantity: 18, Aisle: "A2", Shelf: "S1"},
	{ProductID: "P004", Name: "Basmati Rice 5kg", Category: "Grains", Price: 11.50, StockQuantity: 30, Aisle: "A3", Shelf: "S1"},
	{ProductID: "P005", Name: "Olive Oil 750ml", Category: "Pantry", Price: 8.25, StockQuantity: 22, Aisle: "A3", Shelf: "S4"},
	{ProductID: "P006", Name: "Free-Range Eggs 12pk", Category: "Dairy", Price: 4.20, StockQuantity: 35, Aisle: "A1", Shelf: "S1"},
	{ProductID: "P007", Name: "Tomato Passata 700g", Category: "Pantry", Price: 2.10, StockQuantity: 50, Aisle: "A4", Shelf: "S2"},
	{ProductID: "P008", Name: "Ground Coffee 500g", Category: "Beverages", Price: 9.90, StockQuantity: 16, Aisle: "A5", Shelf: "S3"},
}

type seedEmployee struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Password   string `json:"password"`
}

var employees = []seedEmployee{
	{EmployeeID: "EMP001", Name: "Priya Nair", Password: "changeme1"},
	{EmployeeID: "EMP002", Name: "Marco Silva", Password: "changeme2"},
	{EmployeeID: "EMP003", Name: "Lena Fischer", Password: "changeme3"},
}

type seedCustomer struct {
	PhoneNumber   string `json:"phoneNumber"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
}

var customers = []seedCustomer{
	{PhoneNumber: "5550001", Name: "Asha Rao", Password: "welcome1", LoyaltyPoints: 120},
	{PhoneNumber: "5550002", Name: "Ben Carter", Password: "welcome2", LoyaltyPoints: 0},
	{PhoneNumber: "5550003", Name: "Caro Jimenez", Password: "welcome3", LoyaltyPoints: 45},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api", "base URL of the storeflow API")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	log := logger.NewDefault("storeflow-seed")
	ctx := context.Background()

	store := restclient.New(*baseURL, *timeout)
	client := httputil.NewClient(httputil.Config{BaseURL: *baseURL, Timeout: *timeout})

	failed := false

	for _, p := range products {
		if _, err := store.CreateProduct(ctx, p); err != nil {
			if apperr.IsCode(err, apperr.CodeAlreadyExists) {
				log.WithField("product_id", p.ProductID).Info("product already present, skipping")
				continue
			}
			log.WithError(err).WithField("product_id", p.ProductID).Error("seed product failed")
			failed = true
			continue
		}
		log.WithField("product_id", p.ProductID).Info("seeded product")
	}

	// Employees and customers go through the API's credential-hashing
	// create endpoints rather than raw document writes.
	for _, e := range employees {
		if err := postSeed(ctx, client, "/employees", e); err != nil {
			if apperr.IsCode(err, apperr.CodeAlreadyExists) {
				log.WithField("employee_id", e.EmployeeID).Info("employee already present, skipping")
				continue
			}
			log.WithError(err).WithField("employee_id", e.EmployeeID).Error("seed employee failed")
			failed = true
			continue
		}
		log.WithField("employee_id", e.EmployeeID).Info("seeded employee")
	}

	for _, c := range customers {
		if err := postSeed(ctx, client, "/customers", c); err != nil {
			if apperr.IsCode(err, apperr.CodeAlreadyExists) {
				log.WithField("phone_number", c.PhoneNumber).Info("customer already present, skipping")
				continue
			}
			log.WithError(err).WithField("phone_number", c.PhoneNumber).Error("seed customer failed")
			failed = true
			continue
		}
		log.WithField("phone_number", c.PhoneNumber).Info("seeded customer")
	}

	if failed {
		os.Exit(1)
	}
	log.Info("seeding complete")
}

func postSeed(ctx context.Context, client *httputil.Client, path string, payload interface{}) error {
	resp, err := client.Post(ctx, path, payload)
	if err != nil {
		return err
	}
	return httputil.DecodeResponse(resp, nil)
}
