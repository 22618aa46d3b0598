package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tiendify/tiendify/internal/model"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database"},
		Short:   "Manage the shop database",
		Long:    "Apply migrations and load fixture data into the shop database.",
	}

	cmd.AddCommand(newDBMigrateCmd())
	cmd.AddCommand(newDBSeedCmd())

	return cmd
}

// ---------- db migrate ----------

func newDBMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Open the shop database and bring its schema up to date. Migrations also run automatically on serve.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBMigrate()
		},
	}

	return cmd
}

func runDBMigrate() error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer st.Close()

	fmt.Printf("Database schema is up to date (%s)\n", st.Driver())
	return nil
}

// ---------- db seed ----------

// seedFile is the YAML layout accepted by `tiendify db seed`.
type seedFile struct {
	Categories []struct {
		Slug        string `yaml:"slug"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Products []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Price       int64    `yaml:"price"`
		Stock       int64    `yaml:"stock"`
		Hidden      bool     `yaml:"hidden"`
		Categories  []string `yaml:"categories"` // category slugs
		Mediafiles  []string `yaml:"mediafiles"` // asset URLs
	} `yaml:"products"`
	Customers []struct {
		Email     string `yaml:"email"`
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		Phone     string `yaml:"phone"`
	} `yaml:"customers"`
	Orders []struct {
		CustomerEmail string `yaml:"customer_email"`
		Total         int64  `yaml:"total"`
		Payment       struct {
			Status string `yaml:"status"`
			Method string `yaml:"method"`
		} `yaml:"payment"`
		Shipping struct {
			Status   string `yaml:"status"`
			Carrier  string `yaml:"carrier"`
			Tracking string `yaml:"tracking"`
		} `yaml:"shipping"`
		Address struct {
			Line1      string `yaml:"line1"`
			Line2      string `yaml:"line2"`
			City       string `yaml:"city"`
			Region     string `yaml:"region"`
			PostalCode string `yaml:"postal_code"`
			Country    string `yaml:"country"`
		} `yaml:"address"`
	} `yaml:"orders"`
}

func newDBSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load fixture data from a YAML file",
		Long: `Load categories, products, customers, and orders from a YAML fixture file.
Orders reference customers by email and products reference categories by slug,
so list them in that order in the file.`,
		Example: `  tiendify db seed fixtures/demo-shop.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(args[0])
		},
	}

	return cmd
}

func runDBSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	categoryIDs := make(map[string]int64, len(seed.Categories))
	for _, c := range seed.Categories {
		cat := &model.Category{Slug: c.Slug, Name: c.Name, Description: c.Description}
		if err := st.CreateCategory(ctx, cat); err != nil {
			return fmt.Errorf("seed category %q: %w", c.Slug, err)
		}
		categoryIDs[cat.Slug] = cat.ID
	}

	for _, p := range seed.Products {
		var ids []int64
		for _, slug := range p.Categories {
			id, ok := categoryIDs[slug]
			if !ok {
				return fmt.Errorf("product %q references unknown category %q", p.Name, slug)
			}
			ids = append(ids, id)
		}
		prod := &model.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Hidden:      p.Hidden,
		}
		if err := st.CreateProduct(ctx, prod, ids); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		for _, url := range p.Mediafiles {
			if _, err := st.AddProductMediafile(ctx, prod.ID, url); err != nil {
				return fmt.Errorf("seed mediafile for %q: %w", p.Name, err)
			}
		}
	}

	customerIDs := make(map[string]int64, len(seed.Customers))
	for _, c := range seed.Customers {
		cust := &model.Customer{
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
		}
		if err := st.CreateCustomer(ctx, cust); err != nil {
			return fmt.Errorf("seed customer %q: %w", c.Email, err)
		}
		customerIDs[cust.Email] = cust.ID
	}

	for i, o := range seed.Orders {
		custID, ok := customerIDs[o.CustomerEmail]
		if !ok {
			existing, err := st.GetCustomerByEmail(ctx, o.CustomerEmail)
			if err != nil {
				return fmt.Errorf("order %d references unknown customer %q", i, o.CustomerEmail)
			}
			custID = existing.ID
		}
		order := &model.Order{CustomerID: custID, Total: o.Total}
		payment := &model.Payment{
			Status: defaultStatus(o.Payment.Status, model.PaymentPending),
			Method: o.Payment.Method,
			Amount: o.Total,
		}
		shipping := &model.Shipping{
			Status:   defaultStatus(o.Shipping.Status, model.ShippingPending),
			Carrier:  o.Shipping.Carrier,
			Tracking: o.Shipping.Tracking,
		}
		addr := &model.Address{
			Line1:      o.Address.Line1,
			Line2:      o.Address.Line2,
			City:       o.Address.City,
			Region:     o.Address.Region,
			PostalCode: o.Address.PostalCode,
			Country:    o.Address.Country,
		}
		if err := st.CreateOrder(ctx, order, payment, shipping, addr); err != nil {
			return fmt.Errorf("seed order %d: %w", i, err)
		}
	}

	fmt.Printf("Seeded %d categories, %d products, %d customers, %d orders\n",
		len(seed.Categories), len(seed.Products), len(seed.Customers), len(seed.Orders))
	return nil
}

func defaultStatus(status, fallback string) string {
	if status == "" {
		return fallback
	}
	return status
}
