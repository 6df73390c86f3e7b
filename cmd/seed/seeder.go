package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	orderapp "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const demoPassword = "password123"

type catalogFile struct {
	Products []catalogProduct `yaml:"products"`
}

type catalogProduct struct {
	Name        string          `yaml:"name"`
	Category    string          `yaml:"category"`
	Price       decimal.Decimal `yaml:"price"`
	Stock       int             `yaml:"stock"`
	Condition   string          `yaml:"condition"`
	Description string          `yaml:"description"`
	ImageURL    string          `yaml:"image_url"`
}

// parseCatalog decodes a catalog file and validates every entry
func parseCatalog(data []byte) ([]catalog.ProductDetails, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	if len(file.Products) == 0 {
		return nil, errors.New("catalog file lists no products")
	}

	details := make([]catalog.ProductDetails, 0, len(file.Products))
	for i, p := range file.Products {
		d := catalog.ProductDetails{
			Name:        p.Name,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			Description: p.Description,
			Condition:   p.Condition,
		}
		if _, err := catalog.NewProduct(d); err != nil {
			return nil, fmt.Errorf("product %d (%s): %w", i+1, p.Name, err)
		}
		details = append(details, d)
	}
	return details, nil
}

// fakeRegistration builds a signup form that passes account validation
func fakeRegistration(f *gofakeit.Faker) identity.Registration {
	dob := f.DateRange(
		time.Date(1955, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	return identity.Registration{
		Name:     f.Name(),
		Email:    f.Email(),
		Password: demoPassword,
		Gender:   f.RandomString([]string{string(identity.GenderMale), string(identity.GenderFemale), string(identity.GenderOther)}),
		Phone:    f.Numerify("07########"),
		DOB:      dob.Format(identity.DateLayout),
		Address:  f.Address().Address,
	}
}

type cartFiller interface {
	AddToCart(ctx context.Context, p shared.Principal, req cartapp.AddToCartRequest) error
}

type checkout interface {
	PlaceOrder(ctx context.Context, p shared.Principal, req orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResponse, error)
}

// Seeder fills an empty database with demo data
type Seeder struct {
	users    identity.UserRepository
	products catalog.ProductRepository
	carts    cartFiller
	orders   checkout
	faker    *gofakeit.Faker
	logger   *zap.Logger
}

// SeedAdmin creates the back office account unless the email is taken
func (s *Seeder) SeedAdmin(ctx context.Context, email, password string) error {
	exists, err := s.users.ExistsByEmail(ctx, email, uuid.Nil)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("Admin account already present", zap.String("email", email))
		return nil
	}

	admin, err := identity.NewUser("Admin User", email, password, "", shared.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("Admin account created", zap.String("email", admin.Email))
	return nil
}

// SeedProducts inserts the catalog when the product table is empty
func (s *Seeder) SeedProducts(ctx context.Context, details []catalog.ProductDetails) (int, error) {
	_, total, err := s.products.FindAll(ctx, shared.Filter{Page: 1, PageSize: 1})
	if err != nil {
		return 0, err
	}
	if total > 0 {
		s.logger.Info("Catalog already seeded", zap.Int64("products", total))
		return 0, nil
	}

	for _, d := range details {
		p, err := catalog.NewProduct(d)
		if err != nil {
			return 0, err
		}
		if err := s.products.Save(ctx, p); err != nil {
			return 0, fmt.Errorf("save %s: %w", d.Name, err)
		}
	}
	return len(details), nil
}

// SeedCustomers registers n fake customers, skipping generated duplicates
func (s *Seeder) SeedCustomers(ctx context.Context, n int) ([]*identity.User, error) {
	customers := make([]*identity.User, 0, n)
	for attempts := 0; len(customers) < n && attempts < n*3; attempts++ {
		user, err := identity.Register(fakeRegistration(s.faker))
		if err != nil {
			return nil, err
		}
		taken, err := s.users.ExistsByEmail(ctx, user.Email, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if !taken {
			taken, err = s.users.ExistsByPhone(ctx, user.Phone, uuid.Nil)
			if err != nil {
				return nil, err
			}
		}
		if taken {
			continue
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		customers = append(customers, user)
	}
	return customers, nil
}

// SeedOrders places perCustomer checkouts for every customer through the
// regular cart and order services. Orders rejected for stock are skipped.
func (s *Seeder) SeedOrders(ctx context.Context, customers []*identity.User, perCustomer int) (int, error) {
	products, _, err := s.products.FindAll(ctx, shared.Filter{Page: 1, PageSize: 100})
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}

	placed := 0
	for _, c := range customers {
		p := c.Principal()
		for range perCustomer {
			lines := s.faker.IntRange(1, 3)
			for range lines {
				product := products[s.faker.IntRange(0, len(products)-1)]
				qty := s.faker.IntRange(1, 2)
				req := cartapp.AddToCartRequest{ProductID: product.ID, Quantity: &qty}
				err := s.carts.AddToCart(ctx, p, req)
				if err != nil && !errors.Is(err, shared.ErrInsufficientStock) {
					return placed, err
				}
			}

			_, err := s.orders.PlaceOrder(ctx, p, orderapp.PlaceOrderRequest{
				ShippingAddress: c.Address,
				PaymentMethod:   s.faker.RandomString([]string{"Cash on Delivery", "Card", "Bank Transfer"}),
			})
			if errors.Is(err, shared.ErrInsufficientStock) || errors.Is(err, shared.ErrEmptyCart) {
				s.logger.Debug("Skipping order", zap.String("customer", c.Email), zap.Error(err))
				continue
			}
			if err != nil {
				return placed, err
			}
			placed++
		}
	}
	return placed, nil
}
