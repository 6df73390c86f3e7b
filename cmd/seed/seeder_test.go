package main

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/stitchline/backend/internal/application/cart"
	orderapp "github.com/stitchline/backend/internal/application/order"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/identity"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryProducts struct {
	items []catalog.Product
}

func (m *memoryProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryProducts) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, int64, error) {
	return m.items, int64(len(m.items)), nil
}

func (m *memoryProducts) Save(_ context.Context, p *catalog.Product) error {
	m.items = append(m.items, *p)
	return nil
}

func (m *memoryProducts) Delete(context.Context, uuid.UUID) error { return nil }

func (m *memoryProducts) CountCartReferences(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type memoryUsers struct {
	byEmail map[string]*identity.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*identity.User{}}
}

func (m *memoryUsers) Create(_ context.Context, u *identity.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *memoryUsers) Update(context.Context, *identity.User) error { return nil }
func (m *memoryUsers) Delete(context.Context, uuid.UUID) error      { return nil }

func (m *memoryUsers) FindByID(context.Context, uuid.UUID) (*identity.User, error) {
	return nil, shared.ErrNotFound
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memoryUsers) FindAll(context.Context) ([]identity.User, error) { return nil, nil }

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string, _ uuid.UUID) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *memoryUsers) ExistsByPhone(_ context.Context, phone string, _ uuid.UUID) (bool, error) {
	for _, u := range m.byEmail {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

type recordingCart struct {
	adds int
}

func (r *recordingCart) AddToCart(context.Context, shared.Principal, cartapp.AddToCartRequest) error {
	r.adds++
	return nil
}

type scriptedCheckout struct {
	errs  []error
	calls int
}

func (s *scriptedCheckout) PlaceOrder(context.Context, shared.Principal, orderapp.PlaceOrderRequest) (*orderapp.PlaceOrderResponse, error) {
	defer func() { s.calls++ }()
	if s.calls < len(s.errs) && s.errs[s.calls] != nil {
		return nil, s.errs[s.calls]
	}
	return &orderapp.PlaceOrderResponse{OrderID: uuid.New()}, nil
}

func TestParseCatalog(t *testing.T) {
	t.Run("built-in catalog is valid", func(t *testing.T) {
		products, err := parseCatalog(defaultCatalog)
		require.NoError(t, err)
		assert.NotEmpty(t, products)
		for _, p := range products {
			assert.True(t, p.Price.IsPositive(), p.Name)
		}
	})

	t.Run("prices keep their decimals", func(t *testing.T) {
		products, err := parseCatalog([]byte(`
products:
  - name: Bobbin Case
    category: Spare Parts
    price: "1250.50"
    stock: 3
`))
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.True(t, decimal.RequireFromString("1250.50").Equal(products[0].Price))
		assert.Equal(t, 3, products[0].Stock)
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		_, err := parseCatalog([]byte(`
products:
  - name: Free Machine
    category: Domestic
    price: "0"
    stock: 1
`))
		assert.ErrorContains(t, err, "Free Machine")
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := parseCatalog([]byte("products: []"))
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := parseCatalog([]byte("products: [name"))
		assert.Error(t, err)
	})
}

func TestFakeRegistration_PassesValidation(t *testing.T) {
	f := gofakeit.New(42)
	for range 3 {
		reg := fakeRegistration(f)
		user, err := identity.Register(reg)
		require.NoError(t, err, "%+v", reg)
		assert.Equal(t, shared.RoleUser, user.Role)
	}
}

func newTestSeeder(t *testing.T, products *memoryProducts, users *memoryUsers, cart *recordingCart, orders *scriptedCheckout) *Seeder {
	return &Seeder{
		users:    users,
		products: products,
		carts:    cart,
		orders:   orders,
		faker:    gofakeit.New(7),
		logger:   zaptest.NewLogger(t),
	}
}

func TestSeeder_SeedAdmin(t *testing.T) {
	users := newMemoryUsers()
	s := newTestSeeder(t, &memoryProducts{}, users, &recordingCart{}, &scriptedCheckout{})
	ctx := context.Background()

	require.NoError(t, s.SeedAdmin(ctx, "admin@example.com", "admin123"))
	admin, err := users.FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleAdmin, admin.Role)
	assert.True(t, admin.VerifyPassword("admin123"))

	// second run leaves the existing account alone
	require.NoError(t, s.SeedAdmin(ctx, "admin@example.com", "other-password"))
	assert.Len(t, users.byEmail, 1)
	assert.True(t, users.byEmail["admin@example.com"].VerifyPassword("admin123"))
}

func TestSeeder_SeedProducts(t *testing.T) {
	details, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)

	products := &memoryProducts{}
	s := newTestSeeder(t, products, newMemoryUsers(), &recordingCart{}, &scriptedCheckout{})

	added, err := s.SeedProducts(context.Background(), details)
	require.NoError(t, err)
	assert.Equal(t, len(details), added)
	assert.Len(t, products.items, len(details))

	added, err = s.SeedProducts(context.Background(), details)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, products.items, len(details))
}

func TestSeeder_SeedOrders(t *testing.T) {
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:     "Singer 4423",
		Price:    decimal.NewFromInt(89500),
		Stock:    100,
		Category: "Domestic",
	})
	require.NoError(t, err)

	customer, err := identity.Register(fakeRegistration(gofakeit.New(1)))
	require.NoError(t, err)

	t.Run("places orders through the cart", func(t *testing.T) {
		cart := &recordingCart{}
		orders := &scriptedCheckout{}
		s := newTestSeeder(t, &memoryProducts{items: []catalog.Product{*p}}, newMemoryUsers(), cart, orders)

		placed, err := s.SeedOrders(context.Background(), []*identity.User{customer}, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, placed)
		assert.Equal(t, 3, orders.calls)
		assert.GreaterOrEqual(t, cart.adds, 3)
	})

	t.Run("skips orders rejected for stock", func(t *testing.T) {
		orders := &scriptedCheckout{errs: []error{shared.NewInsufficientStockError(p.ID, p.Name, 0, 1)}}
		s := newTestSeeder(t, &memoryProducts{items: []catalog.Product{*p}}, newMemoryUsers(), &recordingCart{}, orders)

		placed, err := s.SeedOrders(context.Background(), []*identity.User{customer}, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, placed)
	})

	t.Run("stops on storage errors", func(t *testing.T) {
		orders := &scriptedCheckout{errs: []error{shared.ErrStorageTimeout}}
		s := newTestSeeder(t, &memoryProducts{items: []catalog.Product{*p}}, newMemoryUsers(), &recordingCart{}, orders)

		_, err := s.SeedOrders(context.Background(), []*identity.User{customer}, 2)
		assert.ErrorIs(t, err, shared.ErrStorageTimeout)
	})

	t.Run("no products, no orders", func(t *testing.T) {
		s := newTestSeeder(t, &memoryProducts{}, newMemoryUsers(), &recordingCart{}, &scriptedCheckout{})
		placed, err := s.SeedOrders(context.Background(), []*identity.User{customer}, 2)
		require.NoError(t, err)
		assert.Zero(t, placed)
	})
}
