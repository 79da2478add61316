package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/testdb"
)

func ptr[T any](v T) *T { return &v }

func newStore(t *testing.T) (*Store, int64, int64) {
	db := testdb.New(t)
	a := testdb.CreateUser(t, db, "a@example.com")
	b := testdb.CreateUser(t, db, "b@example.com")
	return NewStore(db), a, b
}

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	s, account, _ := newStore(t)

	created, err := s.CreateCustomer(ctx, account, domain.Customer{
		Name: " Maria Silva ", Email: "Maria@Example.com", Phone: "11999990000", CPF: "12345678901",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Maria Silva", created.Name)
	assert.Equal(t, "maria@example.com", created.Email)
	assert.Equal(t, account, created.UserID)

	list, err := s.ListCustomers(ctx, account)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	updated, err := s.UpdateCustomer(ctx, account, created.ID, domain.CustomerPatch{Phone: ptr("1133334444")})
	require.NoError(t, err)
	assert.Equal(t, "1133334444", updated.Phone)
	assert.Equal(t, "Maria Silva", updated.Name)

	require.NoError(t, s.DeleteCustomer(ctx, account, created.ID))
	_, err = s.GetCustomer(ctx, account, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateCustomerDuplicateCPF(t *testing.T) {
	ctx := context.Background()
	s, account, _ := newStore(t)

	_, err := s.CreateCustomer(ctx, account, domain.Customer{Name: "A", Email: "a@x.com", Phone: "1", CPF: "12345678901"})
	require.NoError(t, err)

	_, err = s.CreateCustomer(ctx, account, domain.Customer{Name: "B", Email: "b@x.com", Phone: "2", CPF: "12345678901"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cpf", verr.Field)
}

func TestCreateCustomerValidation(t *testing.T) {
	ctx := context.Background()
	s, account, _ := newStore(t)

	cases := map[string]domain.Customer{
		"name":  {Email: "a@x.com", Phone: "1", CPF: "12345678901"},
		"email": {Name: "A", Phone: "1", CPF: "12345678901"},
		"phone": {Name: "A", Email: "a@x.com", CPF: "12345678901"},
		"cpf":   {Name: "A", Email: "a@x.com", Phone: "1", CPF: "123.456.789-01"},
	}
	for field, c := range cases {
		_, err := s.CreateCustomer(ctx, account, c)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestCustomersAreAccountScoped(t *testing.T) {
	ctx := context.Background()
	s, a, b := newStore(t)

	c, err := s.CreateCustomer(ctx, a, domain.Customer{Name: "A", Email: "a@x.com", Phone: "1", CPF: "11111111111"})
	require.NoError(t, err)

	list, err := s.ListCustomers(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.GetCustomer(ctx, b, c.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = s.UpdateCustomer(ctx, b, c.ID, domain.CustomerPatch{Name: ptr("Hijack")})
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(s.DeleteCustomer(ctx, b, c.ID)))

	still, err := s.GetCustomer(ctx, a, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", still.Name)
}

func TestUpdateCustomerDuplicateCPF(t *testing.T) {
	ctx := context.Background()
	s, account, _ := newStore(t)

	_, err := s.CreateCustomer(ctx, account, domain.Customer{Name: "A", Email: "a@x.com", Phone: "1", CPF: "11111111111"})
	require.NoError(t, err)
	second, err := s.CreateCustomer(ctx, account, domain.Customer{Name: "B", Email: "b@x.com", Phone: "2", CPF: "22222222222"})
	require.NoError(t, err)

	_, err = s.UpdateCustomer(ctx, account, second.ID, domain.CustomerPatch{CPF: ptr("11111111111")})
	assert.True(t, apperr.IsValidation(err))
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	s, account, other := newStore(t)

	coffee, err := s.CreateProduct(ctx, account, domain.Product{Name: "Coffee", Price: 500, Description: ptr("Espresso")})
	require.NoError(t, err)
	cake, err := s.CreateProduct(ctx, account, domain.Product{Name: "Cake", Price: 1200})
	require.NoError(t, err)
	foreign, err := s.CreateProduct(ctx, other, domain.Product{Name: "Tea", Price: 300})
	require.NoError(t, err)

	list, err := s.ListProducts(ctx, account)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Cake", list[0].Name)
	assert.Nil(t, list[0].Description)
	assert.Equal(t, "Espresso", *list[1].Description)

	byID, err := s.ProductsByIDs(ctx, account, []int64{coffee.ID, cake.ID, foreign.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, int64(500), byID[coffee.ID].Price)

	updated, err := s.UpdateProduct(ctx, account, coffee.ID, domain.ProductPatch{Price: ptr(int64(650))})
	require.NoError(t, err)
	assert.Equal(t, int64(650), updated.Price)
	assert.Equal(t, "Coffee", updated.Name)

	found, err := s.FindProductByName(ctx, account, "Cake")
	require.NoError(t, err)
	assert.Equal(t, cake.ID, found.ID)

	assert.True(t, apperr.IsNotFound(s.DeleteProduct(ctx, other, coffee.ID)))
	require.NoError(t, s.DeleteProduct(ctx, account, coffee.ID))
	_, err = s.GetProduct(ctx, account, coffee.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestProductValidation(t *testing.T) {
	ctx := context.Background()
	s, account, _ := newStore(t)

	_, err := s.CreateProduct(ctx, account, domain.Product{Name: "  ", Price: 1})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.CreateProduct(ctx, account, domain.Product{Name: "Free", Price: -1})
	assert.True(t, apperr.IsValidation(err))

	p, err := s.CreateProduct(ctx, account, domain.Product{Name: "Water", Price: 0})
	require.NoError(t, err)
	_, err = s.UpdateProduct(ctx, account, p.ID, domain.ProductPatch{Price: ptr(int64(-5))})
	assert.True(t, apperr.IsValidation(err))

	same, err := s.UpdateProduct(ctx, account, p.ID, domain.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, p.ID, same.ID)
}
