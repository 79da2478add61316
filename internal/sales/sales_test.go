package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/catalog"
	"pdv/m/internal/testdb"
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	db       *sqlx.DB
	catalog  *catalog.Store
	recorder *Recorder
	history  *History

	account  int64
	other    int64
	customer domain.Customer
	coffee   domain.Product
	cake     domain.Product
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := testdb.New(t)
	f := &fixture{
		db:       db,
		catalog:  catalog.NewStore(db),
		recorder: NewRecorder(db),
		history:  NewHistory(db),
		account:  testdb.CreateUser(t, db, "a@example.com"),
		other:    testdb.CreateUser(t, db, "b@example.com"),
		clock:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	f.recorder.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}

	var err error
	f.customer, err = f.catalog.CreateCustomer(ctx, f.account, domain.Customer{
		Name: "Maria Silva", Email: "maria@example.com", Phone: "11999990000", CPF: "12345678901",
	})
	require.NoError(t, err)
	f.coffee, err = f.catalog.CreateProduct(ctx, f.account, domain.Product{Name: "Coffee", Price: 500})
	require.NoError(t, err)
	f.cake, err = f.catalog.CreateProduct(ctx, f.account, domain.Product{Name: "Cake", Price: 1200})
	require.NoError(t, err)
	return f
}

func (f *fixture) cartItems() []ItemInput {
	return []ItemInput{
		{ProductID: f.coffee.ID, Quantity: 2, UnitPrice: 500, TotalPrice: ptr(int64(1000))},
		{ProductID: f.cake.ID, Quantity: 1, UnitPrice: 1200, TotalPrice: ptr(int64(1200))},
	}
}

func (f *fixture) rowCount(t *testing.T, table string) int {
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func requireField(t *testing.T, err error, field string) *apperr.ValidationError {
	t.Helper()
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
	return verr
}

func TestRecordCashSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID:     f.customer.ID,
		TotalAmount:    ptr(int64(2200)),
		PaymentMethod:  domain.PaymentCash,
		Installments:   1,
		AmountReceived: ptr(int64(2500)),
		Items:          f.cartItems(),
	})
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)
	assert.Equal(t, int64(2200), sale.TotalAmount)
	require.NotNil(t, sale.AmountReceived)
	require.NotNil(t, sale.Change)
	assert.Equal(t, int64(2500), *sale.AmountReceived)
	assert.Equal(t, int64(300), *sale.Change)
	assert.Equal(t, domain.StatusCompleted, sale.Status)

	detail, err := f.history.GetSaleDetail(ctx, f.account, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), *detail.AmountReceived)
	assert.Equal(t, int64(300), *detail.Change)
	assert.Equal(t, domain.StatusCompleted, detail.Status)
	assert.Equal(t, domain.PaymentCash, detail.PaymentMethod)
	assert.Nil(t, detail.InstallmentValue)
	assert.Equal(t, "Maria Silva", *detail.CustomerSnapshot.Name)

	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Coffee", detail.Items[0].ProductName)
	assert.Equal(t, int64(2), detail.Items[0].Quantity)
	assert.Equal(t, int64(1000), detail.Items[0].TotalPrice)
	assert.Equal(t, "Cake", detail.Items[1].ProductName)
	assert.Equal(t, sale.ID, detail.Items[1].SaleID)

	var sum int64
	for _, it := range detail.Items {
		sum += it.TotalPrice
	}
	assert.Equal(t, detail.TotalAmount, sum)
}

func TestRecordCardSaleWithInstallments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID:     f.customer.ID,
		TotalAmount:    ptr(int64(2200)),
		PaymentMethod:  domain.PaymentCard,
		Installments:   3,
		AmountReceived: ptr(int64(5000)),
		Change:         ptr(int64(2800)),
		Items:          f.cartItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sale.Installments)
	assert.Nil(t, sale.AmountReceived)
	assert.Nil(t, sale.Change)

	detail, err := f.history.GetSaleDetail(ctx, f.account, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.Installments)
	assert.Equal(t, int64(2200), detail.TotalAmount)
	assert.Nil(t, detail.AmountReceived)
	assert.Nil(t, detail.Change)
	require.NotNil(t, detail.InstallmentValue)
	assert.Equal(t, int64(733), *detail.InstallmentValue)
}

func TestNonCardInstallmentsForcedToOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID:    f.customer.ID,
		PaymentMethod: domain.PaymentPix,
		Installments:  4,
		Items:         f.cartItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sale.Installments)
	assert.Equal(t, int64(2200), sale.TotalAmount)
}

func TestRecordSaleRejectsTotalMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID:    f.customer.ID,
		TotalAmount:   ptr(int64(2100)),
		PaymentMethod: domain.PaymentPix,
		Items:         f.cartItems(),
	})
	verr := requireField(t, err, "totalAmount")
	assert.Equal(t, "totalAmount mismatch", verr.Reason)
	assert.Zero(t, f.rowCount(t, "sales"))
}

func TestRecordSaleCashValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	base := SaleInput{CustomerID: f.customer.ID, PaymentMethod: domain.PaymentCash, Items: f.cartItems()}

	_, err := f.recorder.RecordSale(ctx, f.account, base)
	requireField(t, err, "amountReceived")

	short := base
	short.AmountReceived = ptr(int64(2199))
	_, err = f.recorder.RecordSale(ctx, f.account, short)
	requireField(t, err, "amountReceived")

	badChange := base
	badChange.AmountReceived = ptr(int64(2500))
	badChange.Change = ptr(int64(200))
	_, err = f.recorder.RecordSale(ctx, f.account, badChange)
	requireField(t, err, "change")

	exact := base
	exact.AmountReceived = ptr(int64(2200))
	exact.Change = ptr(int64(0))
	sale, err := f.recorder.RecordSale(ctx, f.account, exact)
	require.NoError(t, err)
	assert.Equal(t, int64(0), *sale.Change)
}

func TestPrepareValidation(t *testing.T) {
	item := ItemInput{ProductID: 1, Quantity: 1, UnitPrice: 100}
	cases := []struct {
		field string
		in    SaleInput
	}{
		{"items", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix}},
		{"customerId", SaleInput{PaymentMethod: domain.PaymentPix, Items: []ItemInput{item}}},
		{"paymentMethod", SaleInput{CustomerID: 1, PaymentMethod: "boleto", Items: []ItemInput{item}}},
		{"items[0].productId", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix, Items: []ItemInput{{Quantity: 1}}}},
		{"items[1].quantity", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix, Items: []ItemInput{item, {ProductID: 2, Quantity: 0, UnitPrice: 1}}}},
		{"items[0].unitPrice", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix, Items: []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: -1}}}},
		{"items[0].totalPrice", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix, Items: []ItemInput{{ProductID: 1, Quantity: 3, UnitPrice: 100, TotalPrice: ptr(int64(299))}}}},
		{"items[0]", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentPix, Items: []ItemInput{{ProductID: 1, Quantity: 1 << 40, UnitPrice: 1 << 30}}}},
		{"installments", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentCard, Installments: -2, Items: []ItemInput{item}}},
		{"installments", SaleInput{CustomerID: 1, PaymentMethod: domain.PaymentCard, Installments: 11, Items: []ItemInput{item}}},
	}
	for _, tc := range cases {
		_, _, err := Prepare(tc.in)
		requireField(t, err, tc.field)
	}
}

func TestPrepareDefaultsInstallments(t *testing.T) {
	sale, items, err := Prepare(SaleInput{
		CustomerID:    1,
		PaymentMethod: domain.PaymentCard,
		Items:         []ItemInput{{ProductID: 1, Quantity: 2, UnitPrice: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sale.Installments)
	assert.Zero(t, sale.TotalAmount)
	require.Len(t, items, 1)
	assert.Zero(t, items[0].TotalPrice)
}

func TestRecordSaleRejectsForeignReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	foreignCustomer, err := f.catalog.CreateCustomer(ctx, f.other, domain.Customer{
		Name: "Other", Email: "o@example.com", Phone: "1", CPF: "99999999999",
	})
	require.NoError(t, err)
	foreignProduct, err := f.catalog.CreateProduct(ctx, f.other, domain.Product{Name: "Tea", Price: 300})
	require.NoError(t, err)

	_, err = f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: foreignCustomer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	requireField(t, err, "customerId")

	items := append(f.cartItems(), ItemInput{ProductID: foreignProduct.ID, Quantity: 1, UnitPrice: 300})
	_, err = f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: items,
	})
	requireField(t, err, "items[2].productId")

	assert.Zero(t, f.rowCount(t, "sales"))
	assert.Zero(t, f.rowCount(t, "sale_items"))
}

func TestRecordSaleIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	crash := errors.New("crash between writes")
	var headerID int64
	f.recorder.afterHeader = func(ctx context.Context, tx *sqlx.Tx, saleID int64) error {
		headerID = saleID
		var n int
		require.NoError(t, tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM sales`))
		require.Equal(t, 1, n)
		return crash
	}

	_, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	require.ErrorIs(t, err, crash)
	require.NotZero(t, headerID)

	_, err = f.history.GetSaleDetail(ctx, f.account, headerID)
	assert.True(t, apperr.IsNotFound(err))
	list, err := f.history.ListSales(ctx, f.account)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, f.rowCount(t, "sales"))
	assert.Zero(t, f.rowCount(t, "sale_items"))
}

func TestRecordSaleRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.recorder.afterHeader = func(context.Context, *sqlx.Tx, int64) error {
		panic("process died")
	}
	assert.Panics(t, func() {
		_, _ = f.recorder.RecordSale(ctx, f.account, SaleInput{
			CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
		})
	})
	assert.Zero(t, f.rowCount(t, "sales"))

	f.recorder.afterHeader = nil
	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.rowCount(t, "sales"))
	assert.Equal(t, 2, f.rowCount(t, "sale_items"))
	assert.NotZero(t, sale.ID)
}

func TestHistoryIsAccountScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	require.NoError(t, err)

	list, err := f.history.ListSales(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.history.GetSaleDetail(ctx, f.other, sale.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.history.GetSaleDetail(ctx, f.account, sale.ID+100)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListSalesNewestFirstAndToleratesDeletedCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	second, err := f.catalog.CreateCustomer(ctx, f.account, domain.Customer{
		Name: "Joao", Email: "joao@example.com", Phone: "2", CPF: "10987654321",
	})
	require.NoError(t, err)

	first, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	require.NoError(t, err)
	latest, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: second.ID, PaymentMethod: domain.PaymentCard, Installments: 2, Items: f.cartItems(),
	})
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteCustomer(ctx, f.account, second.ID))

	list, err := f.history.ListSales(ctx, f.account)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, latest.ID, list[0].ID)
	assert.Nil(t, list[0].CustomerSnapshot.Name)
	assert.Nil(t, list[0].CustomerSnapshot.CPF)
	assert.Equal(t, second.ID, list[0].CustomerID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "12345678901", *list[1].CustomerSnapshot.CPF)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

func TestLineItemsSnapshotPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sale, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
		CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
	})
	require.NoError(t, err)

	_, err = f.catalog.UpdateProduct(ctx, f.account, f.coffee.ID, domain.ProductPatch{Price: ptr(int64(999))})
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeleteProduct(ctx, f.account, f.cake.ID))

	detail, err := f.history.GetSaleDetail(ctx, f.account, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), detail.Items[0].UnitPrice)
	assert.Equal(t, int64(1200), detail.Items[1].UnitPrice)
	assert.Empty(t, detail.Items[1].ProductName)
	assert.Equal(t, int64(2200), detail.TotalAmount)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.recorder.RecordSale(ctx, f.account, SaleInput{
			CustomerID: f.customer.ID, PaymentMethod: domain.PaymentPix, Items: f.cartItems(),
		})
		require.NoError(t, err)
	}

	from, to := DayRange(f.clock)
	summary, err := f.history.Summary(ctx, f.account, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.SalesCount)
	assert.Equal(t, int64(6600), summary.Revenue)

	nextFrom, nextTo := DayRange(f.clock.AddDate(0, 0, 1))
	empty, err := f.history.Summary(ctx, f.account, nextFrom, nextTo)
	require.NoError(t, err)
	assert.Zero(t, empty.SalesCount)
	assert.Zero(t, empty.Revenue)

	other, err := f.history.Summary(ctx, f.other, from, to)
	require.NoError(t, err)
	assert.Zero(t, other.SalesCount)
}

func TestRanges(t *testing.T) {
	at := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)

	from, to := DayRange(at)
	assert.Equal(t, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), to)

	from, to = MonthRange(at)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), to)
}
