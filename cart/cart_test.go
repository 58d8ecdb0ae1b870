package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/catalog"
	"orderdesk/models"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]models.Product{
		{ID: "P1", Name: "Tonic", Category: "Health", Points: decimal.NewFromInt(10), Price: decimal.NewFromInt(500)},
		{ID: "P2", Name: "Tea", Category: "Drinks", Points: decimal.RequireFromString("2.5"), Price: decimal.RequireFromString("120.5")},
		{ID: "007", Name: "Soap", Category: "Home", Points: decimal.Zero, Price: decimal.NewFromInt(80)},
	})
	require.NoError(t, err)
	return cat
}

func decEq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestAdd_IncrementsExistingLine(t *testing.T) {
	c := New()
	_, err := c.Add("P1", 2)
	require.NoError(t, err)
	change, err := c.Add("P1", 3)
	require.NoError(t, err)

	assert.Equal(t, []models.CartEntry{{ProductID: "P1", Quantity: 5}}, c.Lines())
	assert.Equal(t, models.ItemAdded, change.Kind)
	assert.Equal(t, "P1", change.ProductID)
	assert.Equal(t, 3, change.Quantity)
	assert.False(t, change.At.IsZero())
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	c := New()
	_, err := c.Add("P1", 2)
	require.NoError(t, err)
	before := c.Lines()

	for _, q := range []int{0, -1} {
		_, err := c.Add("P1", q)
		var iqe *InvalidQuantityError
		require.ErrorAs(t, err, &iqe)
		assert.Equal(t, before, c.Lines())
	}

	_, err = c.Add("P2", 0)
	assert.ErrorAs(t, err, new(*InvalidQuantityError))
	assert.Zero(t, c.Quantity("P2"))
	assert.Equal(t, 1, c.Len())
}

func TestAdd_CapsLineQuantity(t *testing.T) {
	cat := testCatalog(t)
	c := New()

	_, err := c.Add("P1", math.MaxInt)
	assert.ErrorAs(t, err, new(*InvalidQuantityError))
	assert.True(t, c.IsEmpty())

	_, err = c.Add("P1", MaxQuantity-1)
	require.NoError(t, err)

	for _, q := range []int{2, math.MaxInt} {
		_, err = c.Add("P1", q)
		var iqe *InvalidQuantityError
		require.ErrorAs(t, err, &iqe)
		assert.Equal(t, MaxQuantity-1, iqe.InCart)
		assert.Equal(t, MaxQuantity-1, c.Quantity("P1"))
	}

	_, err = c.Add("P1", 1)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, c.Quantity("P1"))

	totals, err := c.Total(cat)
	require.NoError(t, err)
	assert.True(t, totals.Amount.IsPositive())
	assert.True(t, totals.Points.IsPositive())
}

func TestAdd_RejectsEmptyID(t *testing.T) {
	c := New()
	_, err := c.Add("", 1)
	assert.ErrorIs(t, err, ErrEmptyProductID)
	assert.True(t, c.IsEmpty())
}

func TestZeroValueCart(t *testing.T) {
	var c Cart
	_, err := c.Add("P1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity("P1"))
}

func TestRemove(t *testing.T) {
	cat := testCatalog(t)
	c := New()
	_, _ = c.Add("P1", 2)
	_, _ = c.Add("P2", 4)

	change, ok := c.Remove("P1")
	require.True(t, ok)
	assert.Equal(t, models.ItemRemoved, change.Kind)

	totals, err := c.Total(cat)
	require.NoError(t, err)
	decEq(t, "10", totals.Points)
	decEq(t, "482", totals.Amount)
	assert.Zero(t, c.Quantity("P1"))

	_, ok = c.Remove("P1")
	assert.False(t, ok)
	_, ok = c.Remove("nope")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	cat := testCatalog(t)
	c := New()
	_, _ = c.Add("P1", 2)
	_, _ = c.Add("ghost", 1)

	change := c.Clear()
	assert.Equal(t, models.CartCleared, change.Kind)

	totals, err := c.Total(cat)
	require.NoError(t, err)
	assert.True(t, totals.IsZero())
	assert.Empty(t, c.Lines())
}

func TestLines_FirstAddedOrder(t *testing.T) {
	c := New()
	for _, id := range []string{"P2", "007", "P1"} {
		_, _ = c.Add(id, 1)
	}
	_, _ = c.Add("P2", 1)
	_, _ = c.Remove("007")
	_, _ = c.Add("007", 1)

	assert.Equal(t, []models.CartEntry{
		{ProductID: "P2", Quantity: 2},
		{ProductID: "P1", Quantity: 1},
		{ProductID: "007", Quantity: 1},
	}, c.Lines())
}

func TestTotal_EmptyCart(t *testing.T) {
	totals, err := New().Total(testCatalog(t))
	require.NoError(t, err)
	assert.True(t, totals.IsZero())
}

func TestTotal_EndToEndScenario(t *testing.T) {
	cat := testCatalog(t)
	c := New()
	_, err := c.Add("P1", 3)
	require.NoError(t, err)

	totals, err := c.Total(cat)
	require.NoError(t, err)
	decEq(t, "30", totals.Points)
	decEq(t, "1500", totals.Amount)
}

func TestPriced_Subtotals(t *testing.T) {
	cat := testCatalog(t)
	c := New()
	_, _ = c.Add("P2", 2)
	_, _ = c.Add("007", 1)

	lines, totals, err := c.Priced(cat)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Tea", lines[0].Name)
	decEq(t, "5", lines[0].Points)
	decEq(t, "241", lines[0].Amount)
	decEq(t, "0", lines[1].Points)
	decEq(t, "5", totals.Points)
	decEq(t, "321", totals.Amount)
}

func TestTotal_OrphanSurfaces(t *testing.T) {
	cat := testCatalog(t)
	c := New()
	_, _ = c.Add("P1", 1)
	_, _ = c.Add("gone", 2)

	_, err := c.Total(cat)
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	assert.Equal(t, "gone", pnf.ProductID)

	lines, totals, orphans := c.Reconcile(cat)
	assert.Len(t, lines, 1)
	decEq(t, "500", totals.Amount)
	assert.Equal(t, []string{"gone"}, orphans)

	_, _ = c.Remove("gone")
	_, err = c.Total(cat)
	assert.NoError(t, err)
}

func TestClone_IsIndependent(t *testing.T) {
	c := New()
	_, _ = c.Add("P1", 1)
	cp := c.Clone()
	_, _ = cp.Add("P1", 1)
	_, _ = cp.Add("P2", 1)

	assert.Equal(t, 1, c.Quantity("P1"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, cp.Quantity("P1"))
}

func TestJSON(t *testing.T) {
	c := New()
	_, _ = c.Add("007", 2)
	_, _ = c.Add("P1", 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"007","quantity":2},{"productId":"P1","quantity":1}]`, string(data))

	var back Cart
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c.Lines(), back.Lines())

	err = json.Unmarshal([]byte(`[{"productId":"P1","quantity":0}]`), &back)
	assert.ErrorAs(t, err, new(*InvalidQuantityError))
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ParseQuantity("1000000")
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, n)

	for _, raw := range []string{"", "0", "-1", "1.5", "two", "1000001", "9223372036854775807", "99999999999999999999"} {
		_, err := ParseQuantity(raw)
		var iqe *InvalidQuantityError
		require.ErrorAs(t, err, &iqe, raw)
		assert.Equal(t, raw, iqe.Raw)
	}
}
