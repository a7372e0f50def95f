package donation

import (
	"testing"
	"time"

	"github.com/alphaseam/donorbox/pkg/database"
	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestDonation(createdAt time.Time, status models.DonationStatus, orderID string) *models.Donation {
	return &models.Donation{
		ID:         uuid.NewString(),
		DonorName:  "Asha Rao",
		DonorEmail: "asha@example.com",
		DonorPhone: "+91 98765 43210",
		Amount:     decimal.RequireFromString("50.00"),
		Currency:   "USD",
		Status:     status,
		OrderID:    orderID,
		CreatedAt:  createdAt,
	}
}

func TestStoreGetAndFindByOrderID(t *testing.T) {
	store := NewStore(newTestDB(t))

	d := newTestDonation(time.Now(), models.StatusPending, "order_123")
	require.NoError(t, store.Create(d))

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.True(t, got.Amount.Equal(d.Amount))

	got, err = store.FindByOrderID("order_123")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	_, err = store.Get("missing")
	assert.Error(t, err)
	_, err = store.FindByOrderID("missing")
	assert.Error(t, err)
}

func TestStoreSetOrderIDOnlyOnce(t *testing.T) {
	store := NewStore(newTestDB(t))

	d := newTestDonation(time.Now(), models.StatusPending, "")
	require.NoError(t, store.Create(d))

	require.NoError(t, store.SetOrderID(d.ID, "order_a"))
	err := store.SetOrderID(d.ID, "order_b")
	assert.Error(t, err)

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, "order_a", got.OrderID)
}

// 守卫式状态更新：终态一旦写入就不能被覆盖
func TestStoreSaveStatusGuarded(t *testing.T) {
	store := NewStore(newTestDB(t))

	d := newTestDonation(time.Now(), models.StatusPending, "order_1")
	require.NoError(t, store.Create(d))

	applied, err := store.SaveStatus(d.ID, models.StatusFailed, "pay_1")
	require.NoError(t, err)
	assert.True(t, applied)

	// 过期写入者试图改成COMPLETED
	applied, err = store.SaveStatus(d.ID, models.StatusCompleted, "pay_2")
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "pay_1", got.PaymentID)
}

func TestStoreMarkNotifiedIdempotent(t *testing.T) {
	store := NewStore(newTestDB(t))

	d := newTestDonation(time.Now(), models.StatusCompleted, "order_1")
	require.NoError(t, store.Create(d))

	marked, err := store.MarkNotified(d.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = store.MarkNotified(d.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, marked)
}

func TestStoreIncrementFollowupCap(t *testing.T) {
	store := NewStore(newTestDB(t))

	d := newTestDonation(time.Now(), models.StatusPending, "order_1")
	require.NoError(t, store.Create(d))

	for i := 1; i <= 2; i++ {
		ok, err := store.IncrementFollowup(d.ID, 2)
		require.NoError(t, err)
		assert.True(t, ok, "increment #%d", i)
	}

	// 已达上限，之后全部no-op
	for i := 0; i < 3; i++ {
		ok, err := store.IncrementFollowup(d.ID, 2)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FollowupEmailCount)
}

func TestStoreReconciliationCandidates(t *testing.T) {
	store := NewStore(newTestDB(t))
	now := time.Now()

	stuck := newTestDonation(now.Add(-45*time.Minute), models.StatusPending, "order_stuck")
	fresh := newTestDonation(now.Add(-5*time.Minute), models.StatusPending, "order_fresh")
	noOrder := newTestDonation(now.Add(-2*time.Hour), models.StatusPending, "")
	done := newTestDonation(now.Add(-1*time.Hour), models.StatusCompleted, "order_done")
	old := newTestDonation(now.Add(-48*time.Hour), models.StatusPending, "order_old")

	for _, d := range []*models.Donation{stuck, fresh, noOrder, done, old} {
		require.NoError(t, store.Create(d))
	}

	pending, err := store.FindPendingOlderThan(now.Add(-30 * time.Minute))
	require.NoError(t, err)
	ids := donationIDs(pending)
	assert.Contains(t, ids, stuck.ID)
	assert.Contains(t, ids, old.ID)
	assert.NotContains(t, ids, fresh.ID)
	assert.NotContains(t, ids, noOrder.ID)
	assert.NotContains(t, ids, done.ID)
	// 最老的在前
	assert.Equal(t, old.ID, ids[0])

	recent, err := store.FindRecentWithOrder(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	ids = donationIDs(recent)
	assert.Contains(t, ids, stuck.ID)
	assert.Contains(t, ids, fresh.ID)
	assert.NotContains(t, ids, old.ID)
	assert.NotContains(t, ids, done.ID)
}

func TestStoreFindStaleForFollowup(t *testing.T) {
	store := NewStore(newTestDB(t))
	now := time.Now()

	stale := newTestDonation(now.Add(-3*time.Hour), models.StatusPending, "order_1")
	young := newTestDonation(now.Add(-30*time.Minute), models.StatusPending, "order_2")
	capped := newTestDonation(now.Add(-5*time.Hour), models.StatusPending, "order_3")
	capped.FollowupEmailCount = 2
	finished := newTestDonation(now.Add(-5*time.Hour), models.StatusCompleted, "order_4")

	for _, d := range []*models.Donation{stale, young, capped, finished} {
		require.NoError(t, store.Create(d))
	}

	got, err := store.FindStaleForFollowup(now.Add(-2*time.Hour), 2)
	require.NoError(t, err)
	ids := donationIDs(got)
	assert.Equal(t, []string{stale.ID}, ids)
}

func TestStoreAddToCauseRaised(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	cause := &models.Cause{Title: "Clean Water"}
	require.NoError(t, db.Create(cause).Error)

	require.NoError(t, store.AddToCauseRaised(cause.ID, decimal.RequireFromString("50.00")))
	require.NoError(t, store.AddToCauseRaised(cause.ID, decimal.RequireFromString("25.50")))

	got, err := store.GetCause(cause.ID)
	require.NoError(t, err)
	assert.True(t, got.RaisedAmount.Equal(decimal.RequireFromString("75.50")), "raised=%s", got.RaisedAmount)
}

func donationIDs(list []models.Donation) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.ID)
	}
	return out
}
