package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alphaseam/donorbox/pkg/database"
	"github.com/alphaseam/donorbox/pkg/donation"
	"github.com/alphaseam/donorbox/pkg/extensions/payment"
	"github.com/alphaseam/donorbox/pkg/extensions/payment/types"
	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/alphaseam/donorbox/pkg/notify"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeChannel 可编程网关：按订单返回状态，可标记单个订单为失败
type fakeChannel struct {
	mu         sync.Mutex
	status     string
	paymentID  string
	failOrders map[string]bool
	calls      int
}

func (f *fakeChannel) Init() error            { return nil }
func (f *fakeChannel) GetChannelName() string { return "fake" }

func (f *fakeChannel) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*types.GatewayOrder, error) {
	return &types.GatewayOrder{OrderID: "order_" + receipt, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (f *fakeChannel) FetchStatus(ctx context.Context, orderID string) (*types.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOrders[orderID] {
		return nil, errors.New("gateway timeout")
	}
	return &types.OrderStatus{Status: f.status, PaymentID: f.paymentID}, nil
}

func (f *fakeChannel) VerifySignature(orderID, paymentID, signature string) bool { return true }

func (f *fakeChannel) set(status, paymentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.paymentID = paymentID
}

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) SendHTML(to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

func (s *stubSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type env struct {
	sched  *Scheduler
	store  *donation.Store
	ch     *fakeChannel
	sender *stubSender
	clock  *clock.Mock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := donation.NewStore(db)
	sender := &stubSender{}
	dispatcher := notify.NewDispatcher(store, sender, "ops@example.com", 2)
	svc := donation.NewService(store, dispatcher, "fake")

	ch := &fakeChannel{failOrders: make(map[string]bool)}
	require.NoError(t, payment.Init(ch))

	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	sched := New(store, svc, dispatcher, "fake", mock, Config{
		ReconcileInterval:  5 * time.Minute,
		FollowupInterval:   30 * time.Minute,
		PendingGrace:       30 * time.Minute,
		RecentWindow:       24 * time.Hour,
		FollowupMinAge:     2 * time.Hour,
		FollowupCap:        2,
		InitialNotifyDelay: 10 * time.Minute,
		GatewayTimeout:     5 * time.Second,
	})

	return &env{sched: sched, store: store, ch: ch, sender: sender, clock: mock}
}

func (e *env) createDonation(t *testing.T, age time.Duration, orderID string) *models.Donation {
	t.Helper()
	d := &models.Donation{
		ID:         uuid.NewString(),
		DonorName:  "Asha Rao",
		DonorEmail: "asha@example.com",
		Amount:     decimal.RequireFromString("50.00"),
		Currency:   "USD",
		Status:     models.StatusPending,
		OrderID:    orderID,
		CreatedAt:  e.clock.Now().Add(-age),
	}
	require.NoError(t, e.store.Create(d))
	return d
}

// Scenario A: PENDING记录在网关上报paid后完成并恰好通知一次
func TestReconcileTickCompletesDonation(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 35*time.Minute, "order_a")
	e.ch.set("paid", "pay_a")

	e.sched.RunReconcileTick(context.Background())

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "pay_a", got.PaymentID)
	assert.Equal(t, models.StatusCompleted, got.LastNotifiedStatus)
	assert.Equal(t, 2, e.sender.count())

	// 再跑一轮：终态粘滞，不重复通知
	e.sched.RunReconcileTick(context.Background())
	assert.Equal(t, 2, e.sender.count())
}

// Scenario B: 网关仍上报pending时保持PENDING且不通知
func TestReconcileTickKeepsPending(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 35*time.Minute, "order_b")
	e.ch.set("pending", "")

	e.sched.RunReconcileTick(context.Background())

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Zero(t, e.sender.count())
}

// Scenario C: FAILED之后网关改口paid也不再迁移
func TestReconcileTickTerminalSticky(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 35*time.Minute, "order_c")

	e.ch.set("failed", "")
	e.sched.RunReconcileTick(context.Background())

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, 2, e.sender.count())

	e.ch.set("paid", "pay_late")
	e.sched.RunReconcileTick(context.Background())

	got, err = e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Empty(t, got.PaymentID)
	assert.Equal(t, 2, e.sender.count())
}

// 单条记录的网关故障不影响同一轮的其他记录
func TestReconcileTickIsolatesFailures(t *testing.T) {
	e := newEnv(t)
	bad := e.createDonation(t, 40*time.Minute, "order_bad")
	good := e.createDonation(t, 35*time.Minute, "order_good")

	e.ch.failOrders["order_bad"] = true
	e.ch.set("paid", "pay_g")

	e.sched.RunReconcileTick(context.Background())

	gotBad, err := e.store.Get(bad.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, gotBad.Status)

	gotGood, err := e.store.Get(good.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, gotGood.Status)
}

func TestFollowupTickCapped(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 3*time.Hour, "order_f")

	for i := 0; i < 5; i++ {
		e.sched.RunFollowupTick()
	}

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FollowupEmailCount)
	assert.Equal(t, 2, e.sender.count())
	// 仍是非终态，继续参与普通对账
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestFollowupTickSkipsYoungRecords(t *testing.T) {
	e := newEnv(t)
	e.createDonation(t, 30*time.Minute, "order_young")

	e.sched.RunFollowupTick()
	assert.Zero(t, e.sender.count())
}

// 模糊初始状态延迟通知，通知时用的是延迟结束后的最新状态
func TestInitialNotificationDeferred(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 0, "order_d")

	e.sched.ScheduleInitialNotification(d.ID)
	assert.Zero(t, e.sender.count())

	// 延迟期间支付完成
	applied, err := e.store.SaveStatus(d.ID, models.StatusCompleted, "pay_d")
	require.NoError(t, err)
	require.True(t, applied)

	e.clock.Add(10 * time.Minute)

	require.Eventually(t, func() bool {
		return e.sender.count() == 2
	}, time.Second, 10*time.Millisecond)

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.LastNotifiedStatus)
}

func TestInitialNotificationImmediateForTerminal(t *testing.T) {
	e := newEnv(t)
	d := e.createDonation(t, 0, "order_t")
	applied, err := e.store.SaveStatus(d.ID, models.StatusFailed, "")
	require.NoError(t, err)
	require.True(t, applied)

	e.sched.ScheduleInitialNotification(d.ID)
	assert.Equal(t, 2, e.sender.count())
}

func TestForceReconcileAll(t *testing.T) {
	e := newEnv(t)
	// 超出24小时窗口的记录只有全量对账才会碰到
	d := e.createDonation(t, 72*time.Hour, "order_old")
	e.ch.set("refunded", "pay_r")

	e.sched.ForceReconcileAll()

	require.Eventually(t, func() bool {
		return e.sender.count() == 2
	}, time.Second, 10*time.Millisecond)

	got, err := e.store.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRefunded, got.Status)
	assert.Equal(t, "pay_r", got.PaymentID)
}
