package scheduler

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/alphaseam/donorbox/pkg/donation"
	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/extensions/payment"
	"github.com/alphaseam/donorbox/pkg/models"
	"github.com/alphaseam/donorbox/pkg/notify"
	"github.com/benbjohnson/clock"
)

// Config 后台任务的时间参数
type Config struct {
	ReconcileInterval  time.Duration // 对账tick间隔
	FollowupInterval   time.Duration // follow-up tick间隔
	PendingGrace       time.Duration // PENDING超过该时长视为疑似卡住
	RecentWindow       time.Duration // 对账回溯窗口
	FollowupMinAge     time.Duration // follow-up的最小记录年龄
	FollowupCap        int           // 每条记录的follow-up上限
	InitialNotifyDelay time.Duration // 首次通知的延迟时长
	GatewayTimeout     time.Duration // 单条记录的网关调用超时
}

// Scheduler 驱动对账、follow-up和延迟首次通知的后台调度器
// 时间全部通过clock注入，测试可以模拟时间推进
// 部署假设：同一时刻只有一个实例在跑调度，跨实例不加锁
type Scheduler struct {
	store       *donation.Store
	svc         *donation.Service
	dispatcher  *notify.Dispatcher
	channelName string
	clock       clock.Clock
	cfg         Config

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(store *donation.Store, svc *donation.Service, dispatcher *notify.Dispatcher, channelName string, clk clock.Clock, cfg Config) *Scheduler {
	return &Scheduler{
		store:       store,
		svc:         svc,
		dispatcher:  dispatcher,
		channelName: channelName,
		clock:       clk,
		cfg:         cfg,
		stop:        make(chan struct{}),
	}
}

// Start 启动两个独立的周期任务
func (s *Scheduler) Start() {
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		ticker := s.clock.Ticker(s.cfg.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunReconcileTick(context.Background())
			case <-s.stop:
				return
			}
		}
	}()

	go func() {
		defer s.wg.Done()
		ticker := s.clock.Ticker(s.cfg.FollowupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunFollowupTick()
			case <-s.stop:
				return
			}
		}
	}()

	slog.Info("[Scheduler] Started", "reconcile_interval", s.cfg.ReconcileInterval, "followup_interval", s.cfg.FollowupInterval)
}

func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// RunReconcileTick 执行一轮对账
// 候选集合有两路：卡在PENDING超过宽限期的记录，和回溯窗口内的全部活跃记录。
// 单条记录的失败只记录日志，不中断本轮其余记录
func (s *Scheduler) RunReconcileTick(ctx context.Context) {
	log.Printf("[Scheduler Reconcile] Starting donation status reconciliation...")
	now := s.clock.Now()

	stuck, err := s.store.FindPendingOlderThan(now.Add(-s.cfg.PendingGrace))
	if err != nil {
		log.Printf("[Scheduler Reconcile] Failed to load stuck pending donations: %v", err)
		stuck = nil
	}

	recent, err := s.store.FindRecentWithOrder(now.Add(-s.cfg.RecentWindow))
	if err != nil {
		log.Printf("[Scheduler Reconcile] Failed to load recent donations: %v", err)
		recent = nil
	}

	seen := make(map[string]bool)
	updated := 0
	for _, batch := range [][]models.Donation{stuck, recent} {
		for i := range batch {
			d := batch[i]
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true

			changed, err := s.reconcileRecord(ctx, &d)
			if err != nil {
				log.Printf("[Scheduler Reconcile] Error processing donation %s: %v", d.ID, err)
				continue
			}
			if changed {
				updated++
			}
		}
	}

	log.Printf("[Scheduler Reconcile] Completed, %d of %d donations updated", updated, len(seen))
}

// reconcileRecord 查询网关状态并应用状态机
func (s *Scheduler) reconcileRecord(ctx context.Context, d *models.Donation) (bool, error) {
	channel := payment.Get(s.channelName)
	if channel == nil {
		return false, derrors.ErrChannelNotFound
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	observed, err := channel.FetchStatus(callCtx, d.OrderID)
	if err != nil {
		return false, err
	}

	target, changed := donation.NextStatus(d.Status, observed.Status)
	if !changed {
		switch observed.Status {
		case "", "created", "attempted", "pending":
		default:
			if donation.MapGatewayStatus(observed.Status) == models.StatusPending {
				// 未识别的网关状态按PENDING处理，记下来便于排查
				log.Printf("[Scheduler Reconcile] Unrecognized gateway status %q for donation %s", observed.Status, d.ID)
			}
		}
		return false, nil
	}

	return s.svc.ApplyTransition(d, target, observed.PaymentID)
}

// RunFollowupTick 给超龄未完成的捐赠发送提醒，数量受上限约束
func (s *Scheduler) RunFollowupTick() {
	log.Printf("[Scheduler Followup] Sending follow-up emails for old pending donations...")

	cutoff := s.clock.Now().Add(-s.cfg.FollowupMinAge)
	stale, err := s.store.FindStaleForFollowup(cutoff, s.cfg.FollowupCap)
	if err != nil {
		log.Printf("[Scheduler Followup] Failed to load stale donations: %v", err)
		return
	}

	sent := 0
	for i := range stale {
		d := stale[i]
		ok, err := s.dispatcher.SendFollowup(&d)
		if err != nil {
			log.Printf("[Scheduler Followup] Error sending follow-up for donation %s: %v", d.ID, err)
			continue
		}
		if ok {
			sent++
		}
	}

	log.Printf("[Scheduler Followup] Completed, %d emails sent", sent)
}

// ScheduleInitialNotification 安排新建捐赠的首次通知
// 终态是明确结果，立即通知；PENDING这类模糊状态延迟后再读库，
// 用延迟结束时的最新状态通知而不是中间值
func (s *Scheduler) ScheduleInitialNotification(donationID string) {
	d, err := s.store.Get(donationID)
	if err != nil {
		log.Printf("[Scheduler InitialNotify] Donation %s not found: %v", donationID, err)
		return
	}

	if d.Status.Terminal() {
		if err := s.dispatcher.Dispatch(d); err != nil {
			log.Printf("[Scheduler InitialNotify] Dispatch failed for donation %s: %v", d.ID, err)
		}
		return
	}

	s.clock.AfterFunc(s.cfg.InitialNotifyDelay, func() {
		latest, err := s.store.Get(donationID)
		if err != nil {
			log.Printf("[Scheduler InitialNotify] Donation %s not found after delay: %v", donationID, err)
			return
		}
		if err := s.dispatcher.Dispatch(latest); err != nil {
			log.Printf("[Scheduler InitialNotify] Dispatch failed for donation %s: %v", latest.ID, err)
		}
	})
}

// ForceReconcileAll 运维手动触发的全量对账，后台执行不阻塞调用方
func (s *Scheduler) ForceReconcileAll() {
	log.Printf("[Scheduler Force] Force checking all donation statuses...")

	go func() {
		all, err := s.store.FindAllWithOrder()
		if err != nil {
			log.Printf("[Scheduler Force] Failed to load donations: %v", err)
			return
		}
		for i := range all {
			d := all[i]
			if _, err := s.reconcileRecord(context.Background(), &d); err != nil {
				log.Printf("[Scheduler Force] Error processing donation %s: %v", d.ID, err)
			}
		}
		log.Printf("[Scheduler Force] Completed, %d donations checked", len(all))
	}()
}
