package notify

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/alphaseam/donorbox/pkg/models"
)

// RecordStore dispatcher需要的最小存储接口，由donation.Store实现
type RecordStore interface {
	MarkNotified(id string, status models.DonationStatus) (bool, error)
	IncrementFollowup(id string, max int) (bool, error)
}

// Dispatcher 按状态幂等地发送捐赠人和运营方双份通知
// 幂等以LastNotifiedStatus为准：同一状态最多通知一次，
// 只有两封邮件都发出后才落盘，发送失败留给下一轮重试
type Dispatcher struct {
	store         RecordStore
	sender        Sender
	operatorEmail string
	followupCap   int
}

func NewDispatcher(store RecordStore, sender Sender, operatorEmail string, followupCap int) *Dispatcher {
	return &Dispatcher{
		store:         store,
		sender:        sender,
		operatorEmail: operatorEmail,
		followupCap:   followupCap,
	}
}

// Dispatch 针对记录当前状态发送双份通知
func (dp *Dispatcher) Dispatch(d *models.Donation) error {
	if d.LastNotifiedStatus == d.Status {
		slog.Info("[Dispatcher] Status already notified, skipping", "donation", d.ID, "status", d.Status)
		return nil
	}

	donorSubject, donorHTML := DonorEmail(d)
	if err := dp.sender.SendHTML(d.DonorEmail, donorSubject, donorHTML); err != nil {
		return fmt.Errorf("failed to send donor email for donation %s: %w", d.ID, err)
	}

	orgSubject, orgHTML := OperatorEmail(d)
	if err := dp.sender.SendHTML(dp.operatorEmail, orgSubject, orgHTML); err != nil {
		return fmt.Errorf("failed to send operator email for donation %s: %w", d.ID, err)
	}

	marked, err := dp.store.MarkNotified(d.ID, d.Status)
	if err != nil {
		return fmt.Errorf("failed to mark donation %s notified: %w", d.ID, err)
	}
	if !marked {
		// 并发的另一次dispatch先落盘了，邮件可能重复但状态一致
		log.Printf("[Dispatcher] Donation %s already marked notified for %s", d.ID, d.Status)
	}

	d.LastNotifiedStatus = d.Status
	slog.Info("[Dispatcher] Notifications sent", "donation", d.ID, "status", d.Status)
	return nil
}

// SendFollowup 发送一封follow-up提醒
// 先在数据库里占用一个配额再发送，保证计数永不超过上限
func (dp *Dispatcher) SendFollowup(d *models.Donation) (bool, error) {
	ok, err := dp.store.IncrementFollowup(d.ID, dp.followupCap)
	if err != nil {
		return false, fmt.Errorf("failed to increment followup count for donation %s: %w", d.ID, err)
	}
	if !ok {
		return false, nil
	}

	subject, html := FollowupEmail(d)
	if err := dp.sender.SendHTML(d.DonorEmail, subject, html); err != nil {
		// 配额已消耗，投递失败只记录，不回滚计数
		return false, fmt.Errorf("failed to send followup email for donation %s: %w", d.ID, err)
	}

	d.FollowupEmailCount++
	slog.Info("[Dispatcher] Followup email sent", "donation", d.ID, "count", d.FollowupEmailCount)
	return true, nil
}
