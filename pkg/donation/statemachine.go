package donation

import (
	"strings"

	"github.com/alphaseam/donorbox/pkg/models"
)

// MapGatewayStatus 把网关状态串映射为本地捐赠状态，大小写不敏感
// 未识别的状态一律按PENDING处理
func MapGatewayStatus(observed string) models.DonationStatus {
	switch strings.ToLower(strings.TrimSpace(observed)) {
	case "paid", "completed", "success":
		return models.StatusCompleted
	case "failed", "error":
		return models.StatusFailed
	case "refunded":
		return models.StatusRefunded
	default:
		return models.StatusPending
	}
}

// NextStatus 状态迁移决策
// 返回目标状态和是否为真实迁移。终态粘滞：当前已是终态时永远不迁移，
// 防止网关在退款后再次上报paid之类的回跳
func NextStatus(current models.DonationStatus, observed string) (models.DonationStatus, bool) {
	if current.Terminal() {
		return current, false
	}

	target := MapGatewayStatus(observed)
	if target == current {
		return current, false
	}
	return target, true
}
