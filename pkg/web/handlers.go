package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/alphaseam/donorbox/pkg/donation"
	derrors "github.com/alphaseam/donorbox/pkg/errors"
	"github.com/alphaseam/donorbox/pkg/reports"
	"github.com/gin-gonic/gin"
)

// makeDonation 创建不下网关订单的捐赠记录
func (s *Server) makeDonation(c *gin.Context) {
	var req donation.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := s.svc.CreateDonation(&req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// 首次通知走延迟调度，不阻塞响应
	go s.sched.ScheduleInitialNotification(d.ID)

	c.JSON(http.StatusCreated, d)
}

// makeDonationWithOrder 创建捐赠并在网关侧下单
func (s *Server) makeDonationWithOrder(c *gin.Context) {
	var req donation.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.svc.CreateDonationAndOrder(c.Request.Context(), &req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	go s.sched.ScheduleInitialNotification(result.DonationID)

	c.JSON(http.StatusCreated, result)
}

// verifyPayment 校验支付签名并推进捐赠状态
func (s *Server) verifyPayment(c *gin.Context) {
	var req donation.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verified, err := s.svc.VerifyAndFinalize(c.Request.Context(), &req)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

func (s *Server) supportedCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, donation.SupportedCurrencies())
}

func (s *Server) listDonations(c *gin.Context) {
	all, err := s.svc.Store().All()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// forceReconcile 运维手动触发全量对账，立即返回
func (s *Server) forceReconcile(c *gin.Context) {
	s.sched.ForceReconcileAll()
	c.JSON(http.StatusAccepted, gin.H{"status": "reconciliation started"})
}

// exportDonations 导出捐赠台账xlsx
func (s *Server) exportDonations(c *gin.Context) {
	all, err := s.svc.Store().All()
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="donations.xlsx"`)
	if err := reports.WriteDonationLedger(c.Writer, all); err != nil {
		log.Printf("[Web Export] Failed to write donation ledger: %v", err)
	}
}

// renderError 把业务错误翻译成HTTP状态码
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, derrors.ErrDonationNotFound),
		errors.Is(err, derrors.ErrCauseNotFound),
		errors.Is(err, derrors.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, derrors.ErrCurrencyNotSupported),
		errors.Is(err, derrors.ErrInvalidAmount),
		errors.Is(err, derrors.ErrOrderAlreadyCreated):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[Web] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
