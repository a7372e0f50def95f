package web

import (
	"github.com/alphaseam/donorbox/pkg/donation"
	"github.com/alphaseam/donorbox/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// Server 对外HTTP层
// 核心业务全部在donation/scheduler里，这里只做绑定和错误翻译
type Server struct {
	engine *gin.Engine
	svc    *donation.Service
	sched  *scheduler.Scheduler
}

func NewServer(svc *donation.Service, sched *scheduler.Scheduler) *Server {
	s := &Server{
		engine: gin.Default(),
		svc:    svc,
		sched:  sched,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.POST("/donate", s.makeDonation)
	s.engine.POST("/donate/with-order", s.makeDonationWithOrder)
	s.engine.POST("/payment/verify", s.verifyPayment)
	s.engine.GET("/payment/currencies", s.supportedCurrencies)
	s.engine.GET("/donations", s.listDonations)

	admin := s.engine.Group("/admin")
	admin.POST("/reconcile", s.forceReconcile)
	admin.GET("/donations/export", s.exportDonations)
}

func (s *Server) Run(listen string) error {
	return s.engine.Run(listen)
}
