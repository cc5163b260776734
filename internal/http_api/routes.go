package http_api

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/session", s.getSession)
	v1.POST("/session/logout", s.logout)

	v1.POST("/wallet/create", s.createWallet)
	v1.POST("/wallet/access", s.accessByAddress)
	v1.POST("/wallet/access-key", s.accessByPrivateKey)
	v1.POST("/wallet/access-mnemonic", s.accessByMnemonic)

	v1.GET("/wallet/balance", s.getBalance)
	v1.GET("/wallet/transactions", s.getTransactions)
	v1.POST("/transaction/send", s.sendTransaction)

	v1.GET("/notifications", s.listNotifications)
	v1.GET("/notifications/count", s.countNotifications)
	v1.POST("/notification/respond", s.respondNotification)

	v1.GET("/stats", s.getStats)
	v1.GET("/search", s.search)
	v1.GET("/blocks", s.listBlocks)
	v1.GET("/block/:index", s.getBlock)
	v1.GET("/transaction/:id", s.getTransaction)

	v1.GET("/stakes", s.listStakes)
	v1.POST("/stake", s.stake)
	v1.POST("/stake/unstake", s.unstake)
}
