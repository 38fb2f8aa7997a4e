package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/handlers"
	"github.com/famoney/famoney-api/repository"
	"github.com/famoney/famoney-api/services"
)

// Handlers bundles every handler wired onto one store.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Ledgers    *handlers.LedgerHandler
	Members    *handlers.MemberHandler
	Expenses   *handlers.ExpenseHandler
	Categories *handlers.CategoryHandler
	Stats      *handlers.StatsHandler
	Export     *handlers.ExportHandler
	WS         *handlers.WSHandler
}

func NewHandlers(store repository.Store) *Handlers {
	locks := services.NewLedgerLocks()
	ws := handlers.NewWSHandler()

	return &Handlers{
		Auth:       &handlers.AuthHandler{Auth: services.NewAuthService(store)},
		Users:      &handlers.UserHandler{Users: services.NewUserService(store, locks)},
		Ledgers:    &handlers.LedgerHandler{Ledgers: services.NewLedgerService(store, locks), WS: ws},
		Members:    &handlers.MemberHandler{Members: services.NewMemberService(store, locks), WS: ws},
		Expenses:   &handlers.ExpenseHandler{Expenses: services.NewExpenseService(store), WS: ws},
		Categories: &handlers.CategoryHandler{Categories: services.NewCategoryService(store), WS: ws},
		Stats:      &handlers.StatsHandler{Stats: services.NewStatsService(store)},
		Export:     &handlers.ExportHandler{Expenses: services.NewExpenseService(store)},
		WS:         ws,
	}
}

// SetupAuthRoutes registers the public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/auth/signup", h.Auth.Signup)
	rg.POST("/auth/login", h.Auth.Login)
	rg.POST("/auth/refresh", h.Auth.Refresh)
	rg.POST("/auth/logout", h.Auth.Logout)
}

// SetupUserRoutes registers the protected profile routes.
func SetupUserRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/user/profile", h.Users.Me)
	rg.PUT("/user/profile", h.Users.UpdateProfile)
	rg.POST("/user/password", h.Users.ChangePassword)
	rg.POST("/user/2fa/setup", h.Users.SetupTOTP)
	rg.POST("/user/2fa/verify", h.Users.VerifyTOTP)
	rg.POST("/user/2fa/disable", h.Users.DisableTOTP)
	rg.DELETE("/user/account", h.Users.DeleteAccount)
}

// SetupLedgerRoutes registers the protected ledger tree.
func SetupLedgerRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/ledgers", h.Ledgers.List)
	rg.POST("/ledgers", h.Ledgers.Create)
	rg.GET("/ledgers/:id", h.Ledgers.Get)
	rg.PUT("/ledgers/:id", h.Ledgers.Update)
	rg.DELETE("/ledgers/:id", h.Ledgers.Delete)

	rg.GET("/ledgers/:id/members", h.Members.List)
	rg.POST("/ledgers/:id/invite", h.Members.Invite)
	rg.GET("/ledgers/:id/invitations", h.Members.ListInvitations)
	rg.DELETE("/ledgers/:id/invitations/:invitationId", h.Members.CancelInvitation)
	rg.PUT("/ledgers/:id/members/:memberId", h.Members.ChangeRole)
	rg.DELETE("/ledgers/:id/members/:memberId", h.Members.Remove)
	rg.POST("/invitations/accept", h.Members.AcceptInvitation)

	rg.GET("/ledgers/:id/expenses", h.Expenses.List)
	rg.POST("/ledgers/:id/expenses", h.Expenses.Create)
	rg.GET("/ledgers/:id/expenses/export", h.Export.Export)
	rg.GET("/ledgers/:id/expenses/:expenseId", h.Expenses.Get)
	rg.PUT("/ledgers/:id/expenses/:expenseId", h.Expenses.Update)
	rg.DELETE("/ledgers/:id/expenses/:expenseId", h.Expenses.Delete)

	rg.GET("/ledgers/:id/categories", h.Categories.List)
	rg.POST("/ledgers/:id/categories", h.Categories.Create)
	rg.DELETE("/ledgers/:id/categories/:categoryId", h.Categories.Delete)

	rg.GET("/ledgers/:id/stats", h.Stats.Summary)
}
