package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/handler"
)

// RegisterUser mounts /api/user. Register, login, refresh and the password
// reset flow are public and limited per address; the rest require a
// bearer token and are limited per caller.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, g Guards) {
	grp := e.Group("/api/user")
	grp.POST("/register", u.Register, g.PublicLimit)
	grp.POST("/login", u.Login, g.PublicLimit)
	grp.POST("/refresh", u.Refresh, g.PublicLimit)
	grp.POST("/forget/password", u.ForgetPassword, g.PublicLimit)
	grp.PUT("/reset/password", u.ResetPassword, g.PublicLimit)

	grp.GET("/resend/token", u.ResendToken, g.Auth, g.Limit)
	grp.GET("/profile", u.Profile, g.Auth, g.Limit)
	grp.PUT("/update/profile", u.UpdateProfile, g.Auth, g.Limit)
	grp.PATCH("/email/verifications", u.VerifyEmail, g.Auth, g.Limit)
	grp.POST("/logout", u.Logout, g.Auth, g.Limit)
}
