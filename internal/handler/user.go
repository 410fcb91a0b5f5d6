package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/service"
)

// UserHandler serves /api/user.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler { return &UserHandler{Users: users} }

// Register accepts JSON or multipart with an optional "image" file. The
// role comes from the ?role= query parameter and defaults to buyer.
func (h *UserHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	in.Role = c.QueryParam("role")
	up, closeUp, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer closeUp()

	u, err := h.Users.Register(c.Request().Context(), in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully, and token already send to your email", u)
}

func (h *UserHandler) ResendToken(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	if err := h.Users.ResendToken(c.Request().Context(), actor); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to resend TOKEN, please check your email", nil)
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var in service.VerifyEmailInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.Users.VerifyEmail(c.Request().Context(), actor, in); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success for verified your email", nil)
}

func (h *UserHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return err
	}
	pair, err := h.Users.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "login success", pair)
}

func (h *UserHandler) Refresh(c echo.Context) error {
	var in service.RefreshInput
	if err := bind(c, &in); err != nil {
		return err
	}
	pair, err := h.Users.Refresh(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to refresh token", pair)
}

func (h *UserHandler) Logout(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	if err := h.Users.Logout(c.Request().Context(), actor); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logout success", nil)
}

func (h *UserHandler) ForgetPassword(c echo.Context) error {
	var in service.ForgetPasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.Users.ForgetPassword(c.Request().Context(), in); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to send TOKEN, please check your email", nil)
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	var in service.ResetPasswordInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.Users.ResetPassword(c.Request().Context(), in); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success for reset your password", nil)
}

func (h *UserHandler) Profile(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	u, err := h.Users.Profile(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to get profile", u)
}

// UpdateProfile accepts an optional username and an optional "image" file.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var in service.UpdateProfileInput
	if isMultipart(c) {
		in.Username = formString(c, "username")
	} else if err := bind(c, &in); err != nil {
		return err
	}
	up, closeUp, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer closeUp()

	u, err := h.Users.UpdateProfile(c.Request().Context(), actor, in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to update profile", u)
}
