package utils

import "github.com/labstack/echo/v4"

// Fail writes the uniform failure envelope. The underlying error is
// attached for diagnostics, not for end-user display.
func Fail(c echo.Context, status int, message string, err error) error {
	resp := echo.Map{"success": false, "message": message}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(status, resp)
}
