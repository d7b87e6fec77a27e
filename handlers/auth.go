package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	"github.com/aarav-mehta-dev/wellness-backend-go/models"
	"github.com/aarav-mehta-dev/wellness-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type SignUpRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	UserType    string `json:"userType"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     int    `json:"zipCode"`
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func phoneDigits(phone string) int {
	n := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// SignUp registers an account and issues a token right away.
func SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return utils.Fail(c, http.StatusBadRequest, "First name, last name, email, and password are required", nil)
	}
	if !isValidEmail(req.Email) {
		return utils.Fail(c, http.StatusBadRequest, "Invalid email format", nil)
	}
	if len(req.Password) < 8 {
		return utils.Fail(c, http.StatusBadRequest, "Password must be at least 8 characters", nil)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return utils.Fail(c, http.StatusBadRequest, "Phone number is required", nil)
	}
	if phoneDigits(req.Phone) < 10 {
		return utils.Fail(c, http.StatusBadRequest, "Phone number must contain at least 10 digits", nil)
	}
	if req.DateOfBirth == "" {
		return utils.Fail(c, http.StatusBadRequest, "Date of birth is required", nil)
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Please enter a valid date of birth", nil)
	}
	age := yearsSince(dob, time.Now())
	if age < 13 {
		return utils.Fail(c, http.StatusBadRequest, "You must be at least 13 years old to register", nil)
	}
	if age > 120 || dob.After(time.Now()) {
		return utils.Fail(c, http.StatusBadRequest, "Please enter a valid date of birth", nil)
	}
	if strings.TrimSpace(req.Address) == "" {
		return utils.Fail(c, http.StatusBadRequest, "Address is required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := database.DB.Collection("users")

	var existing models.User
	err = users.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": req.Email},
		bson.M{"phone": req.Phone},
	}}).Decode(&existing)
	if err == nil {
		if existing.Email == req.Email {
			return utils.Fail(c, http.StatusConflict, "Email already registered", nil)
		}
		return utils.Fail(c, http.StatusConflict, "Phone number already registered", nil)
	} else if err != mongo.ErrNoDocuments {
		return utils.Fail(c, http.StatusInternalServerError, "Internal server error", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to process password", nil)
	}

	now := time.Now()
	user := models.User{
		ID:          primitive.NewObjectID(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    string(hashed),
		Phone:       req.Phone,
		Role:        models.RoleForUserType(req.UserType),
		DateOfBirth: dob,
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		ZipCode:     req.ZipCode,
		Addresses:   []models.Address{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.Fail(c, http.StatusConflict, "Email already registered", nil)
		}
		return utils.Fail(c, http.StatusInternalServerError, "Internal server error", err)
	}

	token, err := utils.GenerateJWT(user.ID.Hex())
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to generate token", nil)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User registered successfully",
		"token":   token,
		"user":    userSummary(user),
	})
}

// yearsSince computes whole years between dob and now.
func yearsSince(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func userSummary(u models.User) echo.Map {
	return echo.Map{
		"_id":       u.ID,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
		"role":      u.Role,
	}
}

// Login checks credentials and issues a token.
func Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, http.StatusBadRequest, "Email and password required", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.Fail(c, http.StatusUnauthorized, "Invalid credentials", nil)
	}

	token, err := utils.GenerateJWT(user.ID.Hex())
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to generate token", nil)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "login successful",
		"token":   token,
		"user":    userSummary(user),
	})
}

// Check returns the authenticated caller, as loaded by the middleware.
func Check(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    user,
	})
}

// ResetPassword changes the caller's password after verifying the old
// one.
func ResetPassword(c echo.Context) error {
	user, ok := c.Get("user").(models.User)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, "User not authenticated", nil)
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, "Invalid request format", nil)
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return utils.Fail(c, http.StatusBadRequest, "Old and new password are required", nil)
	}
	if len(req.NewPassword) < 8 {
		return utils.Fail(c, http.StatusBadRequest, "Password must be at least 8 characters", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return utils.Fail(c, http.StatusForbidden, "Old password is incorrect", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to process password", nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = database.DB.Collection("users").UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{"password": string(hashed), "updatedAt": time.Now()}},
	)
	if err != nil {
		return utils.Fail(c, http.StatusInternalServerError, "Failed to reset password", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password reset successfully",
	})
}
