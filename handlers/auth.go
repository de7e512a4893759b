package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/biosecret/todo-list/database"
	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour // 7 ngày
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler đăng ký người dùng mới
// @Summary Đăng ký user
// @Tags auth
// @Param credentials body credentials true "Username và password"
// @Success 201 {object} map[string]string
// @Router /auth/register [post]
func (h *Handler) RegisterHandler(c *fiber.Ctx) error {
	input := new(credentials)
	if err := c.BodyParser(input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "username and password are required"})
	}

	// Hash mật khẩu
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not hash password"})
	}

	id, err := utils.GenerateRandomID(utils.DefaultIDLength)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate ID"})
	}

	// Lưu người dùng vào database
	user := &models.User{ID: id, Username: input.Username, Password: string(hashedPassword)}
	if err := h.accounts.CreateUser(c.UserContext(), user); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return internalError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "user registered successfully", "id": user.ID})
}

// LoginHandler trả về access token và refresh token
// @Summary Đăng nhập
// @Tags auth
// @Param credentials body credentials true "Username và password"
// @Success 200 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) LoginHandler(c *fiber.Ctx) error {
	var input credentials
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// Kiểm tra thông tin người dùng từ database
	user, err := h.accounts.FindUserByUsername(c.UserContext(), strings.TrimSpace(input.Username))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	// So khớp mật khẩu
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	// Tạo access token và refresh token
	accessToken, err := generateJWT(h.jwtSecret, user.ID, accessTokenTTL)
	if err != nil {
		return internalError(c, err)
	}
	refreshToken, err := generateJWT(h.jwtSecret, user.ID, refreshTokenTTL)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(200).JSON(fiber.Map{
		"user_id":       user.ID,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Tạo JWT token
func generateJWT(secret []byte, userID string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
