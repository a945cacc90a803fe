package authController

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/middleware"
	"lms/models"
	"lms/services/otp"
	"lms/utils"
	authValidator "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxFailedLogins = 3
	lockoutDuration = time.Minute
	failureWindow   = 15 * time.Minute
)

type AuthController struct {
	db  *gorm.DB
	otp *otp.Manager
}

func New(db *gorm.DB, otpManager *otp.Manager) *AuthController {
	return &AuthController{db: db, otp: otpManager}
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Check if email already exists
	var count int64
	a.db.Model(&models.User{}).Where("email = ?", reqData.Email).Count(&count)
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Check if username already exists
	a.db.Model(&models.User{}).Where("username = ?", reqData.Username).Count(&count)
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already taken!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Username:    reqData.Username,
		Email:       reqData.Email,
		FirstName:   reqData.FirstName,
		LastName:    reqData.LastName,
		PhoneNumber: reqData.PhoneNumber,
		Role:        reqData.Role,
		Password:    string(hashedPassword),
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		return createProfile(tx, newUser)
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email or username is already registered!", nil)
		}
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	if _, err := a.otp.Issue(c.UserContext(), newUser, newUser.Email); err != nil {
		log.Printf("[OTP] issue on register for %s failed: %v", newUser.Email, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true,
		"Registration successful. Please check your email for the verification code.", fiber.Map{
			"user":                  newUser,
			"requires_verification": true,
		})
}

// createProfile adds the role profile with its sequential public identifier
func createProfile(tx *gorm.DB, user models.User) error {
	now := time.Now()
	switch user.Role {
	case models.RoleTutor:
		return tx.Create(&models.TutorProfile{UserID: user.ID, EmployeeID: fmt.Sprintf("TUT%06d", user.ID), HireDate: now}).Error
	case models.RoleAdmin:
		return tx.Create(&models.AdminProfile{UserID: user.ID, EmployeeID: fmt.Sprintf("ADM%06d", user.ID), HireDate: now}).Error
	default:
		return tx.Create(&models.StudentProfile{UserID: user.ID, StudentID: fmt.Sprintf("STU%06d", user.ID), EnrollmentDate: now}).Error
	}
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := a.db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !user.IsActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Account is deactivated!", nil)
	}

	now := time.Now()

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Your account is temporarily blocked. Try again later.", fiber.Map{
			"retry_after": int(user.BlockedUntil.Sub(now).Seconds()) + 1,
		})
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failureWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.IsBlocked = true
			unblockTime := now.Add(lockoutDuration)
			user.BlockedUntil = &unblockTime
		}

		if err := a.db.Model(&user).
			Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").
			Updates(&user).Error; err != nil {
			log.Printf("Error recording failed login: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !otp.IsVerified(user) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Email not verified! Please verify your email before logging in.", fiber.Map{
			"email":                 user.Email,
			"requires_verification": true,
		})
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := a.db.Model(&user).
		Select("last_login", "failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").
		Updates(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: utils.ClientIP(c),
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := a.db.Create(&loginTracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}
	log.Printf("User %d logged in from IP: %s", user.ID, loginTracking.IPAddress)

	token, err := middleware.GenerateJWT(user.ID, user.FullName(), user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout revokes the presented token until it would have expired anyway
func (a *AuthController) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	if jti == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Token cannot be revoked!", nil)
	}
	expiresAt, _ := c.Locals("tokenExp").(time.Time)

	entry := models.TokenBlacklist{JTI: jti, UserID: utils.UserID(c), ExpiresAt: expiresAt}
	if err := a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		log.Printf("Error blacklisting token: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to logout!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOTP").(*authValidator.VerifyEmailRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := a.otp.Verify(c.UserContext(), reqData.Email, reqData.OTP)
	if err != nil {
		return otpErrorResponse(c, err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.FullName(), user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (a *AuthController) ResendOTP(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEmail").(*authValidator.ResendOTPRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	challenge, err := a.otp.Resend(c.UserContext(), reqData.Email)
	if err != nil {
		return otpErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification code sent successfully.", fiber.Map{
		"email":      challenge.Email,
		"expires_at": challenge.ExpiresAt,
	})
}

func otpErrorResponse(c *fiber.Ctx, err error) error {
	var invalid *otp.InvalidCodeError
	var cooldown *otp.CooldownError

	switch {
	case errors.As(err, &invalid):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), fiber.Map{
			"attempts_remaining": invalid.Remaining,
		})
	case errors.As(err, &cooldown):
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, err.Error(), fiber.Map{
			"retry_after": int(cooldown.RetryAfter.Seconds() + 0.5),
		})
	case errors.Is(err, otp.ErrUserNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, otp.ErrAlreadyVerified),
		errors.Is(err, otp.ErrNoValidChallenge),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrAttemptsExhausted):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	log.Printf("[OTP] unexpected error: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
}

func (a *AuthController) loadUser(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := a.db.Where("id = ? AND is_deleted = ?", utils.UserID(c), false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthController) roleProfile(user models.User) interface{} {
	switch user.Role {
	case models.RoleTutor:
		var p models.TutorProfile
		if a.db.Where("user_id = ?", user.ID).First(&p).Error == nil {
			return p
		}
	case models.RoleAdmin:
		var p models.AdminProfile
		if a.db.Where("user_id = ?", user.ID).First(&p).Error == nil {
			return p
		}
	default:
		var p models.StudentProfile
		if a.db.Where("user_id = ?", user.ID).First(&p).Error == nil {
			return p
		}
	}
	return nil
}

func (a *AuthController) GetProfile(c *fiber.Ctx) error {
	user, err := a.loadUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", fiber.Map{
		"user":    user,
		"profile": a.roleProfile(*user),
	})
}

func (a *AuthController) UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*authValidator.UpdateProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := a.loadUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.FirstName != nil {
		updates["first_name"] = *reqData.FirstName
	}
	if reqData.LastName != nil {
		updates["last_name"] = *reqData.LastName
	}
	if reqData.PhoneNumber != nil {
		updates["phone_number"] = *reqData.PhoneNumber
	}
	if reqData.ProfilePicture != nil {
		updates["profile_picture"] = *reqData.ProfilePicture
	}
	if reqData.DateOfBirth != nil {
		dob, _ := time.Parse("2006-01-02", *reqData.DateOfBirth)
		updates["date_of_birth"] = dob
	}
	if len(updates) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Nothing to update!", nil)
	}

	if err := a.db.Model(user).Updates(updates).Error; err != nil {
		log.Printf("Error updating profile: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
	a.db.First(user, user.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

// UploadProfilePicture accepts a multipart "picture" image and stores its public URL on the user
func (a *AuthController) UploadProfilePicture(c *fiber.Ctx) error {
	user, err := a.loadUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	file, err := c.FormFile("picture")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"picture": "This field is required!"})
	}
	relPath, err := utils.SaveUploadedImage(file, config.AppConfig.UploadDir, "profiles")
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedFile) || errors.Is(err, utils.ErrFileTooLarge) {
			return middleware.ValidationErrorResponse(c, map[string]string{"picture": err.Error()})
		}
		log.Printf("Error saving profile picture: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to upload picture!", nil)
	}

	url := utils.GetFileURL(relPath)
	if err := a.db.Model(user).Update("profile_picture", url).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile picture updated successfully.", fiber.Map{
		"profile_picture": url,
	})
}

func (a *AuthController) UserInfo(c *fiber.Ctx) error {
	user, err := a.loadUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User info.", fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"full_name":   user.FullName(),
		"role":        user.Role,
		"is_verified": user.IsVerified,
	})
}

func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPassword").(*authValidator.ChangePasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := a.loadUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.OldPassword)); err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"old_password": "Old password is incorrect!"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := a.db.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to change password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}

// UsersByRole lists accounts of one role for administrators
func (a *AuthController) UsersByRole(c *fiber.Ctx) error {
	role := c.Params("role")
	paging := utils.ResolvePaging(c, 20, 100)

	var users []models.User
	var total int64
	query := a.db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", role, false).Session(&gorm.Session{})
	query.Count(&total)
	if err := query.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", fiber.Map{
		"users":      users,
		"pagination": paging.Meta(total),
	})
}

func (a *AuthController) LoginHistoryList(c *fiber.Ctx) error {
	userId := utils.UserID(c)
	paging := utils.ResolvePaging(c, 10, 100)

	var loginTracking []models.LoginTracking
	var total int64

	query := a.db.Model(&models.LoginTracking{}).Where("user_id = ?", userId).Session(&gorm.Session{})
	query.Count(&total)
	if err := query.Order("timestamp DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination":    paging.Meta(total),
	})
}
