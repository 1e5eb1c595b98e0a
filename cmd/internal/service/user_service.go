package service

import (
	"context"
	"strconv"

	"echodft/cmd/internal/contract"
	"echodft/cmd/internal/domain/entity"
	cognitoclient "echodft/cmd/internal/infrastructure/aws/cognito"
	"echodft/cmd/internal/utils"
	"echodft/cmd/internal/utils/apierror"
	"echodft/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindActiveBySub(sub string) (*entity.User, error)
	FindActiveByEmail(email string) (*entity.User, error)
	ExistsActiveByEmail(email string) (bool, error)
	Save(user *entity.User) error
}

type UserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Cognito  cognitoclient.CognitoInterface
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Validate: validate,
		Cognito:  cogClient,
	}
}

func (u *UserService) Me(actor *entity.User) *contract.UserResponse {
	return toUserResponse(actor)
}

func (u *UserService) CheckEmail(req *contract.UserStatusRequest) (*contract.EmailStatus, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	var status contract.EmailStatus
	user, err := u.UserRepo.FindActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user (%s) exists: %v", req.Email, err)
		return nil, apierror.InternalServerError
	}

	switch {
	case user == nil:
		status = contract.EmailStatusAvailable
	case !user.EmailVerified:
		status = contract.EmailStatusVerifying
	default:
		status = contract.EmailStatusExists
	}
	return &status, nil
}

// CreateUser registers the account on Cognito, which sends the verification
// code by email, and then stores our own copy of it.
func (u *UserService) CreateUser(ctx context.Context, req *contract.CreateUserRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}

	if found {
		return apierror.UserAlreadyExistsError
	}

	cogUser := &cognitoclient.User{Email: req.Email, Password: req.Password}
	sub, apierr, revert := handleUserSignup(ctx, u.Cognito, cogUser)
	if apierr != nil {
		return apierr
	}

	now := utils.NowUTC()
	user := &entity.User{
		ID:            uid.Generate(),
		SubUUID:       sub,
		Username:      req.Username,
		Email:         req.Email,
		EmailVerified: false,
		Permissions:   entity.PermissionDefault,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err = u.UserRepo.Save(user); err != nil {
		// Without our row the Cognito account could never log in, so drop it
		// and let the user try again.
		revert()
		log.Errorf("failed to create user: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (u *UserService) Login(ctx context.Context, req *contract.UserLoginRequest) (*contract.UserLoginResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindActiveByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	if user.Suspended {
		return nil, apierror.MissingAccessError
	}

	credentials := &cognitoclient.UserLogin{
		Email:    req.Email,
		Password: req.Password,
	}

	auth, err := u.Cognito.SignIn(ctx, credentials)
	if err != nil {
		return nil, utils.MapCognitoError(err)
	}
	return &contract.UserLoginResponse{AccessToken: auth.AccessToken, IDToken: auth.IDToken}, nil
}

func (u *UserService) ConfirmSignup(ctx context.Context, req *contract.ConfirmSignupRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, apierr := u.findUnverified(req.Email)
	if apierr != nil {
		return apierr
	}

	confirms := &cognitoclient.UserConfirmation{
		Email: req.Email,
		Code:  req.Code,
	}

	if err := u.Cognito.ConfirmAccount(ctx, confirms); err != nil {
		return utils.MapCognitoError(err)
	}

	user.EmailVerified = true
	user.UpdatedAt = utils.NowUTC()
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user (%d) verified status: %v", user.ID, err)
	}
	return nil
}

// ResendConfirmation only asks Cognito for a new code, the account stays
// unverified until ConfirmSignup succeeds.
func (u *UserService) ResendConfirmation(ctx context.Context, req *contract.ResendConfirmRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	if _, apierr := u.findUnverified(req.Email); apierr != nil {
		return apierr
	}

	if err := u.Cognito.ResendConfirmation(ctx, req.Email); err != nil {
		return utils.MapCognitoError(err)
	}
	return nil
}

func (u *UserService) findUnverified(email string) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindActiveByEmail(email)
	if err != nil {
		log.Errorf("failed to find user (%s) by email: %v", email, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	if user.EmailVerified {
		return nil, apierror.UserAlreadyConfirmedError
	}
	return user, nil
}

func handleUserSignup(ctx context.Context, cogClient cognitoclient.CognitoInterface, req *cognitoclient.User) (string, apierror.ErrorResponse, func()) {
	revert := func() {
		// The request context may already be gone by now.
		if err := cogClient.AdminDeleteUser(context.Background(), req.Email); err != nil {
			log.Errorf("failed to revert cognito signup of %s: %v", req.Email, err)
		}
	}

	sub, err := cogClient.SignUp(ctx, req)
	if err != nil {
		return "", utils.MapCognitoError(err), revert
	}
	return sub, nil, revert
}

func toUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:         strconv.FormatInt(user.ID, 10),
		Username:   user.Username,
		Email:      user.Email,
		Perms:      int64(user.Permissions),
		IsVerified: user.EmailVerified,
		CreatedAt:  utils.FormatEpoch(user.CreatedAt),
		UpdatedAt:  utils.FormatEpoch(user.UpdatedAt),
	}
}
