package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"github.com/skni-kod/kolo-rest-api/auth"
	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/dto"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/models"
	"github.com/skni-kod/kolo-rest-api/services"
)

const (
	githubProvider = "github"
	// unusablePassword never matches a bcrypt comparison; accounts created by social login start with it.
	unusablePassword = "!"
)

type authHandler struct {
	handlerBase
	jwt      *auth.JWTService
	users    *database.UserRepo
	social   *database.SocialAccountRepo
	github   *services.GithubClient
	accounts userHandler
}

func newAuthHandler(deps handlerDeps, accounts userHandler) authHandler {
	return authHandler{
		handlerBase: newHandlerBase("authHandler", deps),
		jwt:         deps.jwt,
		users:       deps.db.UserRepo(),
		social:      deps.db.SocialAccountRepo(),
		github:      deps.github,
		accounts:    accounts,
	}
}

// authenticateCredentials finds the user named by username or email and checks the password.
func (h authHandler) authenticateCredentials(ctx context.Context, p dto.Login) (*models.User, error) {
	var user *models.User
	var err error
	if p.Username != "" {
		user, err = h.users.FindByUsername(ctx, p.Username)
	} else {
		user, err = h.users.FindByEmail(ctx, p.Email)
	}
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errs.NewBadLoginError()
		}
		return nil, wrapDatabaseError("find", "user", err)
	}
	if !auth.CheckPassword(user.Password, p.Password) || !user.IsActive {
		return nil, errs.NewBadLoginError()
	}
	return user, nil
}

func (h authHandler) issue(ctx context.Context, user *models.User) (auth.TokenPair, error) {
	pair, err := h.jwt.IssuePair(user.ID)
	if err != nil {
		return pair, errs.NewInternalErrorWithCause("Failed to issue tokens", err)
	}
	if err := h.users.TouchLastLogin(ctx, user.ID); err != nil {
		h.logger.Warn().Err(err).Uint("userID", user.ID).Msg("failed to record last login")
	}
	return pair, nil
}

// loginResult issues tokens for user and reloads it for the response.
func (h authHandler) loginResult(ctx context.Context, user *models.User) (dto.LoginResult, error) {
	pair, err := h.issue(ctx, user)
	if err != nil {
		return dto.LoginResult{}, err
	}
	fresh, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		return dto.LoginResult{}, wrapDatabaseError("find", "user", err)
	}
	return dto.LoginResult{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: dto.NewUser(*fresh)}, nil
}

func (h authHandler) obtainToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.Login{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user, err := h.authenticateCredentials(r.Context(), payload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		pair, err := h.issue(r.Context(), user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, dto.TokenPair{Access: pair.Access, Refresh: pair.Refresh})
	}
}

func (h authHandler) refreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.TokenRefresh{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		access, err := h.jwt.Refresh(payload.Refresh)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidTokenError(err))
			return
		}
		h.responder.WriteJSON(w, map[string]string{"access": access})
	}
}

// verifyToken accepts a valid access or refresh token.
func (h authHandler) verifyToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.TokenVerify{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if _, err := h.jwt.Parse(payload.Token, auth.AccessToken); err != nil {
			if _, refreshErr := h.jwt.Parse(payload.Token, auth.RefreshToken); refreshErr != nil {
				h.responder.WriteError(w, errs.NewInvalidTokenError(err))
				return
			}
		}
		h.responder.WriteJSON(w, map[string]string{})
	}
}

func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.Login{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user, err := h.authenticateCredentials(r.Context(), payload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		result, err := h.loginResult(r.Context(), user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Uint("userID", user.ID).Msg("user logged in")
		h.responder.WriteJSON(w, result)
	}
}

// logout has nothing to revoke since tokens are stateless; clients drop their tokens.
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{"detail": "Successfully logged out."})
	}
}

func (h authHandler) currentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxGetUser(r.Context())
		h.responder.WriteJSON(w, dto.NewUser(*user))
	}
}

func (h authHandler) updateCurrentUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := *ctxGetUser(r.Context())
		updated, err := h.accounts.applyUpdate(w, r, &user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, dto.NewUser(*updated))
	}
}

func (h authHandler) changePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.PasswordChange{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user := ctxGetUser(r.Context())
		if !auth.CheckPassword(user.Password, payload.OldPassword) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("old_password", "Your old password was entered incorrectly. Please enter it again."))
			return
		}
		hash, err := hashNewPassword("new_password2", payload.NewPassword1)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.users.SetPassword(r.Context(), user.ID, hash); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "password", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Msg("password changed")
		h.responder.WriteJSON(w, map[string]string{"detail": "New password has been saved."})
	}
}

func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.Registration{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		hash, err := hashNewPassword("password1", payload.Password1)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.accounts.ensureUsernameFree(r.Context(), payload.Username, 0); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user := models.User{
			Username:  payload.Username,
			Email:     payload.Email,
			Password:  hash,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			IsActive:  true,
		}
		if err := h.users.CreateWithProfile(r.Context(), &user, nil); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Str("username", user.Username).Msg("user registered")

		result, err := h.loginResult(r.Context(), &user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, result)
	}
}

// fetchGithubUser resolves the code or access token of payload to a GitHub account.
func (h authHandler) fetchGithubUser(ctx context.Context, payload dto.SocialLogin) (*services.GithubUser, error) {
	if h.github == nil {
		return nil, errs.NewServiceUnavailableError("GitHub login", errors.New("github client is not configured"))
	}
	token := payload.AccessToken
	if token == "" {
		var err error
		if token, err = h.github.Exchange(ctx, payload.Code); err != nil {
			return nil, errs.NewOAuthExchangeError(githubProvider, err)
		}
	}
	ghUser, err := h.github.FetchUser(ctx, token)
	if err != nil {
		return nil, errs.NewOAuthExchangeError(githubProvider, err)
	}
	return ghUser, nil
}

// freeUsername derives an unused local username from the GitHub login.
func (h authHandler) freeUsername(ctx context.Context, login string) (string, error) {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, login)
	if base == "" {
		base = "user"
	}
	candidate := base
	for i := 1; ; i++ {
		taken, err := h.users.UsernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", wrapDatabaseError("check", "username", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// githubLogin signs in the user connected to the GitHub account, registering one on first login.
func (h authHandler) githubLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.SocialLogin{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		ghUser, err := h.fetchGithubUser(r.Context(), payload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		account := models.SocialAccount{
			Provider:  githubProvider,
			UID:       ghUser.UID(),
			ExtraData: datatypes.JSON(ghUser.Raw),
		}
		var user *models.User
		existing, err := h.social.FindByProviderUID(r.Context(), githubProvider, account.UID)
		switch {
		case err == nil:
			account.UserID = existing.UserID
			if err := h.social.Upsert(r.Context(), &account); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("update", "social account", err))
				return
			}
			if user, err = h.users.FindByID(r.Context(), existing.UserID); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
				return
			}
		case database.IsNotFound(err):
			username, err := h.freeUsername(r.Context(), ghUser.Login)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			firstName, lastName, _ := strings.Cut(strings.TrimSpace(ghUser.Name), " ")
			user = &models.User{
				Username:  username,
				Email:     ghUser.Email,
				Password:  unusablePassword,
				FirstName: firstName,
				LastName:  lastName,
				IsActive:  true,
			}
			if err := h.social.CreateUserWithAccount(r.Context(), user, &account); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
				return
			}
			h.logger.Info().Uint("userID", user.ID).Str("githubLogin", ghUser.Login).Msg("user registered through github")
		default:
			h.responder.WriteError(w, wrapDatabaseError("find", "social account", err))
			return
		}

		if !user.IsActive {
			h.responder.WriteError(w, errs.NewUnauthorizedError("User is inactive"))
			return
		}
		result, err := h.loginResult(r.Context(), user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// githubConnect attaches the GitHub account to the requesting user.
func (h authHandler) githubConnect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := bindWrite(w, r, dto.SocialLogin{})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		ghUser, err := h.fetchGithubUser(r.Context(), payload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user := ctxGetUser(r.Context())

		existing, err := h.social.FindByProviderUID(r.Context(), githubProvider, ghUser.UID())
		if err != nil && !database.IsNotFound(err) {
			h.responder.WriteError(w, wrapDatabaseError("find", "social account", err))
			return
		}
		if existing != nil && existing.UserID != user.ID {
			h.responder.WriteError(w, errs.NewInvalidFieldError("non_field_errors", "The social account is already connected to a different account."))
			return
		}

		account := models.SocialAccount{
			UserID:    user.ID,
			Provider:  githubProvider,
			UID:       ghUser.UID(),
			ExtraData: datatypes.JSON(ghUser.Raw),
		}
		if err := h.social.Upsert(r.Context(), &account); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("connect", "social account", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Str("githubLogin", ghUser.Login).Msg("github account connected")

		result, err := h.loginResult(r.Context(), user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

func (h authHandler) listSocialAccounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := h.social.FindByUser(r.Context(), currentUserID(r))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "social accounts", err))
			return
		}
		h.responder.WriteJSON(w, dto.NewSocialAccounts(accounts))
	}
}

// disconnectSocialAccount removes a connection of the requesting user. The last connection
// of an account without a usable password stays, or the account could no longer sign in.
func (h authHandler) disconnectSocialAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		user := ctxGetUser(r.Context())
		account, err := h.social.FindByID(r.Context(), id)
		if err != nil || account.UserID != user.ID {
			if err == nil || database.IsNotFound(err) {
				h.responder.WriteError(w, errs.NewNotFoundError("Not found"))
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("find", "social account", err))
			return
		}

		if user.Password == unusablePassword {
			count, err := h.social.CountForUser(r.Context(), user.ID)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("count", "social accounts", err))
				return
			}
			if count <= 1 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("non_field_errors", "Your account has no password set up."))
				return
			}
		}

		if err := h.social.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "social account", err))
			return
		}
		h.logger.Info().Uint("userID", user.ID).Str("provider", account.Provider).Msg("social account disconnected")
		h.responder.WriteJSON(w, map[string]string{"detail": "Social account disconnected."})
	}
}
