package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/arlochter/slotflow/configs"
	"github.com/arlochter/slotflow/internal/models"
	"github.com/arlochter/slotflow/internal/repository"
	"github.com/arlochter/slotflow/pkg/utils"
	"golang.org/x/oauth2"
)

// TokenRefreshJob renews profile credentials that are about to expire so a
// publish hand-off never fires with a dead token.
type TokenRefreshJob struct {
	cfg config.Config
	pr  repository.ProfileRepository
}

func NewTokenRefreshJob(cfg config.Config, pr repository.ProfileRepository) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg: cfg,
		pr:  pr,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	profiles, err := c.pr.ListByTokenExpiry(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, profile := range profiles {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(profile *models.Profile) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.refreshProfile(ctx, profile); err != nil {
				slog.Info("unable to refresh profile token", "profile_id", profile.ID, "error", err.Error())
			}
		}(profile)
	}

	wg.Wait()
}

func (c *TokenRefreshJob) refreshProfile(ctx context.Context, profile *models.Profile) error {
	refreshToken, err := utils.Decrypt(profile.RefreshToken, []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	conf := &oauth2.Config{
		ClientID: c.cfg.Publisher.APIKey,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.cfg.Publisher.TokenURL,
		},
	}

	// Expired placeholder token forces the source to use the refresh token.
	source := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	})

	token, err := source.Token()
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	newRefreshToken := token.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = refreshToken
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(newRefreshToken), []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	return c.pr.SetToken(ctx, profile.ID, encryptedAccessToken, encryptedRefreshToken, token.Expiry)
}
