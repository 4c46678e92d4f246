package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodaid/internal/auth"
	"bloodaid/internal/db"
	"bloodaid/internal/payment"
	"bloodaid/internal/server"
	"bloodaid/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	requestRepo := store.NewDonationRequestRepository(pool)
	fundRepo := store.NewFundRepository(pool)
	blogRepo := store.NewBlogRepository(pool)

	signingKey, err := base64.StdEncoding.DecodeString(config.TokenSigningKey)
	if err != nil {
		return fmt.Errorf("decode TOKEN_SIGNING_KEY: %w", err)
	}

	tokens := auth.NewTokenService(signingKey, time.Duration(config.TokenTTLHours)*time.Hour)

	var password *auth.CognitoAuthenticator
	if config.CognitoClientID != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)
		password = auth.NewCognitoAuthenticator(cognitoClient, config.CognitoClientID)
	}

	if config.CognitoIssuerURL != "" {
		jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

		if err := jwkCache.Register(context.Background(), jwksURL); err != nil {
			return fmt.Errorf("failed to register provider jwk with cache: %w", err)
		}

		tokens = tokens.WithProviderJWKS(jwkCache, jwksURL, config.CognitoIssuerURL)
	}

	checkout := payment.NewCheckoutService(
		config.StripeSecretKey,
		config.StripeSuccessURL,
		config.StripeCancelURL,
		time.Duration(config.PaymentTimeoutSec)*time.Second,
	)

	srv, err := server.New(
		config,
		logger,
		tokens,
		passwordOrNil(password),
		checkout,
		userRepo,
		requestRepo,
		fundRepo,
		blogRepo,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

// passwordOrNil keeps a typed-nil *CognitoAuthenticator from sneaking
// into the server's interface field as a non-nil value.
func passwordOrNil(a *auth.CognitoAuthenticator) server.PasswordAuthenticator {
	if a == nil {
		return nil
	}
	return a
}
