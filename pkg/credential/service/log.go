package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

const serviceName = "CredentialService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the credential Service.
// Passwords and images are never logged, only their presence and size.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Register wraps the service method with logging
func (ls *logService) Register(
	ctx context.Context,
	req *identity.RegisterRequest,
) (resp *identity.RegisterResponse, err error) {
	start := time.Now()

	ls.logger.Info("Register started",
		zap.String("service", serviceName),
		zap.String("method", "Register"),
		zap.String("username", req.Username),
		zap.Bool("has_password", req.Password != ""),
		zap.Int("image_bytes", len(req.Image)),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Log(failureLevel(err), "Register failed",
				zap.String("service", serviceName),
				zap.String("method", "Register"),
				zap.String("username", req.Username),
				zap.String("code", Code(err)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Register completed",
				zap.String("service", serviceName),
				zap.String("method", "Register"),
				zap.String("username", resp.Username),
				zap.String("face_fingerprint", resp.FaceFingerprint),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Register(ctx, req)
}

// Verify wraps the service method with logging. Authentication failures are
// logged with the precise factor that failed.
func (ls *logService) Verify(
	ctx context.Context,
	req *identity.VerifyRequest,
) (res *identity.VerifyResult, err error) {
	start := time.Now()

	ls.logger.Info("Verify started",
		zap.String("service", serviceName),
		zap.String("method", "Verify"),
		zap.String("username", req.Username),
		zap.Int("image_bytes", len(req.Image)),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Log(failureLevel(err), "Verify failed",
				zap.String("service", serviceName),
				zap.String("method", "Verify"),
				zap.String("username", req.Username),
				zap.String("code", Code(err)),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Verify completed",
				zap.String("service", serviceName),
				zap.String("method", "Verify"),
				zap.String("username", res.Username),
				zap.Bool("degraded", res.MatchedViaDegradedFallback),
				zap.Float64("distance", res.Distance),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Verify(ctx, req)
}

// Stats wraps the service method with logging
func (ls *logService) Stats(ctx context.Context) (stats *identity.Stats, err error) {
	defer func() {
		if err != nil {
			ls.logger.Error("Stats failed",
				zap.String("service", serviceName),
				zap.String("method", "Stats"),
				zap.Error(err),
			)
		}
	}()
	return ls.svc.Stats(ctx)
}

// failureLevel keeps client mistakes out of the error log.
func failureLevel(err error) zapcore.Level {
	if apperrors.IsInternalError(err) {
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}
