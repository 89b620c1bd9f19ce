package graph

import (
	"context"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Tanmoy095/authgate/internal/app/auth"
	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
	"github.com/Tanmoy095/authgate/internal/metrics"
	"github.com/Tanmoy095/authgate/internal/pkg/logger"
	"github.com/Tanmoy095/authgate/shared/contracts"
)

// Login is the resolver for the login field.
//
// A request that already carries a session only succeeds when that session
// is still valid and belongs to the supplied email (or no email was given).
// Any other session is cleared and the call fails; it does not go on to log
// in as the new identity.
func (r *Resolver) Login(ctx context.Context, data *contracts.LoginInput) (bool, error) {
	rc := ForContext(ctx)
	log := logger.FromContext(ctx)

	if rc.Token != "" {
		identity, err := r.backend.CurrentIdentity(ctx, rc.Token)
		if err == nil && sameIdentity(identity, data) {
			return true, nil
		}
		if err != nil {
			log.Warn("login: existing session rejected", zap.String("failure", string(auth.Classify(err))), zap.Error(err))
		} else {
			log.Warn("login: existing session belongs to another identity")
		}
		r.clearSession(rc)
		return false, nil
	}

	if data == nil || data.Email == "" {
		return false, nil
	}

	secret, err := r.backend.Login(ctx, *data)
	if err != nil {
		log.Warn("login failed", zap.String("failure", string(auth.Classify(err))), zap.Error(err))
		return false, nil
	}
	if secret == "" {
		log.Warn("login failed", zap.String("failure", string(auth.AuthFailure)), zap.Error(domainErr.ErrMissingSecret))
		return false, nil
	}

	rc.Pending.SetCookie(r.codec.Set(secret))
	metrics.SessionCookies.WithLabelValues("set").Inc()
	return true, nil
}

// Logout is the resolver for the logout field. It always returns true.
func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	rc := ForContext(ctx)
	if rc.Token == "" {
		return true, nil
	}

	if err := r.backend.Logout(ctx, rc.Token); err != nil {
		logger.FromContext(ctx).Warn("logout: backend call failed", zap.String("failure", string(auth.Classify(err))), zap.Error(err))
	}
	r.clearSession(rc)
	return true, nil
}

// LoggedIn is the resolver for the loggedIn field. A token the backend
// rejects is cleared. The answer is held back by the configured delay.
func (r *Resolver) LoggedIn(ctx context.Context) (bool, error) {
	rc := ForContext(ctx)

	result := false
	if rc.Token != "" {
		identity, err := r.backend.CurrentIdentity(ctx, rc.Token)
		switch {
		case err != nil:
			logger.FromContext(ctx).Info("loggedIn: session rejected", zap.String("failure", string(auth.Classify(err))), zap.Error(err))
			r.clearSession(rc)
		case identity == nil:
			r.clearSession(rc)
		default:
			result = true
		}
	}

	r.wait(ctx)
	return result, nil
}

func (r *Resolver) wait(ctx context.Context) {
	if r.loggedInDelay <= 0 {
		return
	}
	timer := time.NewTimer(r.loggedInDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (r *Resolver) clearSession(rc *RequestContext) {
	rc.Pending.SetCookie(r.codec.Clear())
	metrics.SessionCookies.WithLabelValues("clear").Inc()
}

// sameIdentity compares emails only when both sides have one.
func sameIdentity(identity *contracts.User, data *contracts.LoginInput) bool {
	if identity == nil {
		return false
	}
	if data == nil || data.Email == "" || identity.Email == "" {
		return true
	}
	return identity.Email == data.Email
}

func decodeLoginInput(args map[string]any) (*contracts.LoginInput, error) {
	raw, ok := args["data"]
	if !ok || raw == nil {
		return nil, nil
	}
	in := &contracts.LoginInput{}
	if err := mapstructure.Decode(raw, in); err != nil {
		return nil, errors.Wrap(domainErr.ErrInvalidInput, err.Error())
	}
	return in, nil
}
