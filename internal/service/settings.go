package service

import (
	"time"

	"github.com/careerexpo/exhibition-api/internal/config"
	"github.com/careerexpo/exhibition-api/internal/domain"
)

// Settings are the lifecycle defaults applied when a caller leaves a deadline or size unset.
type Settings struct {
	ResponseWindow     time.Duration
	ConfirmationWindow time.Duration
	FinalizationWindow time.Duration
	StandardBoothSqm   float64
}

func NewSettings(conf *config.LifecycleConfig) Settings {
	return Settings{
		ResponseWindow:     conf.ResponseWindow,
		ConfirmationWindow: conf.ConfirmationWindow,
		FinalizationWindow: conf.FinalizationWindow,
		StandardBoothSqm:   conf.StandardBoothSqm,
	}
}

// deadlineOr returns the caller's deadline, or now+window when none was given.
// A deadline that is already over is rejected.
func deadlineOr(given *time.Time, now time.Time, window time.Duration) (*time.Time, error) {
	if given == nil {
		d := now.Add(window)
		return &d, nil
	}

	if !given.After(now) {
		return nil, domain.Invalid("deadline %s is not in the future", given.Format(time.RFC3339))
	}

	d := *given
	return &d, nil
}
