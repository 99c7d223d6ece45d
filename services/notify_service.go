package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/jobs"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/models"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/notify"
	"github.com/SquirmyWormy275/Missoula-Pro-Am-Manager/repositories"
)

// NotifyService fans text messages out through the job runner, so a slow
// carrier never blocks a request. Only pros carry phone numbers; college
// communication goes through school captains in person.
type NotifyService struct {
	pros   repositories.ProCompetitorRepository
	sender notify.SMSSender
	runner jobs.Runner
	logger *slog.Logger
}

func NewNotifyService(
	pros repositories.ProCompetitorRepository,
	sender notify.SMSSender,
	runner jobs.Runner,
	logger *slog.Logger,
) *NotifyService {
	return &NotifyService{pros: pros, sender: sender, runner: runner, logger: logger}
}

// SendTo queues one message to one number.
func (s *NotifyService) SendTo(to, body string) (*jobs.Job, error) {
	if to == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrValidationFailed)
	}
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidationFailed)
	}
	return s.runner.Submit(fmt.Sprintf("sms to %s", to), func(ctx context.Context) (interface{}, error) {
		if err := s.sender.Send(ctx, to, body); err != nil {
			return nil, err
		}
		return map[string]interface{}{"to": to}, nil
	})
}

// BroadcastSummary reports how a tournament-wide send went.
type BroadcastSummary struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	NoPhone int `json:"no_phone"`
}

// BroadcastPros queues a message to every active pro with a phone number on
// file. The whole batch runs as one job; individual delivery failures are
// logged and counted, not fatal.
func (s *NotifyService) BroadcastPros(ctx context.Context, tournamentID int, body string) (*jobs.Job, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidationFailed)
	}

	comps, err := s.pros.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	var numbers []string
	noPhone := 0
	for _, p := range comps {
		if p.Status != models.CompetitorActive {
			continue
		}
		if p.Phone == nil || *p.Phone == "" {
			noPhone++
			continue
		}
		numbers = append(numbers, *p.Phone)
	}

	label := fmt.Sprintf("sms broadcast to %d pro competitors", len(numbers))
	return s.runner.Submit(label, func(jobCtx context.Context) (interface{}, error) {
		summary := BroadcastSummary{NoPhone: noPhone}
		for _, to := range numbers {
			if err := s.sender.Send(jobCtx, to, body); err != nil {
				s.logger.Warn("sms delivery failed", "to", to, "error", err)
				summary.Failed++
				continue
			}
			summary.Sent++
		}
		return summary, nil
	})
}
