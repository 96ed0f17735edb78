package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"vonage_relay/internal/domain"
)

type BroadcastService struct {
	msgs *MessageService
}

func NewBroadcastService(m *MessageService) *BroadcastService {
	return &BroadcastService{msgs: m}
}

// Broadcast sends tmpl to every recipient with at most workers sends in
// flight. Outcomes line up with recipients by index. A cancelled ctx stops
// launching new sends; recipients never attempted carry ctx's error.
func (s *BroadcastService) Broadcast(ctx context.Context, recipients []string, tmpl domain.OutboundMessage, workers int) []domain.BroadcastOutcome {
	if workers <= 0 {
		workers = 1
	}
	out := make([]domain.BroadcastOutcome, len(recipients))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, to := range recipients {
		out[i].To = to

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(recipients); j++ {
				out[j] = domain.BroadcastOutcome{To: recipients[j], Err: err}
			}
			break
		}

		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			defer sem.Release(1)

			m := tmpl
			m.To = to
			m.ClientRef = "" // one ref per recipient
			res, err := s.msgs.Send(ctx, m)
			// an accepted message keeps its uuid even if recording it failed
			out[i].MessageUUID = res.MessageUUID
			out[i].Err = err
			if err != nil {
				log.Warn().Str("to", to).Str("message_uuid", res.MessageUUID).Err(err).Msg("broadcast send failed")
			}
		}(i, to)
	}

	wg.Wait()
	return out
}
