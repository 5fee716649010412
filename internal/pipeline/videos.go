package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	serrors "github.com/scenescribe/scenescribe/internal/errors"
	"github.com/scenescribe/scenescribe/internal/project"
	"github.com/scenescribe/scenescribe/internal/videogen"
)

// GenerateVideos submits one render job per selected enabled topic,
// polls each to a terminal state, and merges the outcomes into the
// project. Topics render concurrently; a failed submit or render marks
// only that topic failed. The project lands on completed when every
// enabled topic has a ready video, otherwise videos_generating.
func (s *Service) GenerateVideos(ctx context.Context, projectID string, topicIDs []string) (*project.Project, error) {
	p, err := s.store.LoadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	targets := project.SelectTopics(p.Topics, topicIDs)
	if len(targets) == 0 {
		return nil, fmt.Errorf("generate videos: %w", serrors.ErrNoTopicsSelected)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes = make(map[string]project.VideoOutcome, len(targets))
	)
	for _, topic := range targets {
		wg.Add(1)
		go func(topic project.Topic) {
			defer wg.Done()
			outcome := s.renderTopic(ctx, p.ID, topic, p.Config)
			mu.Lock()
			outcomes[topic.ID] = outcome
			mu.Unlock()
		}(topic)
	}
	wg.Wait()

	p.Topics = project.ApplyVideoOutcomes(p.Topics, outcomes)
	p.Status = project.AggregateVideoStatus(p.Topics)
	if err := s.store.ReplaceProject(ctx, p); err != nil {
		return nil, err
	}
	s.metrics.GenerationRuns.WithLabelValues("videos", "ok").Inc()
	s.logger.Info().
		Str("project_id", p.ID).
		Str("status", string(p.Status)).
		Int("topics", len(outcomes)).
		Msg("video batch complete")
	return p, nil
}

// renderTopic drives one topic's render job from submission to a terminal
// outcome. It always returns an outcome; failures are folded in rather
// than propagated.
func (s *Service) renderTopic(ctx context.Context, projectID string, topic project.Topic, cfg project.GenerationConfig) project.VideoOutcome {
	start := time.Now()
	log := s.logger.With().
		Str("project_id", projectID).
		Str("topic_id", topic.ID).
		Logger()

	jobID, err := s.video.Submit(ctx, videogen.SubmitRequest{
		Prompt:          BuildPrompt(topic, cfg),
		AspectRatio:     cfg.AspectRatio,
		DurationSeconds: topic.EffectiveDurationSeconds(cfg),
	})
	if err != nil {
		log.Error().Err(err).Msg("render job submit failed")
		s.metrics.ProviderErrors.WithLabelValues("videogen", "submit").Inc()
		return s.failedOutcome(topic.ID, fmt.Sprintf("submit failed: %v", err), start)
	}
	log.Debug().Str("job_id", jobID).Msg("render job submitted")

	for attempt := 1; attempt <= s.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return s.failedOutcome(topic.ID, "render cancelled: "+ctx.Err().Error(), start)
		case <-time.After(s.pollInterval):
		}

		res, err := s.video.Poll(ctx, jobID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("render job poll failed")
			s.metrics.ProviderErrors.WithLabelValues("videogen", "poll").Inc()
			continue
		}
		switch res.State {
		case videogen.StateFailed:
			log.Warn().Str("job_id", jobID).Str("detail", res.Detail).Msg("render job failed")
			return s.failedOutcome(topic.ID, res.Detail, start)
		case videogen.StateSucceeded:
			if res.Media.VideoURL == "" {
				log.Warn().Str("job_id", jobID).Msg("render job succeeded without a video url")
				return s.failedOutcome(topic.ID, "provider returned no video url", start)
			}
			s.metrics.ObserveVideoJob(string(project.TaskReady), time.Since(start))
			return project.VideoOutcome{
				TopicID: topic.ID,
				Status:  project.TaskReady,
				Media:   res.Media,
			}
		}
	}
	log.Warn().Str("job_id", jobID).Int("attempts", s.pollMaxAttempts).Msg("render job timed out")
	return s.failedOutcome(topic.ID, fmt.Sprintf("render job timed out after %d polls", s.pollMaxAttempts), start)
}

func (s *Service) failedOutcome(topicID, detail string, start time.Time) project.VideoOutcome {
	s.metrics.ObserveVideoJob(string(project.TaskFailed), time.Since(start))
	return project.VideoOutcome{
		TopicID: topicID,
		Status:  project.TaskFailed,
		Error:   detail,
	}
}
