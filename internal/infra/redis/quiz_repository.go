package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"reading-quiz-service/internal/codec"
	"reading-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from the archive.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches quizzes in Redis in their portable link form:
// SET quiz:{quizID}:encoded <codec payload> EX ttl
// Unreadable cache entries are treated as misses.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	group  singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}
	v, err, _ := r.group.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.fill(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	encoded, err := r.client.Get(ctx, r.key(quizID)).Result()
	if err != nil {
		return domain.Quiz{}, false
	}
	quiz, err := codec.Decode(encoded)
	if err != nil || quiz.ID != quizID {
		log.Warn().Err(err).Str("quizId", quizID).Msg("discarding unreadable cached quiz")
		return domain.Quiz{}, false
	}
	return quiz, true
}

// fill is best effort; a failed write only costs a reload.
func (r *QuizRepository) fill(ctx context.Context, quiz domain.Quiz) {
	encoded, err := codec.Encode(quiz)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(quiz.ID), encoded, r.ttlWithJitter()).Err(); err != nil {
		log.Warn().Err(err).Str("quizId", quiz.ID).Msg("cache quiz failed")
	}
}

func (r *QuizRepository) key(quizID string) string {
	return "quiz:" + quizID + ":encoded"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
