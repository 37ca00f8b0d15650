package verification

import (
	"context"
	"fmt"
	"time"

	"vtcland/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	challengePrefix = "otp:challenge:"
	throttlePrefix  = "otp:throttle:"
)

// CodeSender delivers the code to the phone. notification.SMSSender satisfies it.
type CodeSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// RedisProvider keeps challenges in Redis as hashes holding the phone, a
// bcrypt hash of the code and the number of attempts. Keys expire with TTL.
type RedisProvider struct {
	client *redis.Client
	sender CodeSender
	logger *zap.Logger

	CodeLength     int
	TTL            time.Duration
	MaxAttempts    int
	MaxIssues      int           // codes per phone within ThrottleWindow
	ThrottleWindow time.Duration
	MessageFormat  string        // fmt verb %s receives the code
}

func NewRedisProvider(client *redis.Client, sender CodeSender, logger *zap.Logger) *RedisProvider {
	return &RedisProvider{
		client:         client,
		sender:         sender,
		logger:         logger,
		CodeLength:     6,
		TTL:            5 * time.Minute,
		MaxAttempts:    5,
		MaxIssues:      3,
		ThrottleWindow: 10 * time.Minute,
		MessageFormat:  "Votre code de vérification VTCLAND est : %s. Il expire dans 5 minutes.",
	}
}

func (p *RedisProvider) IssueCode(ctx context.Context, phone string, guard *GuardHandle) (Challenge, error) {
	if guard == nil {
		return Challenge{}, ErrGuardNotReady
	}

	throttleKey := throttlePrefix + phone
	issued, err := p.client.Incr(ctx, throttleKey).Result()
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: throttle: %v", ErrProviderError, err)
	}
	if issued == 1 {
		p.client.Expire(ctx, throttleKey, p.ThrottleWindow)
	}
	if int(issued) > p.MaxIssues {
		return Challenge{}, ErrRateLimited
	}

	code, err := utils.GenerateNumericOTP(p.CodeLength)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	hash, err := utils.HashOTP(code)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	ch := Challenge{ID: uuid.New().String(), Phone: phone, IssuedAt: time.Now()}
	key := challengePrefix + ch.ID
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "phone", phone, "hash", hash, "attempts", 0)
		pipe.Expire(ctx, key, p.TTL)
		return nil
	})
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: store challenge: %v", ErrProviderError, err)
	}

	if err := p.sender.SendSMS(ctx, phone, fmt.Sprintf(p.MessageFormat, code)); err != nil {
		p.client.Del(ctx, key)
		return Challenge{}, fmt.Errorf("%w: send SMS: %v", ErrProviderError, err)
	}

	p.logger.Info("Verification code issued", zap.String("challengeID", ch.ID), zap.Duration("ttl", p.TTL))
	return ch, nil
}

// checkScript counts an attempt on an existing challenge and returns the
// attempt number with the code hash. A missing key yields nil. Once the
// attempts run out the challenge is deleted and the hash comes back empty.
var checkScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if attempts > tonumber(ARGV[1]) then
	redis.call('DEL', KEYS[1])
	return {attempts, ''}
end
return {attempts, redis.call('HGET', KEYS[1], 'hash')}
`)

func (p *RedisProvider) CheckCode(ctx context.Context, challengeID, code string) error {
	key := challengePrefix + challengeID
	res, err := checkScript.Run(ctx, p.client, []string{key}, p.MaxAttempts).Result()
	if err == redis.Nil {
		return ErrChallengeExpired
	}
	if err != nil {
		return fmt.Errorf("%w: check challenge: %v", ErrProviderError, err)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return fmt.Errorf("%w: unexpected check reply %v", ErrProviderError, res)
	}
	attempts, _ := vals[0].(int64)
	hash, _ := vals[1].(string)
	if int(attempts) > p.MaxAttempts {
		return ErrChallengeExpired
	}

	if !utils.CompareOTP(hash, code) {
		p.logger.Debug("Verification code mismatch",
			zap.String("challengeID", challengeID),
			zap.Int64("attempt", attempts))
		return ErrCodeMismatch
	}

	// Single use: only the caller that deletes the key wins.
	deleted, err := p.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: consume challenge: %v", ErrProviderError, err)
	}
	if deleted == 0 {
		return ErrChallengeExpired
	}
	return nil
}

func (p *RedisProvider) Revoke(ctx context.Context, challengeID string) error {
	return p.client.Del(ctx, challengePrefix+challengeID).Err()
}
